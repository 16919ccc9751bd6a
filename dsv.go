// Package dsv parses delimited text (DSV: comma, tab, pipe or custom
// delimited rows) into ordered rows of string fields, with in-memory and
// chunked streaming consumption, optional field bookends, and automatic
// column-count detection with strict-width validation.
//
// # Tokenization model
//
// Rows are split on every literal occurrence of the delimiter; an optional
// symmetric bookend character (for example a double quote) is stripped from
// each field afterwards. There is deliberately no delimiter-aware
// quoted-field state machine: a field like `"a,b"` with delimiter ',' splits
// into two tokens. See the tokenizer package for the exact rules.
//
// # Basic usage
//
//	cfg, err := dsv.NewCSVConfig(dsv.WithBookend(`"`))
//	if err != nil {
//	    return err
//	}
//
//	parser := dsv.NewParser(cfg)
//	rows, err := parser.ParseFile("data.csv")
//
// Streaming a large file in chunks:
//
//	cfg, _ := dsv.NewConfig(
//	    dsv.WithDelimiter("|"),
//	    dsv.WithColumnDetection(true),
//	    dsv.WithChunkSize(1000),
//	)
//	parser := dsv.NewParser(cfg)
//	for chunk, err := range parser.ParseFileStream("data.psv") {
//	    if err != nil {
//	        return err
//	    }
//	    process(chunk)
//	}
//
// A Config is immutable after construction and safe to share across
// goroutines; each streaming call owns its own detection state.
package dsv

import "iter"

// Parse tokenizes a single row using config. Convenience wrapper around
// Parser.Parse for one-off calls.
func Parse(line string, config *Config) ([]string, error) {
	return NewParser(config).Parse(line)
}

// ParseMany parses a batch of rows using config. Convenience wrapper around
// Parser.ParseMany.
func ParseMany(lines []string, config *Config) ([][]string, error) {
	return NewParser(config).ParseMany(lines)
}

// ParseFile reads and parses an entire file using config. Convenience
// wrapper around Parser.ParseFile.
func ParseFile(path string, config *Config) ([][]string, error) {
	return NewParser(config).ParseFile(path)
}

// ParseFileStream streams a file in parsed chunks using config. Convenience
// wrapper around Parser.ParseFileStream.
func ParseFileStream(path string, config *Config) iter.Seq2[[][]string, error] {
	return NewParser(config).ParseFileStream(path)
}
