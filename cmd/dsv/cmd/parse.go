package cmd

import (
	"github.com/spf13/cobra"

	"github.com/splurge/dsv"
)

var parseFlags struct {
	delimiter             string
	bookend               string
	noStrip               bool
	noBookendStrip        bool
	encoding              string
	skipHeader            int
	skipFooter            int
	stream                bool
	chunkSize             int
	detectColumns         bool
	targetColumns         int
	maxDetectChunks       int
	raiseOnMissingColumns bool
	raiseOnExtraColumns   bool
	outputFormat          string
	configPath            string
}

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a delimited file and print its rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	f := parseCmd.Flags()
	f.StringVarP(&parseFlags.delimiter, "delimiter", "d", "", "field delimiter (required unless set in --config)")
	f.StringVar(&parseFlags.bookend, "bookend", "", "bookend character stripped from field ends")
	f.BoolVar(&parseFlags.noStrip, "no-strip", false, "do not strip whitespace from fields")
	f.BoolVar(&parseFlags.noBookendStrip, "no-bookend-strip", false, "do not re-strip whitespace after bookend removal")
	f.StringVar(&parseFlags.encoding, "encoding", dsv.DefaultEncoding, "file text encoding")
	f.IntVar(&parseFlags.skipHeader, "skip-header", 0, "number of header rows to skip")
	f.IntVar(&parseFlags.skipFooter, "skip-footer", 0, "number of footer rows to skip")
	f.BoolVar(&parseFlags.stream, "stream", false, "stream the file in chunks instead of reading it whole")
	f.IntVar(&parseFlags.chunkSize, "chunk-size", dsv.DefaultChunkSize, "rows per chunk in stream mode")
	f.BoolVar(&parseFlags.detectColumns, "detect-columns", false, "detect the column count from the first non-blank row")
	f.IntVar(&parseFlags.targetColumns, "target-columns", 0, "normalize every row to this column count")
	f.IntVar(&parseFlags.maxDetectChunks, "max-detect-chunks", dsv.DefaultMaxDetectChunks, "chunks to buffer while detecting columns")
	f.BoolVar(&parseFlags.raiseOnMissingColumns, "raise-on-missing-columns", false, "fail on rows with missing columns instead of padding")
	f.BoolVar(&parseFlags.raiseOnExtraColumns, "raise-on-extra-columns", false, "fail on rows with extra columns instead of truncating")
	f.StringVar(&parseFlags.outputFormat, "output-format", "table", "output format: table, json or ndjson")
	f.StringVar(&parseFlags.configPath, "config", "", "YAML config file; explicit flags override its values")

	rootCmd.AddCommand(parseCmd)
}

// buildConfig assembles the parser configuration: config file values first,
// then every flag the user set explicitly on top.
func buildConfig(cmd *cobra.Command) (*dsv.Config, error) {
	var opts []dsv.Option

	addIf := func(name string, opt dsv.Option) {
		if cmd.Flags().Changed(name) {
			opts = append(opts, opt)
		}
	}

	addIf("delimiter", dsv.WithDelimiter(parseFlags.delimiter))
	addIf("bookend", dsv.WithBookend(parseFlags.bookend))
	addIf("no-strip", dsv.WithStrip(!parseFlags.noStrip))
	addIf("no-bookend-strip", dsv.WithBookendStrip(!parseFlags.noBookendStrip))
	addIf("encoding", dsv.WithEncoding(parseFlags.encoding))
	addIf("skip-header", dsv.WithSkipHeaderRows(parseFlags.skipHeader))
	addIf("skip-footer", dsv.WithSkipFooterRows(parseFlags.skipFooter))
	addIf("chunk-size", dsv.WithChunkSize(parseFlags.chunkSize))
	addIf("detect-columns", dsv.WithColumnDetection(parseFlags.detectColumns))
	addIf("target-columns", dsv.WithTargetColumns(parseFlags.targetColumns))
	addIf("max-detect-chunks", dsv.WithMaxDetectChunks(parseFlags.maxDetectChunks))
	addIf("raise-on-missing-columns", dsv.WithRaiseOnMissingColumns(parseFlags.raiseOnMissingColumns))
	addIf("raise-on-extra-columns", dsv.WithRaiseOnExtraColumns(parseFlags.raiseOnExtraColumns))

	if parseFlags.configPath != "" {
		return dsv.ConfigFromFile(parseFlags.configPath, opts...)
	}

	return dsv.NewConfig(opts...)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	writer, err := newRowWriter(cmd.OutOrStdout(), parseFlags.outputFormat)
	if err != nil {
		return err
	}

	parser := dsv.NewParser(cfg)
	path := args[0]

	if parseFlags.stream {
		for chunk, err := range parser.ParseFileStream(path) {
			if err != nil {
				return err
			}
			if err := writer.writeChunk(chunk); err != nil {
				return err
			}
		}
		return writer.flush()
	}

	rows, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	if err := writer.writeChunk(rows); err != nil {
		return err
	}

	return writer.flush()
}
