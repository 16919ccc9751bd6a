package dsv

import (
	"iter"

	"github.com/splurge/dsv/pathutil"
	"github.com/splurge/dsv/textio"
)

// ParseFile reads and parses an entire delimited file, returning one row of
// fields per non-skipped line. The path is validated first; the file is read
// through the textio reader, so newline normalization, encoding, transparent
// decompression and header/footer skipping all apply.
func (p *Parser) ParseFile(path string) ([][]string, error) {
	reader, err := p.fileReader(path)
	if err != nil {
		return nil, err
	}

	lines, err := reader.Read()
	if err != nil {
		return nil, err
	}

	return p.ParseMany(lines)
}

// ParseFileStream parses a delimited file lazily, yielding chunks of parsed
// rows. It composes the textio reader's chunked line stream with
// ParseStream, so column detection, bounded lookahead and normalization
// behave exactly as documented there.
//
// Validation and open errors surface on the first pull of the returned
// sequence.
func (p *Parser) ParseFileStream(path string) iter.Seq2[[][]string, error] {
	return func(yield func([][]string, error) bool) {
		reader, err := p.fileReader(path)
		if err != nil {
			yield(nil, err)
			return
		}

		for chunk, err := range p.ParseStream(reader.ReadStream()) {
			if !yield(chunk, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// PreviewFile returns up to maxLines parsed rows from the start of the file,
// without any width normalization applied.
func (p *Parser) PreviewFile(path string, maxLines int) ([][]string, error) {
	reader, err := p.fileReader(path)
	if err != nil {
		return nil, err
	}

	lines, err := reader.Preview(maxLines)
	if err != nil {
		return nil, err
	}

	return p.tokenizeAll(lines)
}

// fileReader validates path and builds a textio.Reader matching the parser's
// configuration. Line stripping is left to the tokenizer; the reader strips
// nothing itself.
func (p *Parser) fileReader(path string) (*textio.Reader, error) {
	cfg := p.config

	validated, err := pathutil.Validate(path,
		pathutil.MustBeFile(),
		pathutil.MustBeReadable(),
	)
	if err != nil {
		return nil, err
	}

	return textio.NewReader(validated,
		textio.WithEncoding(cfg.encoding),
		textio.WithSkipHeaderLines(cfg.skipHeaderRows),
		textio.WithSkipFooterLines(cfg.skipFooterRows),
		textio.WithChunkSize(cfg.chunkSize),
	)
}
