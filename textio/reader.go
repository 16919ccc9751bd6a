// Package textio reads delimited-text files safely: it normalizes newlines,
// decodes a configurable text encoding, transparently decompresses common
// compression formats by extension, skips header and footer lines, and
// exposes both whole-file and chunked streaming reads.
//
// The package owns all raw I/O concerns so the parsing engine above it only
// ever sees clean logical lines and a small set of failure categories.
package textio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/splurge/dsv/errs"
	"github.com/splurge/dsv/internal/options"
)

const (
	// DefaultChunkSize is the number of lines per chunk in streaming reads.
	DefaultChunkSize = 500

	// MinChunkSize is the smallest chunk size a Reader accepts.
	MinChunkSize = 10

	// DefaultBufferSize is the initial scan buffer size in bytes.
	DefaultBufferSize = 16384

	// maxLineBytes caps the size of a single logical line.
	maxLineBytes = 16 * 1024 * 1024
)

// Reader reads logical lines from a text file. CRLF and lone CR line endings
// are normalized away, so callers always see lines without terminators.
//
// A Reader is configured once and may perform multiple read calls; each call
// opens and closes the file independently, so a Reader holds no file handle
// between calls.
type Reader struct {
	path            string
	encoding        string
	strip           bool
	skipHeaderLines int
	skipFooterLines int
	chunkSize       int
	bufferSize      int

	digest *xxhash.Digest
}

// Option is a functional option for Reader construction.
type Option = options.Option[*Reader]

// WithEncoding sets the file's text encoding. Supported values: utf-8
// (default, BOM tolerated), utf-8-sig, utf-16, utf-16le, utf-16be, latin-1,
// windows-1252.
func WithEncoding(enc string) Option {
	return options.NoError(func(r *Reader) { r.encoding = enc })
}

// WithLineStrip controls whether each logical line is whitespace-stripped
// after reading. Disabled by default.
func WithLineStrip(strip bool) Option {
	return options.NoError(func(r *Reader) { r.strip = strip })
}

// WithSkipHeaderLines sets the number of leading logical lines to drop.
func WithSkipHeaderLines(n int) Option {
	return options.NoError(func(r *Reader) { r.skipHeaderLines = n })
}

// WithSkipFooterLines sets the number of trailing logical lines to drop.
func WithSkipFooterLines(n int) Option {
	return options.NoError(func(r *Reader) { r.skipFooterLines = n })
}

// WithChunkSize sets the number of lines per streamed chunk.
func WithChunkSize(n int) Option {
	return options.NoError(func(r *Reader) { r.chunkSize = n })
}

// WithBufferSize sets the initial scan buffer size in bytes.
func WithBufferSize(n int) Option {
	return options.NoError(func(r *Reader) { r.bufferSize = n })
}

// NewReader creates a Reader for path with the given options applied over
// the defaults. Returns a Configuration error for an invalid combination;
// the file itself is not touched until a read call.
func NewReader(path string, opts ...Option) (*Reader, error) {
	r := &Reader{
		path:       path,
		encoding:   "utf-8",
		chunkSize:  DefaultChunkSize,
		bufferSize: DefaultBufferSize,
		digest:     xxhash.New(),
	}

	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	if r.chunkSize < MinChunkSize {
		return nil, fmt.Errorf("%w: chunk size must be at least %d, got %d",
			errs.ErrConfiguration, MinChunkSize, r.chunkSize)
	}
	if r.skipHeaderLines < 0 || r.skipFooterLines < 0 {
		return nil, fmt.Errorf("%w: skip line counts cannot be negative", errs.ErrConfiguration)
	}
	if r.bufferSize <= 0 {
		return nil, fmt.Errorf("%w: buffer size must be positive, got %d",
			errs.ErrConfiguration, r.bufferSize)
	}
	if _, err := decodingTransformer(r.encoding); err != nil {
		return nil, err
	}

	return r, nil
}

// Path returns the file path this Reader was created for.
func (r *Reader) Path() string { return r.path }

// Digest returns the xxHash64 of the normalized text consumed by read calls
// so far. Each of Read, Preview and ReadStream resets the digest when it
// starts, so after a completed call the digest covers exactly that call's
// input. Lines are hashed before stripping, each followed by a single LF.
func (r *Reader) Digest() uint64 {
	return r.digest.Sum64()
}

// Read returns all logical lines, with header and footer skipping applied.
func (r *Reader) Read() ([]string, error) {
	var lines []string
	for chunk, err := range r.ReadStream() {
		if err != nil {
			return nil, err
		}
		lines = append(lines, chunk...)
	}

	return lines, nil
}

// Preview returns up to maxLines logical lines from the start of the file,
// after header skipping. Footer skipping is not applied: a bounded prefix
// read cannot know where the file ends.
func (r *Reader) Preview(maxLines int) ([]string, error) {
	if maxLines < 1 {
		return nil, fmt.Errorf("%w: max lines must be positive, got %d",
			errs.ErrConfiguration, maxLines)
	}

	src, err := r.open()
	if err != nil {
		return nil, err
	}
	defer src.close()

	r.digest.Reset()

	skip := r.skipHeaderLines
	lines := make([]string, 0, maxLines)
	for src.scanner.Scan() && len(lines) < maxLines {
		line := r.consume(src.scanner.Text())
		if skip > 0 {
			skip--
			continue
		}
		lines = append(lines, line)
	}
	if err := src.scanner.Err(); err != nil {
		return nil, classifyReadError(r.path, err)
	}

	return lines, nil
}

// ReadStream lazily yields logical lines in chunks of the configured size.
// The last chunk may be shorter; empty chunks are never yielded. A read
// failure ends the sequence with a classified error.
func (r *Reader) ReadStream() iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		src, err := r.open()
		if err != nil {
			yield(nil, err)
			return
		}
		defer src.close()

		r.digest.Reset()

		skip := r.skipHeaderLines
		// Footer lines are withheld in a bounded delay queue: a line is only
		// released once enough lines have arrived after it to prove it is
		// not one of the last skipFooterLines lines.
		delay := make([]string, 0, r.skipFooterLines)
		chunk := make([]string, 0, r.chunkSize)

		for src.scanner.Scan() {
			line := r.consume(src.scanner.Text())
			if skip > 0 {
				skip--
				continue
			}
			if r.skipFooterLines > 0 {
				delay = append(delay, line)
				if len(delay) <= r.skipFooterLines {
					continue
				}
				line = delay[0]
				copy(delay, delay[1:])
				delay = delay[:len(delay)-1]
			}

			chunk = append(chunk, line)
			if len(chunk) == r.chunkSize {
				if !yield(chunk, nil) {
					return
				}
				chunk = make([]string, 0, r.chunkSize)
			}
		}
		if err := src.scanner.Err(); err != nil {
			yield(nil, classifyReadError(r.path, err))
			return
		}
		if len(chunk) > 0 {
			yield(chunk, nil)
		}
	}
}

// consume feeds a raw logical line into the digest and applies stripping.
func (r *Reader) consume(line string) string {
	_, _ = r.digest.WriteString(line)
	_, _ = r.digest.Write([]byte{'\n'})
	if r.strip {
		line = strings.TrimSpace(line)
	}

	return line
}

// source is one open read pass: the file, an optional decompressor, the
// decoding transform and the line scanner on top.
type source struct {
	closers []io.Closer
	scanner *bufio.Scanner
}

func (s *source) close() {
	// Close in reverse so decompressors flush before the file goes away.
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i].Close()
	}
}

func (r *Reader) open() (*source, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, classifyReadError(r.path, err)
	}

	src := &source{closers: []io.Closer{file}}
	var stream io.Reader = file

	if decode, ok := decoderForPath(r.path); ok {
		dec, err := decode(stream)
		if err != nil {
			src.close()
			return nil, err
		}
		src.closers = append(src.closers, dec)
		stream = dec
	}

	decoder, err := decodingTransformer(r.encoding)
	if err != nil {
		src.close()
		return nil, err
	}
	if decoder != nil {
		stream = transform.NewReader(stream, decoder)
	}

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, r.bufferSize), maxLineBytes)
	scanner.Split(scanLogicalLines)
	src.scanner = scanner

	return src, nil
}

// decodingTransformer maps an encoding name to the transformer decoding it
// to UTF-8. Returns a Configuration error for unknown names.
func decodingTransformer(name string) (transform.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8", "utf-8-sig", "utf8-sig":
		// BOM-tolerant UTF-8, with validation so corrupt input surfaces as a
		// decoding error instead of silent replacement characters.
		return transform.Chain(unicode.UTF8BOM.NewDecoder(), encoding.UTF8Validator), nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	case "utf-16le", "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder(), nil
	case "utf-16be", "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder(), nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %q", errs.ErrConfiguration, name)
	}
}

// scanLogicalLines is a bufio.SplitFunc producing lines terminated by LF,
// CRLF or lone CR, with the terminator removed.
func scanLogicalLines(data []byte, atEOF bool) (int, []byte, error) {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			// Need one more byte to tell CR from CRLF.
			return 0, nil, nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}

	return 0, nil, nil
}

// classifyReadError maps a low-level read failure to one of the module's
// failure categories: not-found, permission, generic file operation, or
// decoding for everything that is not an OS-level error.
func classifyReadError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", errs.ErrFileNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", errs.ErrFilePermission, path)
	case errors.Is(err, bufio.ErrTooLong):
		return fmt.Errorf("%w: %s: line exceeds %d bytes", errs.ErrFileOperation, path, maxLineBytes)
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%w: %s: %v", errs.ErrFileOperation, path, err)
	}

	return fmt.Errorf("%w: %s: %v", errs.ErrFileDecoding, path, err)
}
