package textio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"
	"github.com/valyala/gozstd"

	"github.com/splurge/dsv/errs"
)

// Decoder wraps a raw byte stream in a decompressing reader. The returned
// closer releases only the decompressor's own resources, never the
// underlying reader.
type Decoder func(io.Reader) (io.ReadCloser, error)

// codecs maps file extensions to stream decompressors. Files with any other
// extension are read as plain text.
var codecs = map[string]Decoder{
	".gz":  newGzipDecoder,
	".zst": newZstdDecoder,
	".lz4": newLZ4Decoder,
	".s2":  newS2Decoder,
}

// CompressedExtensions returns the file extensions read through a
// decompressor, sorted order not guaranteed.
func CompressedExtensions() []string {
	exts := make([]string, 0, len(codecs))
	for ext := range codecs {
		exts = append(exts, ext)
	}

	return exts
}

// decoderForPath selects a decompressor by file extension.
func decoderForPath(path string) (Decoder, bool) {
	dec, ok := codecs[strings.ToLower(filepath.Ext(path))]

	return dec, ok
}

func newGzipDecoder(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip: %v", errs.ErrFileDecoding, err)
	}

	return zr, nil
}

func newZstdDecoder(r io.Reader) (io.ReadCloser, error) {
	zr := gozstd.NewReader(r)

	return &zstdReadCloser{zr: zr}, nil
}

// zstdReadCloser adapts gozstd's Release-based lifecycle to io.ReadCloser.
type zstdReadCloser struct {
	zr *gozstd.Reader
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.zr.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.zr.Release()

	return nil
}

func newLZ4Decoder(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func newS2Decoder(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}
