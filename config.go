package dsv

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/splurge/dsv/errs"
	"github.com/splurge/dsv/internal/options"
	"github.com/splurge/dsv/textio"
)

// Configuration defaults and limits. The chunk size bounds mirror the textio
// reader's, since streaming chunks originate there.
const (
	// DefaultChunkSize is the number of rows per chunk in streaming mode.
	DefaultChunkSize = textio.DefaultChunkSize

	// MinChunkSize is the smallest chunk size a Config accepts.
	MinChunkSize = textio.MinChunkSize

	// DefaultMaxDetectChunks bounds how many leading chunks a streaming parse
	// may buffer while searching for the first non-blank row.
	DefaultMaxDetectChunks = 5

	// DefaultEncoding is the text encoding used for file operations.
	DefaultEncoding = "utf-8"
)

// Config holds the immutable configuration for DSV parsing operations.
//
// A Config is constructed once via NewConfig (or the CSV/TSV factories, or
// ConfigFromFile) and is never mutated afterwards, so a single instance is
// safe to share by reference across many parse calls and goroutines.
type Config struct {
	delimiter             string
	strip                 bool
	bookend               string
	bookendStrip          bool
	encoding              string
	skipHeaderRows        int
	skipFooterRows        int
	chunkSize             int
	detectColumns         bool
	targetColumns         int
	maxDetectChunks       int
	raiseOnMissingColumns bool
	raiseOnExtraColumns   bool
}

// Option is a functional option for Config construction.
type Option = options.Option[*Config]

// NewConfig creates a Config with the given options applied over the
// defaults: strip and bookend-strip enabled, UTF-8 encoding, chunk size 500,
// detection window of 5 chunks, no bookend, no target width, lenient
// normalization.
//
// Returns a Configuration error when the resulting configuration is invalid:
// empty delimiter, chunk size below MinChunkSize, negative skip counts,
// negative target column count, or a non-positive detection window.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		strip:           true,
		bookendStrip:    true,
		encoding:        DefaultEncoding,
		chunkSize:       DefaultChunkSize,
		maxDetectChunks: DefaultMaxDetectChunks,
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewCSVConfig creates a comma-delimited Config.
func NewCSVConfig(opts ...Option) (*Config, error) {
	return NewConfig(append([]Option{WithDelimiter(",")}, opts...)...)
}

// NewTSVConfig creates a tab-delimited Config.
func NewTSVConfig(opts ...Option) (*Config, error) {
	return NewConfig(append([]Option{WithDelimiter("\t")}, opts...)...)
}

// configFile mirrors the YAML configuration schema. Pointer fields
// distinguish "absent" from an explicit zero value so file settings never
// clobber defaults they did not mention.
type configFile struct {
	Delimiter             *string `yaml:"delimiter"`
	Strip                 *bool   `yaml:"strip"`
	Bookend               *string `yaml:"bookend"`
	BookendStrip          *bool   `yaml:"bookend_strip"`
	Encoding              *string `yaml:"encoding"`
	SkipHeaderRows        *int    `yaml:"skip_header_rows"`
	SkipFooterRows        *int    `yaml:"skip_footer_rows"`
	ChunkSize             *int    `yaml:"chunk_size"`
	DetectColumns         *bool   `yaml:"detect_columns"`
	TargetColumns         *int    `yaml:"target_columns"`
	MaxDetectChunks       *int    `yaml:"max_detect_chunks"`
	RaiseOnMissingColumns *bool   `yaml:"raise_on_missing_columns"`
	RaiseOnExtraColumns   *bool   `yaml:"raise_on_extra_columns"`
}

// ConfigFromFile loads a Config from a YAML file. Settings present in the
// file are applied first; opts are applied afterwards and override the file.
//
// Returns a not-found error for a missing file, a file operation error for
// any other read failure, and a Configuration error when the YAML is
// malformed or the resulting configuration is invalid.
func ConfigFromFile(path string, opts ...Option) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file %s", errs.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: reading config file %s: %v", errs.ErrFileOperation, path, err)
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return nil, fmt.Errorf("%w: config file %s is not valid YAML: %v", errs.ErrConfiguration, path, err)
	}

	fileOpts := fileCfg.toOptions()

	return NewConfig(append(fileOpts, opts...)...)
}

func (f *configFile) toOptions() []Option {
	var opts []Option
	if f.Delimiter != nil {
		opts = append(opts, WithDelimiter(*f.Delimiter))
	}
	if f.Strip != nil {
		opts = append(opts, WithStrip(*f.Strip))
	}
	if f.Bookend != nil {
		opts = append(opts, WithBookend(*f.Bookend))
	}
	if f.BookendStrip != nil {
		opts = append(opts, WithBookendStrip(*f.BookendStrip))
	}
	if f.Encoding != nil {
		opts = append(opts, WithEncoding(*f.Encoding))
	}
	if f.SkipHeaderRows != nil {
		opts = append(opts, WithSkipHeaderRows(*f.SkipHeaderRows))
	}
	if f.SkipFooterRows != nil {
		opts = append(opts, WithSkipFooterRows(*f.SkipFooterRows))
	}
	if f.ChunkSize != nil {
		opts = append(opts, WithChunkSize(*f.ChunkSize))
	}
	if f.DetectColumns != nil {
		opts = append(opts, WithColumnDetection(*f.DetectColumns))
	}
	if f.TargetColumns != nil {
		opts = append(opts, WithTargetColumns(*f.TargetColumns))
	}
	if f.MaxDetectChunks != nil {
		opts = append(opts, WithMaxDetectChunks(*f.MaxDetectChunks))
	}
	if f.RaiseOnMissingColumns != nil {
		opts = append(opts, WithRaiseOnMissingColumns(*f.RaiseOnMissingColumns))
	}
	if f.RaiseOnExtraColumns != nil {
		opts = append(opts, WithRaiseOnExtraColumns(*f.RaiseOnExtraColumns))
	}

	return opts
}

func (c *Config) validate() error {
	if c.delimiter == "" {
		return fmt.Errorf("%w: delimiter cannot be empty", errs.ErrConfiguration)
	}
	if c.chunkSize < MinChunkSize {
		return fmt.Errorf("%w: chunk size must be at least %d, got %d",
			errs.ErrConfiguration, MinChunkSize, c.chunkSize)
	}
	if c.skipHeaderRows < 0 {
		return fmt.Errorf("%w: skip header rows cannot be negative, got %d",
			errs.ErrConfiguration, c.skipHeaderRows)
	}
	if c.skipFooterRows < 0 {
		return fmt.Errorf("%w: skip footer rows cannot be negative, got %d",
			errs.ErrConfiguration, c.skipFooterRows)
	}
	if c.targetColumns < 0 {
		return fmt.Errorf("%w: target columns cannot be negative, got %d",
			errs.ErrConfiguration, c.targetColumns)
	}
	if c.maxDetectChunks < 1 {
		return fmt.Errorf("%w: max detect chunks must be positive, got %d",
			errs.ErrConfiguration, c.maxDetectChunks)
	}

	return nil
}

// WithDelimiter sets the field delimiter. It is the only required option.
func WithDelimiter(delimiter string) Option {
	return options.NoError(func(c *Config) { c.delimiter = delimiter })
}

// WithStrip controls whether leading/trailing whitespace is removed from each
// field. Enabled by default.
func WithStrip(strip bool) Option {
	return options.NoError(func(c *Config) { c.strip = strip })
}

// WithBookend sets the symmetric quote-like character stripped from both ends
// of a field, for example `"` or `'`. Empty disables bookend handling.
func WithBookend(bookend string) Option {
	return options.NoError(func(c *Config) { c.bookend = bookend })
}

// WithBookendStrip controls whether whitespace is stripped again after
// bookend removal. Enabled by default.
func WithBookendStrip(strip bool) Option {
	return options.NoError(func(c *Config) { c.bookendStrip = strip })
}

// WithEncoding sets the text encoding used when reading files.
func WithEncoding(encoding string) Option {
	return options.NoError(func(c *Config) { c.encoding = encoding })
}

// WithSkipHeaderRows sets the number of leading rows skipped when reading
// files.
func WithSkipHeaderRows(n int) Option {
	return options.NoError(func(c *Config) { c.skipHeaderRows = n })
}

// WithSkipFooterRows sets the number of trailing rows skipped when reading
// files.
func WithSkipFooterRows(n int) Option {
	return options.NoError(func(c *Config) { c.skipFooterRows = n })
}

// WithChunkSize sets the number of rows per chunk in streaming mode.
func WithChunkSize(n int) Option {
	return options.NoError(func(c *Config) { c.chunkSize = n })
}

// WithColumnDetection enables inferring the column count from the first
// non-blank row. Ignored when a target column count is set explicitly.
func WithColumnDetection(detect bool) Option {
	return options.NoError(func(c *Config) { c.detectColumns = detect })
}

// WithTargetColumns sets a fixed column count every row is normalized to.
// Zero means no normalization (unless column detection is enabled).
func WithTargetColumns(n int) Option {
	return options.NoError(func(c *Config) { c.targetColumns = n })
}

// WithMaxDetectChunks bounds how many leading chunks a streaming parse may
// buffer while searching for the first non-blank row.
func WithMaxDetectChunks(n int) Option {
	return options.NoError(func(c *Config) { c.maxDetectChunks = n })
}

// WithRaiseOnMissingColumns makes rows with fewer fields than the target
// column count fail with a ColumnMismatch error instead of being padded.
func WithRaiseOnMissingColumns(raise bool) Option {
	return options.NoError(func(c *Config) { c.raiseOnMissingColumns = raise })
}

// WithRaiseOnExtraColumns makes rows with more fields than the target column
// count fail with a ColumnMismatch error instead of being truncated.
func WithRaiseOnExtraColumns(raise bool) Option {
	return options.NoError(func(c *Config) { c.raiseOnExtraColumns = raise })
}

// Delimiter returns the field delimiter.
func (c *Config) Delimiter() string { return c.delimiter }

// Strip reports whether fields are whitespace-stripped.
func (c *Config) Strip() bool { return c.strip }

// Bookend returns the bookend character, or empty when disabled.
func (c *Config) Bookend() string { return c.bookend }

// BookendStrip reports whether fields are re-stripped after bookend removal.
func (c *Config) BookendStrip() bool { return c.bookendStrip }

// Encoding returns the text encoding used for file operations.
func (c *Config) Encoding() string { return c.encoding }

// SkipHeaderRows returns the number of leading rows skipped in files.
func (c *Config) SkipHeaderRows() int { return c.skipHeaderRows }

// SkipFooterRows returns the number of trailing rows skipped in files.
func (c *Config) SkipFooterRows() int { return c.skipFooterRows }

// ChunkSize returns the number of rows per streaming chunk.
func (c *Config) ChunkSize() int { return c.chunkSize }

// DetectColumns reports whether column-count detection is enabled.
func (c *Config) DetectColumns() bool { return c.detectColumns }

// TargetColumns returns the fixed column count, or zero when unset.
func (c *Config) TargetColumns() int { return c.targetColumns }

// MaxDetectChunks returns the detection lookahead bound.
func (c *Config) MaxDetectChunks() int { return c.maxDetectChunks }

// RaiseOnMissingColumns reports whether under-width rows fail instead of
// being padded.
func (c *Config) RaiseOnMissingColumns() bool { return c.raiseOnMissingColumns }

// RaiseOnExtraColumns reports whether over-width rows fail instead of being
// truncated.
func (c *Config) RaiseOnExtraColumns() bool { return c.raiseOnExtraColumns }
