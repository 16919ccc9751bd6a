// Package errs defines the sentinel errors shared across the dsv module.
//
// Every failure produced by this module wraps one of these sentinels, so
// callers can classify errors with errors.Is regardless of which layer
// (tokenizer, parser, file reader, path validator) produced them.
package errs

import (
	"errors"
	"fmt"
)

// Configuration and parsing errors.
var (
	// ErrConfiguration indicates an invalid parser configuration, such as an
	// empty delimiter or a non-positive chunk size. It is always fatal and is
	// raised before any row is processed.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrColumnMismatch indicates a row whose field count differs from the
	// target column count while a strict validation flag is enabled.
	ErrColumnMismatch = errors.New("column count mismatch")

	// ErrStreaming categorizes any failure inside a streaming parse call.
	// The underlying cause is wrapped alongside it, so errors.Is matches
	// both ErrStreaming and the cause's own sentinel.
	ErrStreaming = errors.New("streaming failed")
)

// File and path errors surfaced by the textio and pathutil packages.
var (
	ErrPathValidation = errors.New("path validation failed")
	ErrFileNotFound   = errors.New("file not found")
	ErrFilePermission = errors.New("file permission denied")
	ErrFileDecoding   = errors.New("file decoding failed")
	ErrFileOperation  = errors.New("file operation failed")
)

// ColumnMismatchError reports a row whose field count does not match the
// expected column count. It wraps ErrColumnMismatch so callers can match the
// category with errors.Is while still reading the exact widths and the row's
// position within the current batch or chunk.
type ColumnMismatchError struct {
	// Expected is the target column count.
	Expected int
	// Actual is the field count the offending row actually has.
	Actual int
	// RowIndex is the zero-based index of the row within the batch or chunk
	// being processed when the mismatch was found.
	RowIndex int
}

func (e *ColumnMismatchError) Error() string {
	if e.Actual < e.Expected {
		return fmt.Sprintf("row %d has %d columns, expected %d (missing %d)",
			e.RowIndex, e.Actual, e.Expected, e.Expected-e.Actual)
	}

	return fmt.Sprintf("row %d has %d columns, expected %d (extra %d)",
		e.RowIndex, e.Actual, e.Expected, e.Actual-e.Expected)
}

func (e *ColumnMismatchError) Unwrap() error {
	return ErrColumnMismatch
}
