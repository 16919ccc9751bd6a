// Package pathutil validates file paths before any I/O is attempted,
// rejecting malformed or escaping paths early with typed errors.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/splurge/dsv/errs"
	"github.com/splurge/dsv/internal/options"
)

// checks carries the validation requirements for one Validate call.
type checks struct {
	mustExist      bool
	mustBeFile     bool
	mustBeReadable bool
}

// Option is a functional option for Validate.
type Option = options.Option[*checks]

// MustExist requires the path to exist.
func MustExist() Option {
	return options.NoError(func(c *checks) { c.mustExist = true })
}

// MustBeFile requires the path to be a regular file (implies existence).
func MustBeFile() Option {
	return options.NoError(func(c *checks) {
		c.mustExist = true
		c.mustBeFile = true
	})
}

// MustBeReadable requires the path to be openable for reading (implies
// existence).
func MustBeReadable() Option {
	return options.NoError(func(c *checks) {
		c.mustExist = true
		c.mustBeReadable = true
	})
}

// Validate checks path against structural rules and the requested
// requirements, and returns the cleaned absolute path with symlinks
// resolved.
//
// Structural rules always apply: the path must be non-empty, must not
// contain NUL bytes, and must not contain parent-directory traversal
// components. Violations return a path validation error; a missing file
// returns a not-found error; an unreadable file returns a permission error.
func Validate(path string, opts ...Option) (string, error) {
	var c checks
	if err := options.Apply(&c, opts...); err != nil {
		return "", err
	}

	if path == "" {
		return "", fmt.Errorf("%w: path is empty", errs.ErrPathValidation)
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: path contains NUL byte", errs.ErrPathValidation)
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: path %q contains parent traversal", errs.ErrPathValidation, path)
		}
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", errs.ErrPathValidation, path, err)
	}

	info, err := os.Stat(abs)
	switch {
	case err == nil:
		// Resolve symlinks so later opens act on the real file.
		if resolved, rerr := filepath.EvalSymlinks(abs); rerr == nil {
			abs = resolved
		}
	case os.IsNotExist(err):
		if c.mustExist {
			return "", fmt.Errorf("%w: %s", errs.ErrFileNotFound, path)
		}
		return abs, nil
	case os.IsPermission(err):
		return "", fmt.Errorf("%w: %s", errs.ErrFilePermission, path)
	default:
		return "", fmt.Errorf("%w: %s: %v", errs.ErrPathValidation, path, err)
	}

	if c.mustBeFile && !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", errs.ErrPathValidation, path)
	}

	if c.mustBeReadable {
		f, err := os.Open(abs)
		if err != nil {
			if os.IsPermission(err) {
				return "", fmt.Errorf("%w: %s", errs.ErrFilePermission, path)
			}
			return "", fmt.Errorf("%w: %s: %v", errs.ErrFileOperation, path, err)
		}
		_ = f.Close()
	}

	return abs, nil
}
