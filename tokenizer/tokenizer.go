// Package tokenizer splits a single logical row of delimited text into
// string fields.
//
// Splitting is a literal, non-overlapping scan for the delimiter. There is no
// delimiter-aware quoted-field state machine: bookend characters are stripped
// per field after the split, so a field like `"a,b"` with delimiter ',' is
// split into `"a` and `b"`. This naive behavior is deliberate and is relied
// upon by callers; do not replace it with RFC-4180 quote semantics.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/splurge/dsv/errs"
)

// Tokenize splits content on every literal occurrence of delimiter, left to
// right. Empty fields are preserved: "a,,c" with delimiter "," yields three
// fields. Empty content yields a single empty field. When strip is true,
// leading and trailing whitespace is removed from each field.
//
// Returns a Configuration error when delimiter is empty.
func Tokenize(content string, delimiter string, strip bool) ([]string, error) {
	if delimiter == "" {
		return nil, fmt.Errorf("%w: delimiter cannot be empty", errs.ErrConfiguration)
	}

	tokens := strings.Split(content, delimiter)
	if strip {
		for i, token := range tokens {
			tokens[i] = strings.TrimSpace(token)
		}
	}

	return tokens, nil
}

// RemoveBookends strips exactly one leading and one trailing occurrence of
// bookend from token when token starts and ends with it and is long enough to
// contain both. A token equal to a single bookend is left unmodified, since
// its only character cannot be both the opening and the closing bookend.
// Nested pairs are not stripped recursively and no escaping or doubling
// semantics apply.
//
// When strip is true, whitespace is trimmed again after bookend removal.
func RemoveBookends(token string, bookend string, strip bool) string {
	if bookend != "" &&
		len(token) >= 2*len(bookend) &&
		strings.HasPrefix(token, bookend) &&
		strings.HasSuffix(token, bookend) {
		token = token[len(bookend) : len(token)-len(bookend)]
	}

	if strip {
		token = strings.TrimSpace(token)
	}

	return token
}
