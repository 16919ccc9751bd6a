package dsv

import "strings"

// detectColumns scans tokenized rows in order and returns the field count of
// the first non-blank row. The second return value is false when every row is
// blank, signaling that the column count is undetermined.
//
// The scan is pure and short-circuits on the first non-blank row; the input
// is never mutated or reordered.
func detectColumns(rows [][]string) (int, bool) {
	for _, row := range rows {
		if !isBlankRow(row) {
			return len(row), true
		}
	}

	return 0, false
}

// isBlankRow reports whether a tokenized row carries no data: zero fields, or
// exactly one field that is empty after stripping.
func isBlankRow(row []string) bool {
	switch len(row) {
	case 0:
		return true
	case 1:
		return strings.TrimSpace(row[0]) == ""
	default:
		return false
	}
}
