package dsv

import "github.com/splurge/dsv/errs"

// widthPolicy bundles the target column count with the strict-mismatch flags
// so the pad/truncate/raise decision lives in one place. detected records
// whether the target was inferred from the data rather than configured
// explicitly; the two sources treat blank rows differently.
type widthPolicy struct {
	target         int
	detected       bool
	raiseOnMissing bool
	raiseOnExtra   bool
}

// enforced reports whether the policy normalizes rows at all. A zero target
// disables normalization entirely.
func (p widthPolicy) enforced() bool {
	return p.target > 0
}

// normalize pads or truncates row to the policy's target width. Under-width
// rows are padded on the right with empty fields; over-width rows are
// truncated on the right. When the corresponding strict flag is set, a
// mismatching row fails with a ColumnMismatchError carrying rowIndex instead.
// Rows that already match pass through unchanged regardless of flags.
//
// When the target was inferred by column detection, blank rows are exempt:
// they are neither padded nor counted as strict mismatches. An explicitly
// configured target treats blank rows like any other row.
func (p widthPolicy) normalize(row []string, rowIndex int) ([]string, error) {
	if !p.enforced() || (p.detected && isBlankRow(row)) {
		return row, nil
	}

	switch {
	case len(row) < p.target:
		if p.raiseOnMissing {
			return nil, &errs.ColumnMismatchError{
				Expected: p.target,
				Actual:   len(row),
				RowIndex: rowIndex,
			}
		}
		padded := make([]string, p.target)
		copy(padded, row)

		return padded, nil

	case len(row) > p.target:
		if p.raiseOnExtra {
			return nil, &errs.ColumnMismatchError{
				Expected: p.target,
				Actual:   len(row),
				RowIndex: rowIndex,
			}
		}

		return row[:p.target], nil

	default:
		return row, nil
	}
}

// normalizeAll applies the policy to every row in place, using each row's
// index within rows for error context. It stops at the first failing row.
func (p widthPolicy) normalizeAll(rows [][]string) ([][]string, error) {
	if !p.enforced() {
		return rows, nil
	}

	for i, row := range rows {
		normalized, err := p.normalize(row, i)
		if err != nil {
			return nil, err
		}
		rows[i] = normalized
	}

	return rows, nil
}
