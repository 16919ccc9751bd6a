package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// rowWriter renders parsed chunks in one of the supported output formats.
//
// table and ndjson write incrementally, so streamed files of any size render
// in bounded memory; json necessarily accumulates rows to emit one array.
type rowWriter struct {
	w      io.Writer
	format string

	accumulated [][]string // json mode only
	wroteChunk  bool
}

func newRowWriter(w io.Writer, format string) (*rowWriter, error) {
	switch format {
	case "table", "json", "ndjson":
		return &rowWriter{w: w, format: format}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (want table, json or ndjson)", format)
	}
}

func (rw *rowWriter) writeChunk(rows [][]string) error {
	switch rw.format {
	case "json":
		rw.accumulated = append(rw.accumulated, rows...)
		return nil

	case "ndjson":
		enc := json.NewEncoder(rw.w)
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil

	default: // table
		if rw.wroteChunk {
			if _, err := fmt.Fprintln(rw.w, "---"); err != nil {
				return err
			}
		}
		rw.wroteChunk = true
		for _, row := range rows {
			if _, err := fmt.Fprintln(rw.w, strings.Join(row, " | ")); err != nil {
				return err
			}
		}
		return nil
	}
}

func (rw *rowWriter) flush() error {
	if rw.format != "json" {
		return nil
	}

	rows := rw.accumulated
	if rows == nil {
		rows = [][]string{}
	}
	enc := json.NewEncoder(rw.w)
	enc.SetIndent("", "  ")

	return enc.Encode(rows)
}
