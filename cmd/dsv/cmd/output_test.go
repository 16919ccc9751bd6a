package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRowWriter_UnknownFormat(t *testing.T) {
	_, err := newRowWriter(&bytes.Buffer{}, "xml")
	require.Error(t, err)
}

func TestRowWriter_Table(t *testing.T) {
	var buf bytes.Buffer
	rw, err := newRowWriter(&buf, "table")
	require.NoError(t, err)

	require.NoError(t, rw.writeChunk([][]string{{"a", "b"}, {"c", "d"}}))
	require.NoError(t, rw.writeChunk([][]string{{"e", "f"}}))
	require.NoError(t, rw.flush())

	require.Equal(t, "a | b\nc | d\n---\ne | f\n", buf.String())
}

func TestRowWriter_NDJSON(t *testing.T) {
	var buf bytes.Buffer
	rw, err := newRowWriter(&buf, "ndjson")
	require.NoError(t, err)

	require.NoError(t, rw.writeChunk([][]string{{"a", "b"}, {"c"}}))
	require.NoError(t, rw.flush())

	require.Equal(t, "[\"a\",\"b\"]\n[\"c\"]\n", buf.String())
}

func TestRowWriter_JSONAccumulates(t *testing.T) {
	var buf bytes.Buffer
	rw, err := newRowWriter(&buf, "json")
	require.NoError(t, err)

	require.NoError(t, rw.writeChunk([][]string{{"a"}}))
	require.NoError(t, rw.writeChunk([][]string{{"b"}}))
	require.Empty(t, buf.String(), "json output must wait for flush")

	require.NoError(t, rw.flush())
	require.JSONEq(t, `[["a"],["b"]]`, buf.String())
}

func TestRowWriter_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	rw, err := newRowWriter(&buf, "json")
	require.NoError(t, err)

	require.NoError(t, rw.flush())
	require.JSONEq(t, `[]`, buf.String())
}
