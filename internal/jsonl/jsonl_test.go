package jsonl

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(rec{Name: "a", Count: 1}))
	require.NoError(t, w.Write(rec{Name: "b", Count: 2}))
	require.NoError(t, w.Close())

	got, err := ReadAll[rec](path)
	require.NoError(t, err)
	assert.Equal(t, []rec{{Name: "a", Count: 1}, {Name: "b", Count: 2}}, got)
}

func TestZstdRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl.zst")

	w, err := NewWriter(path)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, w.Write(rec{Name: "x", Count: i}))
	}
	require.NoError(t, w.Close())

	got, err := ReadAll[rec](path)
	require.NoError(t, err)
	require.Len(t, got, 100)
	assert.Equal(t, 99, got[99].Count)

	// The file on disk must actually be zstd, not plain text.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), 4)
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, raw[:4])
}

func TestReaderSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"name\":\"a\",\"count\":1}\n\n  \n{\"name\":\"b\",\"count\":2}\n"), 0644))

	got, err := ReadAll[rec](path)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestReaderReportsLineNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"name\":\"a\"}\nnot json\n"), 0644))

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	var v rec
	require.NoError(t, r.Next(&v))
	err = r.Next(&v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReaderLastLineWithoutNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"name\":\"a\",\"count\":1}"), 0644))

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	var v rec
	require.NoError(t, r.Next(&v))
	assert.Equal(t, "a", v.Name)
	assert.ErrorIs(t, r.Next(&v), io.EOF)
}
