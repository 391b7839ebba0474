// Package jsonl reads and writes line-oriented JSON record streams.
// Files ending in .zst are transparently (de)compressed with zstd.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Reader yields one decoded record per line.
type Reader struct {
	f    *os.File
	zr   *zstd.Decoder
	br   *bufio.Reader
	line int
}

func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	r := &Reader{f: f}
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create zstd reader for %s: %w", path, err)
		}
		r.zr = zr
		r.br = bufio.NewReaderSize(zr, 1<<20)
	} else {
		r.br = bufio.NewReaderSize(f, 1<<20)
	}
	return r, nil
}

// Next decodes the next line into v. Returns io.EOF when the stream ends.
// Blank lines are skipped.
func (r *Reader) Next(v any) error {
	for {
		line, err := r.br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return err
		}
		r.line++
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if err == io.EOF {
				return io.EOF
			}
			continue
		}
		if uerr := json.Unmarshal([]byte(trimmed), v); uerr != nil {
			return fmt.Errorf("line %d: %w", r.line, uerr)
		}
		return nil
	}
}

func (r *Reader) Close() error {
	if r.zr != nil {
		r.zr.Close()
	}
	return r.f.Close()
}

// ReadAll decodes every line of the file at path into a slice of T.
func ReadAll[T any](path string) ([]T, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []T
	for {
		var rec T
		err := r.Next(&rec)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, rec)
	}
}

// Writer emits one JSON record per line.
type Writer struct {
	f      *os.File
	zw     *zstd.Encoder
	bw     *bufio.Writer
	closed bool
}

func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := &Writer{f: f}
	if strings.HasSuffix(path, ".zst") {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create zstd writer for %s: %w", path, err)
		}
		w.zw = zw
		w.bw = bufio.NewWriterSize(zw, 1<<20)
	} else {
		w.bw = bufio.NewWriterSize(f, 1<<20)
	}
	return w, nil
}

func (w *Writer) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := w.bw.Write(b); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

// Close flushes and closes the underlying file. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			return err
		}
	}
	return w.f.Close()
}
