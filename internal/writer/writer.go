// Package writer exports scraped quotes as JSON Lines.
package writer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-scripts/quotes/internal/types"
)

// FileWriter appends one quote record per line to a file.
type FileWriter struct {
	file    *os.File
	buf     *bufio.Writer
	enc     *json.Encoder
	written int
}

// New creates path, and its directory if needed, truncating any existing file.
func New(path string) (*FileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &FileWriter{file: f, buf: buf, enc: enc}, nil
}

// Write encodes rec as a single line.
func (w *FileWriter) Write(rec types.QuoteRecord) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}
	w.written++
	return nil
}

// Written returns the number of records written so far.
func (w *FileWriter) Written() int {
	return w.written
}

// Close flushes buffered records and closes the file.
func (w *FileWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return w.file.Close()
}
