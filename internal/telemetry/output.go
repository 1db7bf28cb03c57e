package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Writer appends frame records to a CSV stream.
type Writer struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
}

// NewWriter wraps w. The header is written with the first record.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Create opens path for writing, creating parent directories.
// Returns nil if path is empty (output disabled).
func Create(path string) (*Writer, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating stats directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	return &Writer{w: f, closer: f}, nil
}

// Write appends one record.
func (w *Writer) Write(rec FrameRecord) error {
	if w == nil {
		return nil
	}
	records := []FrameRecord{rec}

	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.w); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.w); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// Close closes the underlying file, if Create opened one.
func (w *Writer) Close() error {
	if w == nil || w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
