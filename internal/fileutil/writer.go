// Package fileutil provides filesystem helpers for build outputs.
//
// The central piece is the conditional writer: every file this tool
// emits (output-file-map, file list, depfile, cache stamp) goes through
// it so the file's modification time only changes when its content
// does. Ninja compares timestamps to decide what to rebuild, so
// rewriting an unchanged output would needlessly re-trigger every
// dependent edge.
package fileutil

import (
	"bytes"
	"fmt"
	"os"
)

// Writer accumulates content in memory and writes it to the target
// path only when Commit is called and the content differs from what is
// already on disk. If the caller fails while producing content, it
// calls Discard (or simply never calls Commit) and the existing file
// is left untouched.
type Writer struct {
	path string
	buf  bytes.Buffer
	done bool
}

// NewWriter returns a conditional writer for path. Nothing is touched
// on disk until Commit.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write appends data to the pending content. It never fails; errors
// surface at Commit.
func (w *Writer) Write(p []byte) (int, error) {
	if w.done {
		return 0, fmt.Errorf("write to committed writer for %s", w.path)
	}

	return w.buf.Write(p)
}

// WriteString appends s to the pending content.
func (w *Writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Commit compares the pending content against the existing file and
// writes only on difference or absence.
func (w *Writer) Commit() error {
	if w.done {
		return nil
	}

	w.done = true

	return WriteIfChanged(w.path, w.buf.Bytes())
}

// Discard drops the pending content without touching the target file.
func (w *Writer) Discard() {
	w.done = true
	w.buf.Reset()
}

// WriteIfChanged writes data to path unless the file already holds
// exactly that content. The file's modification time is preserved when
// nothing is written.
func WriteIfChanged(path string, data []byte) error {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return nil
	}

	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read existing file %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// EnsureDirectory creates the directory at path if it does not exist
// and returns the path, so it can be used inline when assembling
// compiler arguments.
func EnsureDirectory(path string) (string, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	return path, nil
}
