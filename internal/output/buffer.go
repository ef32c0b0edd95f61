// Package output implements the write-if-changed file sink used by
// exporters: content is accumulated in memory and only flushed to disk
// when it differs from what is already there, so downstream consumers
// watching the file never see spurious rewrites.
package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Buffer accumulates the full content of one output file in memory.
// The zero value is ready to use.
type Buffer struct {
	buf bytes.Buffer
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

// WriteString appends a string to the buffer.
func (b *Buffer) WriteString(s string) {
	b.buf.WriteString(s)
}

// Len returns the number of bytes accumulated so far.
func (b *Buffer) Len() int {
	return b.buf.Len()
}

// String returns the accumulated content.
func (b *Buffer) String() string {
	return b.buf.String()
}

// ContentsEqual reports whether the file at path already holds exactly
// the buffered content. A missing or unreadable file compares unequal.
func (b *Buffer) ContentsEqual(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.Size() != int64(b.buf.Len()) {
		return false
	}
	existing, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return bytes.Equal(existing, b.buf.Bytes())
}

// WriteToFileIfChanged writes the buffered content to path unless the
// file already holds it. The write goes through a temporary file in
// the same directory followed by a rename, so a concurrent reader
// never observes a partially written file. It reports whether the file
// was rewritten.
func (b *Buffer) WriteToFileIfChanged(path string) (bool, error) {
	if b.ContentsEqual(path) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(b.buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return true, nil
}
