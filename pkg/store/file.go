package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend persists one partition as a JSON array in a single file.
// Writes go to a temp file in the same directory, are fsynced, then renamed
// over the canonical path so readers never observe a partial file.
type FileBackend[T any] struct {
	path string
}

// NewFileBackend creates a backend for the file at path
func NewFileBackend[T any](path string) *FileBackend[T] {
	return &FileBackend[T]{path: path}
}

// Path returns the canonical file location
func (b *FileBackend[T]) Path() string {
	return b.path
}

// Load reads every record. A missing or empty file is an empty partition.
func (b *FileBackend[T]) Load() ([]T, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", b.path, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save replaces the whole partition atomically
func (b *FileBackend[T]) Save(records []T) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, b.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to promote temp file: %w", err)
	}

	syncDir(dir)
	return nil
}

// ReadRaw returns the canonical file bytes, or an empty JSON array when absent
func (b *FileBackend[T]) ReadRaw() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return []byte("[]"), nil
	}
	return data, err
}

// syncDir flushes the rename itself. Not every platform supports fsync on a
// directory, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
