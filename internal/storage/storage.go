package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DocumentStore saves rendered invoices and reports where they ended up
type DocumentStore interface {
	Save(ctx context.Context, filename string, pdf []byte) (location string, err error)
}

// DirStore writes documents into a local directory
type DirStore struct {
	dir string
}

// NewDirStore creates a store rooted at dir
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Save writes pdf to dir/filename and returns the absolute path
func (s *DirStore) Save(ctx context.Context, filename string, pdf []byte) (string, error) {
	if filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid document name %q", filename)
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, pdf, 0600); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}
