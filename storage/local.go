// Package storage provides the file-storage collaborator used by the
// lifecycle manager. Only deletion is implemented here; uploads are handled
// by a separate ingest service that records the asset key on the resource.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalFileStore removes file assets stored under a base directory, keyed by
// the resource's file key.
type LocalFileStore struct {
	baseDir string
}

// NewLocalFileStore creates a store rooted at baseDir.
func NewLocalFileStore(baseDir string) *LocalFileStore {
	return &LocalFileStore{baseDir: baseDir}
}

// Remove deletes the asset for key. A missing file is not an error: the goal
// state (asset gone) already holds.
func (s *LocalFileStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if strings.Contains(key, "..") || strings.ContainsRune(key, os.PathSeparator) {
		return fmt.Errorf("invalid file key %q", key)
	}
	path := filepath.Join(s.baseDir, key)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
