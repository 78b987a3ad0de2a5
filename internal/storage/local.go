package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// localStore implements ArtifactStore using local filesystem
type localStore struct {
	basePath string
}

// NewLocalStore creates a new localStore instance
func NewLocalStore(basePath string) *localStore {
	return &localStore{
		basePath: basePath,
	}
}

// generatePath converts a slash separated key into a path below the base path
func (s *localStore) generatePath(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key))
}

// Read returns the content of a stored file
func (s *localStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.generatePath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrArtifactNotFound
	}
	return data, err
}

// Write creates or replaces a file
func (s *localStore) Write(ctx context.Context, key string, data []byte) error {
	path := s.generatePath(key)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Exists checks whether a file is present
func (s *localStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.generatePath(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
