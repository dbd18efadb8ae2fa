package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore implements the Store interface on a local output directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a LocalStore rooted at dir, creating the directory
// if it does not exist.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: output directory is empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the output directory path.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Path returns the local path for the named artifact.
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save writes data to the named artifact file.
func (s *LocalStore) Save(ctx context.Context, name string, data io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	path := s.Path(name)
	f, err := os.Create(path) // #nosec G304 - name is a generated artifact key
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}

	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close artifact: %w", err)
	}

	return path, nil
}

// Mirror is not supported by LocalStore and returns ErrS3NotConfigured.
func (s *LocalStore) Mirror(_ context.Context, _ string) (string, error) {
	return "", ErrS3NotConfigured
}

// Verify interface implementation at compile time.
var _ Store = (*LocalStore)(nil)
