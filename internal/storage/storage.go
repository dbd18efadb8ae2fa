// Package storage provides the artifact store for emitted segment triples.
// It defines the Store interface (port) with a local-disk implementation
// and an S3-backed one that mirrors every artifact to a bucket.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrS3NotConfigured is returned when S3 mirroring is attempted without
// proper configuration.
var ErrS3NotConfigured = errors.New("S3 storage is not configured")

// Store defines the interface for persisting segment artifacts.
// Artifact names are unique per segment ({stem}_{index}.{ext}), so
// concurrent recordings never collide.
type Store interface {
	// Save writes an artifact under name and returns its local path.
	// An existing artifact of the same name is overwritten.
	Save(ctx context.Context, name string, data io.Reader) (path string, err error)

	// Path returns the local path the named artifact occupies. Callers
	// that need seekable output (WAV encoding) write there directly.
	Path(name string) string

	// Mirror uploads a previously saved artifact to remote storage and
	// returns its URL. Returns ErrS3NotConfigured when no remote is set up.
	Mirror(ctx context.Context, name string) (url string, err error)
}
