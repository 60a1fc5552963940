package ports

import (
	"context"
	"io"

	"sentinel/domain/core"
)

// FileStorage defines the interface for uploaded dataset files
type FileStorage interface {
	// Store persists the upload under a collision-free name and returns the
	// stored path plus the content hash.
	Store(ctx context.Context, r io.Reader, filename string) (string, core.Hash, error)
	GetReader(ctx context.Context, filePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, filePath string) error
	Exists(ctx context.Context, filePath string) (bool, error)
}
