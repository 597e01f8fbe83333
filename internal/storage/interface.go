package storage

import (
	"context"
	"io"
)

// ObjectStorage defines the interface for storing uploaded meme images
type ObjectStorage interface {
	// EnsureBucket creates the target bucket if the backend allows it
	EnsureBucket(ctx context.Context) error

	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the public URL a meme record should reference
	GetURL(key string) string

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)
}
