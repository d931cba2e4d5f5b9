package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a requested object does not exist
var ErrNotFound = errors.New("object not found")

// Storage defines the interface for object storage backends.
// Both original photos and derived (blurred) renditions live behind it.
type Storage interface {
	// Put stores an object at the given key
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get retrieves an object by key. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object by key. Returns nil if it does not exist.
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL for an object key
	GetURL(key string) string

	// GetInfo returns object metadata
	GetInfo(ctx context.Context, key string) (*FileInfo, error)
}

// FileInfo holds object metadata
type FileInfo struct {
	Key         string
	Size        int64
	ContentType string
	URL         string
}
