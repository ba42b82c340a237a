// Package storage abstracts where product images live so handlers do not
// care whether files land on local disk or an in-memory test store.
package storage

import (
	"context"
	"io"
)

// Storage stores and serves product image files by key.
type Storage interface {
	// Upload writes the file and reports the key and public URL it is
	// reachable under.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes the file with the given key.
	Delete(ctx context.Context, key string) error

	// GetURL resolves a stored key to its public URL.
	GetURL(ctx context.Context, key string) (string, error)
}

// UploadInput describes one file to store.
type UploadInput struct {
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult reports where an uploaded file ended up.
type UploadResult struct {
	Key string
	URL string
}
