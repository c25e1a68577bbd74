package storage

import "context"

// ObjectStorage defines the blob storage contract used by the import
// pipeline. Keys are opaque slash-separated paths.
type ObjectStorage interface {
	// Upload writes an object.
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// Download reads an object fully into memory.
	Download(ctx context.Context, key string) ([]byte, error)

	// Delete removes an object. Returns false when the object did not
	// exist; that is not an error.
	Delete(ctx context.Context, key string) (bool, error)

	// Exists checks if an object exists.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the URL for accessing an object.
	GetURL(key string) string
}
