package storage

import "fmt"

// Backend selects the blob storage implementation.
type Backend string

const (
	BackendLocal Backend = "local"
	BackendS3    Backend = "s3"
)

// Config holds storage configuration for all backends.
type Config struct {
	Backend Backend

	// Local backend.
	LocalPath string

	// S3-compatible backend.
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	PublicURL string
}

// NewStorage creates an ObjectStorage instance based on the
// configuration. The backend is selected exactly once at process start;
// there are no lazily-constructed global clients.
func NewStorage(cfg *Config) (ObjectStorage, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case BackendS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
