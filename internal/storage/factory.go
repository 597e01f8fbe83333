package storage

import (
	"strings"

	"github.com/timmy/memeverse/internal/config"
)

// NewStorage creates an ObjectStorage instance based on the configuration.
// Parameters:
//   - cfg: storage configuration including endpoint, credentials, and bucket.
//
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(cfg *S3Config) (ObjectStorage, error) {
	// Auto-detect storage type if not specified
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}

	return NewS3Storage(cfg)
}

// NewFromConfig builds object storage from application config.
// It returns a nil ObjectStorage and nil error when storage is not configured.
func NewFromConfig(sc config.StorageConfig) (ObjectStorage, error) {
	if !sc.Enabled() {
		return nil, nil
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return NewStorage(&S3Config{
		Type:      StorageType(sc.Type),
		Endpoint:  sc.Endpoint,
		AccessKey: sc.AccessKey,
		SecretKey: sc.SecretKey,
		UseSSL:    sc.UseSSL,
		Bucket:    sc.Bucket,
		Region:    sc.Region,
		PublicURL: sc.PublicURL,
	})
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
