package config

import (
	"fmt"
	"os"
)

// StorageConfig defines the S3-compatible object storage used for uploaded images.
// Storage is optional: an empty Endpoint disables file uploads.
type StorageConfig struct {
	Type         string `mapstructure:"type"`           // "r2", "s3", "s3compatible" or empty for auto-detect
	Endpoint     string `mapstructure:"endpoint"`       // Host, with or without scheme
	AccessKey    string `mapstructure:"access_key"`     // Access key (can be set directly or via env var)
	AccessKeyEnv string `mapstructure:"access_key_env"` // Environment variable name for access key
	SecretKey    string `mapstructure:"secret_key"`     // Secret key (can be set directly or via env var)
	SecretKeyEnv string `mapstructure:"secret_key_env"` // Environment variable name for secret key
	UseSSL       bool   `mapstructure:"use_ssl"`
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	PublicURL    string `mapstructure:"public_url"` // Public URL prefix for R2.dev or custom CDN
}

// ResolveEnvVars fills credentials from the referenced environment variables.
// Direct values take precedence if already set.
func (c *StorageConfig) ResolveEnvVars() {
	if c.AccessKeyEnv != "" && c.AccessKey == "" {
		if val := os.Getenv(c.AccessKeyEnv); val != "" {
			c.AccessKey = val
		}
	}
	if c.SecretKeyEnv != "" && c.SecretKey == "" {
		if val := os.Getenv(c.SecretKeyEnv); val != "" {
			c.SecretKey = val
		}
	}
}

// Enabled reports whether object storage has been configured.
func (c *StorageConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Validate checks that an enabled storage configuration has all required fields.
func (c *StorageConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Bucket == "" {
		return fmt.Errorf("storage: bucket is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("storage: access_key and secret_key are required (set directly or via %s/%s)",
			c.AccessKeyEnv, c.SecretKeyEnv)
	}
	if c.PublicURL == "" {
		return fmt.Errorf("storage: public_url is required to build meme URLs")
	}
	return nil
}

// GetStorageConfig returns the object storage configuration with env references resolved.
func (c *Config) GetStorageConfig() StorageConfig {
	sc := c.Storage
	sc.ResolveEnvVars()
	return sc
}
