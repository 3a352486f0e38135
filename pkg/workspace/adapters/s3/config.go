// Package s3 stores workspaces as objects in an S3-compatible bucket.
package s3

import (
	"fmt"
	"strings"
)

// Config contains configuration for the S3 workspace store.
type Config struct {
	// S3 Connection Settings
	Endpoint  string `hcl:"endpoint,optional" mapstructure:"endpoint"`     // Custom endpoint for MinIO and friends; empty uses AWS
	Region    string `hcl:"region" mapstructure:"region"`                  // AWS region (e.g., "us-west-2")
	Bucket    string `hcl:"bucket" mapstructure:"bucket"`                  // S3 bucket name
	Prefix    string `hcl:"prefix,optional" mapstructure:"prefix"`         // Key prefix (e.g., "postwoman/")
	AccessKey string `hcl:"access_key,optional" mapstructure:"access_key"` // Access key ID
	SecretKey string `hcl:"secret_key,optional" mapstructure:"secret_key"` // Secret access key

	RequestTimeoutSeconds int  `hcl:"request_timeout_seconds,optional" mapstructure:"request_timeout_seconds"` // default: 30
	InsecureSkipVerify    bool `hcl:"insecure_skip_verify,optional" mapstructure:"insecure_skip_verify"`       // for testing only
}

// Validate validates the S3 configuration
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return fmt.Errorf("access_key and secret_key must be set together")
	}
	return nil
}

// SetDefaults sets default values for optional configuration fields
func (c *Config) SetDefaults() {
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = 30
	}
	if c.Prefix != "" && !strings.HasSuffix(c.Prefix, "/") {
		c.Prefix += "/"
	}
}
