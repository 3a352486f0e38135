package local

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config is the configuration of a local provider.
type Config struct {
	// Path is the directory holding the workspace files.
	Path string `hcl:"path,optional" mapstructure:"path"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}
