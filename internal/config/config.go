// Package config loads the HCL configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/mitchellh/mapstructure"

	"github.com/jamesgeorge007/postwoman/pkg/events"
)

// Provider types.
const (
	ProviderTypeMemory   = "memory"
	ProviderTypeLocal    = "local"
	ProviderTypeS3       = "s3"
	ProviderTypeDatabase = "database"
	ProviderTypeRemote   = "remote"
)

// Event backends.
const (
	EventsBackendNone  = "none"
	EventsBackendLog   = "log"
	EventsBackendKafka = "kafka"
)

// DefaultServerAddr is the listen address used when none is configured.
const DefaultServerAddr = "127.0.0.1:8080"

// Config is the top level configuration.
//
// Example:
//
//	log_level = "info"
//
//	provider "personal" {
//	  type     = "local"
//	  name     = "Personal"
//	  priority = 0
//	  options  = { path = "~/.postwoman/workspaces" }
//	}
//
//	default_workspace {
//	  provider = "personal"
//	  name     = "My Workspace"
//	}
type Config struct {
	// LogLevel is the hclog level name. Default: "info".
	LogLevel string `hcl:"log_level,optional"`

	Providers        []*Provider       `hcl:"provider,block"`
	DefaultWorkspace *DefaultWorkspace `hcl:"default_workspace,block"`
	Server           *Server           `hcl:"server,block"`
	Events           *Events           `hcl:"events,block"`
}

// Provider configures one registered workspace provider.
type Provider struct {
	ID          string `hcl:"id,label"`
	Type        string `hcl:"type"`
	Name        string `hcl:"name,optional"`
	Description string `hcl:"description,optional"`
	Priority    int    `hcl:"priority,optional"`

	// Options are decoded into the provider type's own config.
	Options map[string]string `hcl:"options,optional"`
}

// DefaultWorkspace is created on startup if missing and made active.
type DefaultWorkspace struct {
	Provider string `hcl:"provider"`
	ID       string `hcl:"id,optional"`
	Name     string `hcl:"name,optional"`
}

// Server configures the HTTP sync API.
type Server struct {
	Addr string `hcl:"addr,optional"`

	// Provider is the ID of the provider whose store is served.
	Provider string `hcl:"provider"`

	// JWTSecret enables bearer authentication when set.
	JWTSecret string `hcl:"jwt_secret,optional"`
	JWTIssuer string `hcl:"jwt_issuer,optional"`
}

// Events configures where mutation events are published.
type Events struct {
	Backend string              `hcl:"backend,optional"`
	Kafka   *events.KafkaConfig `hcl:"kafka,block"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return finish(&cfg)
}

// Parse decodes configuration source. filename is used in diagnostics and
// must end in .hcl.
func Parse(filename string, src []byte) (*Config, error) {
	var cfg Config
	if err := hclsimple.Decode(filename, src, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given: a single
// in-memory provider.
func Default() *Config {
	cfg := &Config{
		Providers: []*Provider{{
			ID:   "memory",
			Type: ProviderTypeMemory,
			Name: "Scratch",
		}},
		DefaultWorkspace: &DefaultWorkspace{Provider: "memory"},
	}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills in unset fields.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	for _, p := range c.Providers {
		if p.Name == "" {
			p.Name = p.ID
		}
	}
	if c.DefaultWorkspace != nil {
		if c.DefaultWorkspace.ID == "" {
			c.DefaultWorkspace.ID = "default"
		}
		if c.DefaultWorkspace.Name == "" {
			c.DefaultWorkspace.Name = "My Workspace"
		}
	}
	if c.Server != nil && c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Events == nil {
		c.Events = &Events{}
	}
	if c.Events.Backend == "" {
		c.Events.Backend = EventsBackendNone
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider block is required")
	}

	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("provider %q: %w", p.ID, err)
		}
		if seen[p.ID] {
			return fmt.Errorf("provider %q is declared more than once", p.ID)
		}
		seen[p.ID] = true
	}

	if dw := c.DefaultWorkspace; dw != nil && !seen[dw.Provider] {
		return fmt.Errorf("default_workspace: unknown provider %q", dw.Provider)
	}
	if c.Server != nil && !seen[c.Server.Provider] {
		return fmt.Errorf("server: unknown provider %q", c.Server.Provider)
	}

	return validation.ValidateStruct(c.Events,
		validation.Field(&c.Events.Backend,
			validation.In(EventsBackendNone, EventsBackendLog, EventsBackendKafka)),
	)
}

// Provider returns the provider block with the given ID.
func (c *Config) Provider(id string) (*Provider, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Validate checks a provider block.
func (p *Provider) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Type, validation.Required, validation.In(
			ProviderTypeMemory,
			ProviderTypeLocal,
			ProviderTypeS3,
			ProviderTypeDatabase,
			ProviderTypeRemote,
		)),
	)
}

// DecodeOptions decodes the provider's options into out. Values are
// strings in HCL; they are converted to the field types of out, and
// $VAR references are expanded from the environment.
func (p *Provider) DecodeOptions(out any) error {
	opts := make(map[string]string, len(p.Options))
	for k, v := range p.Options {
		opts[k] = os.ExpandEnv(v)
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		Metadata:         &md,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(opts); err != nil {
		return fmt.Errorf("invalid options for provider %q: %w", p.ID, err)
	}
	if len(md.Unused) > 0 {
		return fmt.Errorf("unknown options for provider %q: %s",
			p.ID, strings.Join(md.Unused, ", "))
	}
	return nil
}
