// Package workspace builds the workspace service from configuration.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/jamesgeorge007/postwoman/internal/config"
	"github.com/jamesgeorge007/postwoman/pkg/database"
	"github.com/jamesgeorge007/postwoman/pkg/events"
	pw "github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/api"
	dbstore "github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/database"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/local"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/s3"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/service"
)

// Runtime is a service with every configured provider registered.
type Runtime struct {
	Service   *service.Service
	Providers map[string]*tree.Provider
}

// Store returns the snapshot store of a configured provider.
func (r *Runtime) Store(providerID string) (tree.Store, error) {
	p, ok := r.Providers[providerID]
	if !ok {
		return nil, fmt.Errorf("provider %s not configured", providerID)
	}
	return p.Store(), nil
}

// Close closes every provider and the event publisher.
func (r *Runtime) Close() error {
	return r.Service.Close()
}

// Options tweak how the runtime is built.
type Options struct {
	// Fs is the filesystem used by local providers. Defaults to the OS.
	Fs afero.Fs
}

// Build creates every configured provider, registers it and prepares the
// default workspace.
func Build(ctx context.Context, cfg *config.Config, logger hclog.Logger, opts Options) (*Runtime, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	pub, err := NewPublisher(cfg.Events, logger)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Service:   service.New(service.Options{Logger: logger, Publisher: pub}),
		Providers: make(map[string]*tree.Provider),
	}

	for _, pc := range cfg.Providers {
		store, err := NewStore(pc, logger, opts.Fs)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("error creating provider %q: %w", pc.ID, err)
		}

		p := tree.New(pc.ID, store, tree.Options{
			Decor: pw.Decor{
				Name:        pc.Name,
				Description: pc.Description,
				Priority:    pc.Priority,
			},
			Logger: logger,
		})
		if err := rt.Service.RegisterProvider(p); err != nil {
			_ = p.Close()
			_ = rt.Close()
			return nil, err
		}
		rt.Providers[pc.ID] = p
	}

	if dw := cfg.DefaultWorkspace; dw != nil {
		p := rt.Providers[dw.Provider]
		h, err := p.EnsureWorkspace(ctx, dw.ID, dw.Name)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("error preparing default workspace: %w", err)
		}
		if err := rt.Service.ChangeActiveWorkspace(ctx, h); err != nil {
			_ = rt.Close()
			return nil, err
		}
		logger.Debug("default workspace ready",
			"provider", dw.Provider, "workspace_id", dw.ID)
	}

	return rt, nil
}

// NewStore creates the snapshot store for a provider block.
func NewStore(pc *config.Provider, logger hclog.Logger, fsys afero.Fs) (tree.Store, error) {
	logger = logger.With("provider", pc.ID)

	switch pc.Type {
	case config.ProviderTypeMemory:
		return tree.NewMemoryStore(), nil

	case config.ProviderTypeLocal:
		var c local.Config
		if err := pc.DecodeOptions(&c); err != nil {
			return nil, err
		}
		c.Path = expandHome(c.Path)
		return local.NewStore(fsys, &c, logger)

	case config.ProviderTypeS3:
		var c s3.Config
		if err := pc.DecodeOptions(&c); err != nil {
			return nil, err
		}
		return s3.NewStore(&c, logger)

	case config.ProviderTypeDatabase:
		var c database.Config
		if err := pc.DecodeOptions(&c); err != nil {
			return nil, err
		}
		if c.Driver == database.DriverSQLite {
			c.Path = expandHome(c.Path)
		}
		db, err := database.Connect(c, logger)
		if err != nil {
			return nil, err
		}
		store, err := dbstore.NewStore(db, logger)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
		return store, nil

	case config.ProviderTypeRemote:
		var c api.Config
		if err := pc.DecodeOptions(&c); err != nil {
			return nil, err
		}
		return api.NewStore(&c, logger)

	default:
		return nil, fmt.Errorf("unknown provider type %q", pc.Type)
	}
}

// NewPublisher creates the configured event publisher.
func NewPublisher(cfg *config.Events, logger hclog.Logger) (events.Publisher, error) {
	if cfg == nil {
		return events.NopPublisher{}, nil
	}
	switch cfg.Backend {
	case "", config.EventsBackendNone:
		return events.NopPublisher{}, nil
	case config.EventsBackendLog:
		return events.NewLogPublisher(logger), nil
	case config.EventsBackendKafka:
		return events.NewKafkaPublisher(cfg.Kafka, logger)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
