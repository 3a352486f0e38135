// Package base holds what every CLI command shares.
package base

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/jamesgeorge007/postwoman/internal/config"
	"github.com/jamesgeorge007/postwoman/internal/workspace"
)

// Command is embedded by every command.
type Command struct {
	UI  cli.Ui
	Log hclog.Logger
}

// LoadConfig reads the config file at path, or returns the built-in
// default when path is empty. The logger level follows the config.
func (c *Command) LoadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg = config.Default()
	} else {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if c.Log != nil {
		c.Log.SetLevel(hclog.LevelFromString(cfg.LogLevel))
	}
	return cfg, nil
}

// Runtime loads the config at path and builds the workspace service.
func (c *Command) Runtime(ctx context.Context, path string) (*workspace.Runtime, *config.Config, error) {
	cfg, err := c.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	rt, err := workspace.Build(ctx, cfg, c.Log, workspace.Options{})
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing workspaces: %w", err)
	}
	return rt, cfg, nil
}

// FlagSet wraps flag.FlagSet with help output.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help returns the flag usage text.
func (f *FlagSet) Help() string {
	var b strings.Builder
	b.WriteString("\n\nOptions:\n\n")
	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "  -%s", fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&b, "=%s", fl.DefValue)
		}
		fmt.Fprintf(&b, "\n      %s\n\n", fl.Usage)
	})
	return strings.TrimRight(b.String(), "\n")
}

// ConfigVar registers the shared -config flag.
func (f *FlagSet) ConfigVar(p *string) {
	f.StringVar(p, "config", "",
		"Path to the HCL config file. Without it a single in-memory provider is used.")
}
