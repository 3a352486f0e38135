package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/jamesgeorge007/postwoman/internal/cmd/base"
	"github.com/jamesgeorge007/postwoman/internal/cmd/commands/collections"
	"github.com/jamesgeorge007/postwoman/internal/cmd/commands/operator"
	"github.com/jamesgeorge007/postwoman/internal/cmd/commands/providers"
	"github.com/jamesgeorge007/postwoman/internal/cmd/commands/serve"
	"github.com/jamesgeorge007/postwoman/internal/cmd/commands/token"
	"github.com/jamesgeorge007/postwoman/internal/cmd/commands/transfer"
	"github.com/jamesgeorge007/postwoman/internal/cmd/commands/version"
	"github.com/jamesgeorge007/postwoman/internal/cmd/commands/workspaces"
)

// Commands is the mapping of all available commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := &base.Command{
		UI:  ui,
		Log: log,
	}

	Commands = map[string]cli.CommandFactory{
		"collections": func() (cli.Command, error) {
			return &collections.Command{Command: b}, nil
		},
		"export": func() (cli.Command, error) {
			return &transfer.ExportCommand{Command: b}, nil
		},
		"import": func() (cli.Command, error) {
			return &transfer.ImportCommand{Command: b}, nil
		},
		"operator": func() (cli.Command, error) {
			return &operator.Command{Command: b}, nil
		},
		"operator copy-workspaces": func() (cli.Command, error) {
			return &operator.CopyWorkspacesCommand{Command: b}, nil
		},
		"providers": func() (cli.Command, error) {
			return &providers.Command{Command: b}, nil
		},
		"search": func() (cli.Command, error) {
			return &collections.SearchCommand{Command: b}, nil
		},
		"serve": func() (cli.Command, error) {
			return &serve.Command{Command: b}, nil
		},
		"token": func() (cli.Command, error) {
			return &token.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
		"workspaces": func() (cli.Command, error) {
			return &workspaces.Command{Command: b}, nil
		},
		"workspaces create": func() (cli.Command, error) {
			return &workspaces.CreateCommand{Command: b}, nil
		},
		"workspaces list": func() (cli.Command, error) {
			return &workspaces.ListCommand{Command: b}, nil
		},
	}
}
