package workspaces

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/jamesgeorge007/postwoman/internal/cmd/base"
)

// Command groups the workspace subcommands.
type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "List and create workspaces"
}

func (c *Command) Help() string {
	return `Usage: postwoman workspaces <subcommand> [options] [args]

  This command groups subcommands for managing workspaces.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// ListCommand lists workspaces of every provider.
type ListCommand struct {
	*base.Command

	flagConfig string
}

func (c *ListCommand) Synopsis() string {
	return "List workspaces across all providers"
}

func (c *ListCommand) Help() string {
	return `Usage: postwoman workspaces list [options]

  List the workspaces of every provider. The active workspace is marked
  with an asterisk.` + c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("workspaces list", flag.ContinueOnError))
	f.ConfigVar(&c.flagConfig)
	return f
}

func (c *ListCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	ctx := context.Background()
	rt, _, err := c.Runtime(ctx, c.flagConfig)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer rt.Close()

	list, err := rt.Service.ListWorkspaces(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing workspaces: %v", err))
		return 1
	}

	var activeProvider, activeID string
	if h := rt.Service.ActiveWorkspace().Get().Value; h != nil {
		if st := h.Get(); st.OK() {
			activeProvider, activeID = st.Value.ProviderID, st.Value.WorkspaceID
		}
	}

	t := base.NewTable("", "PROVIDER", "ID", "NAME")
	for _, ws := range list {
		mark := ""
		if ws.ProviderID == activeProvider && ws.WorkspaceID == activeID {
			mark = "*"
		}
		t.AppendRow([]any{mark, ws.ProviderID, ws.WorkspaceID, ws.Name})
	}
	c.UI.Output(t.Render())
	return 0
}

// CreateCommand creates a workspace.
type CreateCommand struct {
	*base.Command

	flagConfig   string
	flagProvider string
}

func (c *CreateCommand) Synopsis() string {
	return "Create a workspace"
}

func (c *CreateCommand) Help() string {
	return `Usage: postwoman workspaces create -provider=<id> <name>

  Create a workspace in the given provider and print its ID.` + c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("workspaces create", flag.ContinueOnError))
	f.ConfigVar(&c.flagConfig)
	f.StringVar(&c.flagProvider, "provider", "", "(Required) Provider to create the workspace in.")
	return f
}

func (c *CreateCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagProvider == "" {
		c.UI.Error("provider flag is required")
		return 1
	}
	name := strings.TrimSpace(strings.Join(f.Args(), " "))
	if name == "" {
		c.UI.Error("workspace name is required")
		return 1
	}

	ctx := context.Background()
	rt, _, err := c.Runtime(ctx, c.flagConfig)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer rt.Close()

	h, err := rt.Service.CreateWorkspace(ctx, c.flagProvider, name)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating workspace: %v", err))
		return 1
	}
	c.UI.Output(h.Get().Value.WorkspaceID)
	return 0
}
