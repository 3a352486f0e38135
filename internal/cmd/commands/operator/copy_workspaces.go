package operator

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jamesgeorge007/postwoman/internal/cmd/base"
	pw "github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
)

type CopyWorkspacesCommand struct {
	*base.Command

	flagConfig    string
	flagFrom      string
	flagTo        string
	flagDryRun    bool
	flagOverwrite bool
	flagVerbose   bool
}

func (c *CopyWorkspacesCommand) Synopsis() string {
	return "Copy every workspace from one provider's store to another"
}

func (c *CopyWorkspacesCommand) Help() string {
	return `Usage: postwoman operator copy-workspaces -from=<provider> -to=<provider>

  This command copies workspace snapshots between provider stores, for
  example from a local directory into a database. Workspaces that already
  exist in the destination are skipped unless -overwrite is set.` +
		c.Flags().Help()
}

func (c *CopyWorkspacesCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("copy-workspaces", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to the config file",
	)
	f.StringVar(
		&c.flagFrom, "from", "", "(Required) Source provider ID.",
	)
	f.StringVar(
		&c.flagTo, "to", "", "(Required) Destination provider ID.",
	)
	f.BoolVar(
		&c.flagDryRun, "dry-run", false,
		"Only print what would be done without making changes.",
	)
	f.BoolVar(
		&c.flagOverwrite, "overwrite", false,
		"Replace workspaces that already exist in the destination.",
	)
	f.BoolVar(
		&c.flagVerbose, "verbose", false,
		"Print each workspace as it is copied.",
	)

	return f
}

func (c *CopyWorkspacesCommand) Run(args []string) int {
	ui := c.UI

	// Parse flags.
	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	// Validate flags.
	if c.flagConfig == "" {
		ui.Error("config flag is required")
		return 1
	}
	if c.flagFrom == "" || c.flagTo == "" {
		ui.Error("from and to flags are required")
		return 1
	}
	if c.flagFrom == c.flagTo {
		ui.Error("from and to must be different providers")
		return 1
	}

	ctx := context.Background()
	rt, _, err := c.Runtime(ctx, c.flagConfig)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer rt.Close()

	from, err := rt.Store(c.flagFrom)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	to, err := rt.Store(c.flagTo)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	if c.flagDryRun {
		ui.Warn("DRY RUN mode enabled - no changes will be made")
	}

	res, err := CopyWorkspaces(ctx, from, to, CopyOptions{
		DryRun:    c.flagDryRun,
		Overwrite: c.flagOverwrite,
		Logger:    c.Log,
		Progress: func(info tree.WorkspaceInfo, action string) {
			if c.flagVerbose {
				ui.Info(fmt.Sprintf("%s %s (%s)", action, info.ID, info.Name))
			}
		},
	})
	if err != nil {
		ui.Error(fmt.Sprintf("error copying workspaces: %v", err))
		return 1
	}

	// Final summary.
	ui.Info("")
	ui.Info("=== Summary ===")
	ui.Info(fmt.Sprintf("Workspaces found: %d", res.Total))
	if c.flagDryRun {
		ui.Info(fmt.Sprintf("Would copy: %d", res.Copied))
	} else {
		ui.Info(fmt.Sprintf("Copied: %d", res.Copied))
	}
	ui.Info(fmt.Sprintf("Skipped: %d", res.Skipped))
	if res.Failed > 0 {
		ui.Error(fmt.Sprintf("Errors encountered: %d", res.Failed))
		return 1
	}

	if c.flagDryRun {
		ui.Warn("DRY RUN completed - no changes were made")
	} else {
		ui.Info("Copy completed successfully")
	}
	return 0
}

// CopyOptions control CopyWorkspaces.
type CopyOptions struct {
	DryRun    bool
	Overwrite bool
	Logger    hclog.Logger

	// Progress is called once per workspace with "copy", "overwrite",
	// "skip" or "fail".
	Progress func(info tree.WorkspaceInfo, action string)
}

// CopyResult counts what CopyWorkspaces did.
type CopyResult struct {
	Total   int
	Copied  int
	Skipped int
	Failed  int
}

// CopyWorkspaces copies every snapshot in from into to. Versions in the
// destination continue from whatever is stored there. Per-workspace
// failures are counted and logged; only a failure to list from aborts.
func CopyWorkspaces(ctx context.Context, from, to tree.Store, opts CopyOptions) (CopyResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(tree.WorkspaceInfo, string) {}
	}

	var res CopyResult
	infos, err := from.ListWorkspaces(ctx)
	if err != nil {
		return res, err
	}
	res.Total = len(infos)

	for _, info := range infos {
		action, err := copyOne(ctx, from, to, info.ID, opts)
		if err != nil {
			logger.Error("error copying workspace", "workspace_id", info.ID, "error", err)
			res.Failed++
			progress(info, "fail")
			continue
		}
		progress(info, action)
		if action == "skip" {
			res.Skipped++
		} else {
			res.Copied++
		}
	}
	return res, nil
}

func copyOne(ctx context.Context, from, to tree.Store, id string, opts CopyOptions) (string, error) {
	snap, err := from.Load(ctx, id)
	if err != nil {
		return "", err
	}

	action := "copy"
	next := snap.Clone()
	next.Version = 1
	existing, err := to.Load(ctx, id)
	switch {
	case err == nil:
		if !opts.Overwrite {
			return "skip", nil
		}
		action = "overwrite"
		next.Version = existing.Version + 1
	case errors.Is(err, pw.ErrWorkspaceNotFound):
	default:
		return "", err
	}

	if opts.DryRun {
		return action, nil
	}
	return action, to.Save(ctx, next)
}
