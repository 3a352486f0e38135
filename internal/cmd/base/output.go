package base

import (
	"context"
	"errors"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jamesgeorge007/postwoman/internal/workspace"
	pw "github.com/jamesgeorge007/postwoman/pkg/workspace"
)

// NewTable returns a table with the CLI's styling and the given header.
func NewTable(header ...any) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	row := make(table.Row, len(header))
	for i, h := range header {
		row[i] = text.Bold.Sprint(h)
	}
	t.AppendHeader(row)
	return t
}

// WorkspaceFlags select a workspace.
type WorkspaceFlags struct {
	Provider  string
	Workspace string
}

// WorkspaceVars registers -provider and -workspace.
func (f *FlagSet) WorkspaceVars(w *WorkspaceFlags) {
	f.StringVar(&w.Provider, "provider", "",
		"Provider ID of the workspace. Defaults to the active workspace.")
	f.StringVar(&w.Workspace, "workspace", "",
		"Workspace ID. Requires -provider.")
}

// Resolve returns the selected workspace handle, or the active workspace
// when no flag is set.
func (w WorkspaceFlags) Resolve(ctx context.Context, rt *workspace.Runtime) (pw.WorkspaceHandle, error) {
	if w.Provider == "" && w.Workspace == "" {
		if h := rt.Service.ActiveWorkspace().Get().Value; h != nil {
			return h, nil
		}
		return nil, errors.New("no active workspace; pass -provider and -workspace")
	}
	if w.Provider == "" || w.Workspace == "" {
		return nil, errors.New("-provider and -workspace must be set together")
	}
	return rt.Service.WorkspaceHandle(ctx, w.Provider, w.Workspace)
}
