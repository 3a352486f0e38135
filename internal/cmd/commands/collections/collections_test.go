package collections

import (
	"context"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesgeorge007/postwoman/internal/cmd/base"
	"github.com/jamesgeorge007/postwoman/internal/config"
	"github.com/jamesgeorge007/postwoman/internal/workspace"
	pw "github.com/jamesgeorge007/postwoman/pkg/workspace"
)

func newRuntime(t *testing.T) (*workspace.Runtime, pw.WorkspaceHandle) {
	t.Helper()
	ctx := context.Background()
	rt, err := workspace.Build(ctx, config.Default(), hclog.NewNullLogger(), workspace.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	ws := rt.Service.ActiveWorkspace().Get().Value
	require.NotNil(t, ws)
	return rt, ws
}

func TestRenderTree(t *testing.T) {
	ctx := context.Background()
	rt, ws := newRuntime(t)

	out, err := RenderTree(ctx, rt, ws, false)
	require.NoError(t, err)
	assert.Empty(t, out)

	users, err := rt.Service.CreateRESTRootCollection(ctx, ws, pw.NewCollection{Name: "Users"})
	require.NoError(t, err)
	admin, err := rt.Service.CreateRESTChildCollection(ctx, users, pw.NewCollection{Name: "Admin"})
	require.NoError(t, err)
	req, err := rt.Service.CreateRESTRequest(ctx, admin, &pw.RESTRequest{Name: "Ban user", Method: "DELETE"})
	require.NoError(t, err)
	_, err = rt.Service.CreateRESTRootCollection(ctx, ws, pw.NewCollection{Name: "Orders"})
	require.NoError(t, err)

	out, err = RenderTree(ctx, rt, ws, false)
	require.NoError(t, err)
	assert.Contains(t, out, "Users")
	assert.Contains(t, out, "Admin")
	assert.Contains(t, out, "Ban user")
	assert.Contains(t, out, "Orders")
	assert.Less(t, strings.Index(out, "Users"), strings.Index(out, "Admin"))
	assert.Less(t, strings.Index(out, "Ban user"), strings.Index(out, "Orders"))

	out, err = RenderTree(ctx, rt, ws, true)
	require.NoError(t, err)
	assert.Contains(t, out, req.Get().Value.RequestID)
}

func newBaseCommand(ui cli.Ui) *base.Command {
	return &base.Command{UI: ui, Log: hclog.NewNullLogger()}
}

func TestHighlight(t *testing.T) {
	assert.Equal(t, "Users", highlight("Users", ""))
	assert.Equal(t, "Users", highlight("Users", "zzz"))
	got := highlight("List users", "USER")
	assert.Contains(t, got, "List ")
	assert.Contains(t, got, "user")
}

func TestCommand_DefaultConfig(t *testing.T) {
	ui := cli.NewMockUi()
	c := &Command{}
	c.Command = newBaseCommand(ui)

	code := c.Run(nil)
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Contains(t, ui.OutputWriter.String(), "No collections.")
}

func TestSearchCommand_NoMatches(t *testing.T) {
	ui := cli.NewMockUi()
	c := &SearchCommand{}
	c.Command = newBaseCommand(ui)

	code := c.Run([]string{"anything"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Contains(t, ui.OutputWriter.String(), "No matches.")
}
