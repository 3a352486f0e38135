package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesgeorge007/postwoman/pkg/database"
	"github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err)
	s, err := NewStore(db, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot() *tree.Snapshot {
	return &tree.Snapshot{
		WorkspaceID: "w1",
		Name:        "Personal",
		Version:     1,
		Collections: []*workspace.RESTCollection{
			{
				Version: workspace.CollectionFormatVersion,
				ID:      "c1",
				Name:    "Users",
				Auth:    workspace.Auth{AuthType: workspace.AuthTypeBearer, AuthActive: true, Token: "t"},
				Headers: []workspace.KeyValue{{Key: "X-Team", Value: "core", Active: true}},
				Folders: []*workspace.RESTCollection{
					{
						Version:  workspace.CollectionFormatVersion,
						ID:       "c1a",
						Name:     "Admin",
						Auth:     workspace.InheritAuth(),
						Headers:  []workspace.KeyValue{},
						Folders:  []*workspace.RESTCollection{},
						Requests: []*workspace.RESTRequest{},
					},
				},
				Requests: []*workspace.RESTRequest{
					{Version: 3, ID: "r1", Name: "list", Method: "GET", Endpoint: "https://x/users", Auth: workspace.InheritAuth()},
					{Version: 3, ID: "r2", Name: "create", Method: "POST", Endpoint: "https://x/users", Auth: workspace.InheritAuth(),
						Body: workspace.Body{ContentType: "application/json", Body: `{"name":"a"}`}},
				},
			},
			{
				Version:  workspace.CollectionFormatVersion,
				ID:       "c2",
				Name:     "Orders",
				Auth:     workspace.InheritAuth(),
				Headers:  []workspace.KeyValue{},
				Folders:  []*workspace.RESTCollection{},
				Requests: []*workspace.RESTRequest{},
			},
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Load(ctx, "w1")
	assert.ErrorIs(t, err, workspace.ErrWorkspaceNotFound)

	snap := sampleSnapshot()
	require.NoError(t, s.Save(ctx, snap))

	got, err := s.Load(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestStore_VersionChecks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	snap := sampleSnapshot()
	require.NoError(t, s.Save(ctx, snap))
	assert.ErrorIs(t, s.Save(ctx, snap), workspace.ErrConflict)

	snap.Version = 3
	assert.ErrorIs(t, s.Save(ctx, snap), workspace.ErrConflict)

	snap.Version = 2
	snap.Collections = snap.Collections[1:]
	require.NoError(t, s.Save(ctx, snap))

	got, err := s.Load(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	require.Len(t, got.Collections, 1)
	assert.Equal(t, "Orders", got.Collections[0].Name)
}

func TestStore_ListWorkspaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, &tree.Snapshot{WorkspaceID: "b", Name: "Team", Version: 1}))
	require.NoError(t, s.Save(ctx, &tree.Snapshot{WorkspaceID: "a", Name: "Personal", Version: 1}))

	infos, err := s.ListWorkspaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tree.WorkspaceInfo{{ID: "a", Name: "Personal"}, {ID: "b", Name: "Team"}}, infos)
}

func TestStore_BacksTreeProvider(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := tree.New("db", s, tree.Options{})

	ws, err := p.CreateWorkspace(ctx, "Shared")
	require.NoError(t, err)
	root, err := p.CreateRESTRootCollection(ctx, ws, workspace.NewCollection{Name: "Root"})
	require.NoError(t, err)
	child, err := p.CreateRESTChildCollection(ctx, root, workspace.NewCollection{Name: "Child"})
	require.NoError(t, err)
	_, err = p.CreateRESTRequest(ctx, child, &workspace.RESTRequest{Name: "ping", Method: "GET"})
	require.NoError(t, err)
	require.NoError(t, p.MoveRESTCollection(ctx, child, ""))

	wsv, _ := ws.Value()
	snap, err := s.Load(ctx, wsv.WorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), snap.Version)
	require.Len(t, snap.Collections, 2)
	assert.Equal(t, "Child", snap.Collections[1].Name)
	assert.Equal(t, "ping", snap.Collections[1].Requests[0].Name)
}
