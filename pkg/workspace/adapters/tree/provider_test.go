package tree

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesgeorge007/postwoman/pkg/handle"
	"github.com/jamesgeorge007/postwoman/pkg/workspace"
)

func setup(t *testing.T) (*Provider, *MemoryStore, workspace.WorkspaceHandle) {
	t.Helper()
	store := NewMemoryStore()
	p := New("personal", store, Options{Decor: workspace.Decor{Name: "Personal", Priority: 10}})
	ws, err := p.CreateWorkspace(context.Background(), "My Workspace")
	require.NoError(t, err)
	return p, store, ws
}

func mustRoot(t *testing.T, p *Provider, ws workspace.WorkspaceHandle, name string) workspace.CollectionHandle {
	t.Helper()
	h, err := p.CreateRESTRootCollection(context.Background(), ws, workspace.NewCollection{Name: name})
	require.NoError(t, err)
	return h
}

func mustChild(t *testing.T, p *Provider, parent workspace.CollectionHandle, name string) workspace.CollectionHandle {
	t.Helper()
	h, err := p.CreateRESTChildCollection(context.Background(), parent, workspace.NewCollection{Name: name})
	require.NoError(t, err)
	return h
}

func mustRequest(t *testing.T, p *Provider, parent workspace.CollectionHandle, name string) workspace.RequestHandle {
	t.Helper()
	h, err := p.CreateRESTRequest(context.Background(), parent, &workspace.RESTRequest{
		Name:     name,
		Method:   "GET",
		Endpoint: "https://api.example.com/" + name,
	})
	require.NoError(t, err)
	return h
}

func collID(h workspace.CollectionHandle) string {
	v, _ := h.Value()
	return v.CollectionID
}

func reqID(h workspace.RequestHandle) string {
	v, _ := h.Value()
	return v.RequestID
}

func rootNames(t *testing.T, p *Provider, ws workspace.WorkspaceHandle) []string {
	t.Helper()
	view, err := p.GetRESTRootCollectionView(context.Background(), ws)
	require.NoError(t, err)
	v, ok := view.Value()
	require.True(t, ok)
	var names []string
	for _, c := range v.Collections {
		names = append(names, c.Name)
	}
	return names
}

func childRequestNames(t *testing.T, p *Provider, c workspace.CollectionHandle) []string {
	t.Helper()
	view, err := p.GetRESTCollectionChildrenView(context.Background(), c)
	require.NoError(t, err)
	v, _ := view.Value()
	var names []string
	for _, item := range v.Items {
		if item.Type == workspace.ChildTypeRequest {
			names = append(names, item.Request.Request.Name)
		}
	}
	return names
}

func TestProvider_Workspaces(t *testing.T) {
	ctx := context.Background()
	p, store, ws := setup(t)

	assert.Equal(t, "personal", p.ID())
	assert.Equal(t, "Personal", p.Decor().Name)

	v, ok := ws.Value()
	require.True(t, ok)
	assert.Equal(t, "personal", v.ProviderID)
	assert.Equal(t, "My Workspace", v.Name)
	assert.NotEmpty(t, v.WorkspaceID)

	same, err := p.GetWorkspaceHandle(ctx, v.WorkspaceID)
	require.NoError(t, err)
	assert.Same(t, ws, same)

	list, err := p.ListWorkspaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []workspace.Workspace{v}, list)

	_, err = p.GetWorkspaceHandle(ctx, "missing")
	assert.ErrorIs(t, err, workspace.ErrWorkspaceNotFound)

	_, err = p.CreateWorkspace(ctx, "")
	assert.Error(t, err)

	snap, err := store.Load(ctx, v.WorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
}

func TestProvider_EnsureWorkspace(t *testing.T) {
	ctx := context.Background()
	p := New("personal", NewMemoryStore(), Options{})

	h1, err := p.EnsureWorkspace(ctx, "default", "Default")
	require.NoError(t, err)
	h2, err := p.EnsureWorkspace(ctx, "default", "ignored")
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	v, _ := h2.Value()
	assert.Equal(t, "Default", v.Name)
}

func TestProvider_CollectionHandlesAreCached(t *testing.T) {
	ctx := context.Background()
	p, _, ws := setup(t)

	c := mustRoot(t, p, ws, "Users")
	again, err := p.GetCollectionHandle(ctx, ws, collID(c))
	require.NoError(t, err)
	assert.Same(t, c, again)

	r := mustRequest(t, p, c, "list")
	againReq, err := p.GetRequestHandle(ctx, ws, reqID(r))
	require.NoError(t, err)
	assert.Same(t, r, againReq)

	_, err = p.GetCollectionHandle(ctx, ws, "nope")
	assert.ErrorIs(t, err, workspace.ErrCollectionNotFound)
	_, err = p.GetRequestHandle(ctx, ws, "nope")
	assert.ErrorIs(t, err, workspace.ErrRequestNotFound)
}

func TestProvider_MutationsBumpVersion(t *testing.T) {
	ctx := context.Background()
	p, store, ws := setup(t)
	wsv, _ := ws.Value()

	c := mustRoot(t, p, ws, "Users")
	mustRequest(t, p, c, "list")

	snap, err := store.Load(ctx, wsv.WorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.Version)
	require.Len(t, snap.Collections, 1)
	assert.Equal(t, collID(c), snap.Collections[0].ID)
	require.Len(t, snap.Collections[0].Requests, 1)
	assert.Equal(t, workspace.RequestFormatVersion, snap.Collections[0].Requests[0].Version)
	assert.Equal(t, workspace.AuthTypeInherit, snap.Collections[0].Requests[0].Auth.AuthType)
}

func TestProvider_RootViewFollowsMutations(t *testing.T) {
	ctx := context.Background()
	p, _, ws := setup(t)

	view, err := p.GetRESTRootCollectionView(ctx, ws)
	require.NoError(t, err)

	var updates []workspace.RootCollectionView
	cancel := view.Subscribe(func(s handle.State[workspace.RootCollectionView]) {
		updates = append(updates, s.Value)
	})
	defer cancel()

	a := mustRoot(t, p, ws, "A")
	mustRoot(t, p, ws, "B")

	require.Len(t, updates, 2)
	assert.Len(t, updates[1].Collections, 2)
	assert.False(t, updates[1].Collections[0].IsLastItem)
	assert.True(t, updates[1].Collections[1].IsLastItem)

	// Child collections do not change the root view.
	mustChild(t, p, a, "A1")
	assert.Len(t, updates, 2)

	same, err := p.GetRESTRootCollectionView(ctx, ws)
	require.NoError(t, err)
	assert.Same(t, view, same)
}

func TestProvider_UpdateRESTCollection(t *testing.T) {
	ctx := context.Background()
	p, _, ws := setup(t)
	c := mustRoot(t, p, ws, "Users")

	name := "Accounts"
	auth := workspace.Auth{AuthType: workspace.AuthTypeBearer, AuthActive: true, Token: "t0k3n"}
	err := p.UpdateRESTCollection(ctx, c, workspace.CollectionUpdate{
		Name:    &name,
		Auth:    &auth,
		Headers: []workspace.KeyValue{{Key: "X-Team", Value: "core", Active: true}},
	})
	require.NoError(t, err)

	v, _ := c.Value()
	assert.Equal(t, "Accounts", v.Name)

	exported, err := p.ExportRESTCollection(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, auth, exported.Auth)
	assert.Equal(t, "X-Team", exported.Headers[0].Key)

	empty := ""
	err = p.UpdateRESTCollection(ctx, c, workspace.CollectionUpdate{Name: &empty})
	assert.Error(t, err)
}

func TestProvider_RemoveRESTCollectionInvalidatesDescendants(t *testing.T) {
	ctx := context.Background()
	p, _, ws := setup(t)

	root := mustRoot(t, p, ws, "Root")
	child := mustChild(t, p, root, "Child")
	req := mustRequest(t, p, child, "get")
	other := mustRoot(t, p, ws, "Other")

	childView, err := p.GetRESTCollectionChildrenView(ctx, child)
	require.NoError(t, err)

	require.NoError(t, p.RemoveRESTCollection(ctx, root))

	for _, s := range []handle.State[workspace.Collection]{root.Get(), child.Get()} {
		assert.Equal(t, handle.StatusInvalid, s.Status)
		assert.Equal(t, workspace.ReasonCollectionDoesNotExist, s.Reason)
	}
	assert.Equal(t, handle.StatusInvalid, req.Get().Status)
	assert.Equal(t, workspace.ReasonRequestDoesNotExist, req.Get().Reason)
	assert.Equal(t, handle.StatusInvalid, childView.Get().Status)
	assert.True(t, other.Get().OK())

	assert.Equal(t, []string{"Other"}, rootNames(t, p, ws))

	// The stale handle no longer resolves.
	err = p.RemoveRESTCollection(ctx, root)
	assert.ErrorIs(t, err, workspace.ErrInvalidHandle)
}

func TestProvider_ReorderRESTCollection(t *testing.T) {
	ctx := context.Background()
	p, _, ws := setup(t)

	a := mustRoot(t, p, ws, "A")
	mustRoot(t, p, ws, "B")
	c := mustRoot(t, p, ws, "C")
	a1 := mustChild(t, p, a, "A1")

	require.NoError(t, p.ReorderRESTCollection(ctx, c, collID(a)))
	assert.Equal(t, []string{"C", "A", "B"}, rootNames(t, p, ws))

	require.NoError(t, p.ReorderRESTCollection(ctx, a, ""))
	assert.Equal(t, []string{"C", "B", "A"}, rootNames(t, p, ws))

	require.NoError(t, p.ReorderRESTCollection(ctx, a, collID(a)))
	assert.Equal(t, []string{"C", "B", "A"}, rootNames(t, p, ws))

	err := p.ReorderRESTCollection(ctx, c, collID(a1))
	assert.ErrorIs(t, err, workspace.ErrInvalidDestination)

	err = p.ReorderRESTCollection(ctx, c, "missing")
	assert.ErrorIs(t, err, workspace.ErrCollectionNotFound)
}

func TestProvider_ReorderToEndWhenAlreadyLastSavesNothing(t *testing.T) {
	ctx := context.Background()
	p, store, ws := setup(t)
	wsv, _ := ws.Value()

	mustRoot(t, p, ws, "A")
	b := mustRoot(t, p, ws, "B")
	mustRequest(t, p, b, "first")
	last := mustRequest(t, p, b, "last")

	before, err := store.Load(ctx, wsv.WorkspaceID)
	require.NoError(t, err)

	require.NoError(t, p.ReorderRESTCollection(ctx, b, ""))
	require.NoError(t, p.ReorderRESTRequest(ctx, last, collID(b), ""))
	require.NoError(t, p.ReorderRESTRequest(ctx, last, "", ""))

	after, err := store.Load(ctx, wsv.WorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, []string{"A", "B"}, rootNames(t, p, ws))
	assert.Equal(t, []string{"first", "last"}, childRequestNames(t, p, b))
}

func TestProvider_MoveRESTCollection(t *testing.T) {
	ctx := context.Background()
	p, _, ws := setup(t)

	a := mustRoot(t, p, ws, "A")
	b := mustRoot(t, p, ws, "B")
	a1 := mustChild(t, p, a, "A1")
	a11 := mustChild(t, p, a1, "A11")

	err := p.MoveRESTCollection(ctx, a, collID(a11))
	assert.ErrorIs(t, err, workspace.ErrInvalidDestination)
	err = p.MoveRESTCollection(ctx, a, collID(a))
	assert.ErrorIs(t, err, workspace.ErrInvalidDestination)

	require.NoError(t, p.MoveRESTCollection(ctx, a1, collID(b)))
	v, _ := a1.Value()
	assert.Equal(t, collID(b), v.ParentCollectionID)

	require.NoError(t, p.MoveRESTCollection(ctx, a1, ""))
	v, _ = a1.Value()
	assert.Empty(t, v.ParentCollectionID)
	assert.Equal(t, []string{"A", "B", "A1"}, rootNames(t, p, ws))

	// The subtree moved with it.
	v11, _ := a11.Value()
	assert.Equal(t, collID(a1), v11.ParentCollectionID)
	assert.True(t, a11.Get().OK())
}

func TestProvider_Requests(t *testing.T) {
	ctx := context.Background()
	p, _, ws := setup(t)

	users := mustRoot(t, p, ws, "Users")
	orders := mustRoot(t, p, ws, "Orders")
	list := mustRequest(t, p, users, "list")
	get := mustRequest(t, p, users, "get")
	create := mustRequest(t, p, users, "create")

	t.Run("update", func(t *testing.T) {
		err := p.UpdateRESTRequest(ctx, get, &workspace.RESTRequest{Name: "get-by-id", Method: "GET"})
		require.NoError(t, err)
		v, _ := get.Value()
		assert.Equal(t, "get-by-id", v.Request.Name)
		assert.Equal(t, reqID(get), v.Request.ID)

		err = p.UpdateRESTRequest(ctx, get, &workspace.RESTRequest{Name: "x", Method: "get"})
		assert.Error(t, err)
	})

	t.Run("reorder within collection", func(t *testing.T) {
		require.NoError(t, p.ReorderRESTRequest(ctx, create, collID(users), reqID(list)))
		assert.Equal(t, []string{"create", "list", "get-by-id"}, childRequestNames(t, p, users))

		require.NoError(t, p.ReorderRESTRequest(ctx, create, collID(users), ""))
		assert.Equal(t, []string{"list", "get-by-id", "create"}, childRequestNames(t, p, users))
	})

	t.Run("reorder into another collection", func(t *testing.T) {
		moved := mustRequest(t, p, orders, "moved")
		require.NoError(t, p.ReorderRESTRequest(ctx, moved, collID(users), reqID(list)))
		assert.Equal(t, []string{"moved", "list", "get-by-id", "create"}, childRequestNames(t, p, users))
		v, _ := moved.Value()
		assert.Equal(t, collID(users), v.CollectionID)
		require.NoError(t, p.RemoveRESTRequest(ctx, moved))
		assert.Equal(t, handle.StatusInvalid, moved.Get().Status)
	})

	t.Run("reorder to request in another collection", func(t *testing.T) {
		err := p.ReorderRESTRequest(ctx, list, collID(orders), reqID(create))
		assert.ErrorIs(t, err, workspace.ErrInvalidDestination)
	})

	t.Run("move", func(t *testing.T) {
		require.NoError(t, p.MoveRESTRequest(ctx, list, collID(orders)))
		v, _ := list.Value()
		assert.Equal(t, collID(orders), v.CollectionID)
		assert.Equal(t, []string{"list"}, childRequestNames(t, p, orders))

		assert.ErrorIs(t, p.MoveRESTRequest(ctx, list, ""), workspace.ErrInvalidDestination)
		assert.ErrorIs(t, p.MoveRESTRequest(ctx, list, "missing"), workspace.ErrCollectionNotFound)
	})
}

func TestProvider_AuthHeadersView(t *testing.T) {
	ctx := context.Background()
	p, _, ws := setup(t)

	root := mustRoot(t, p, ws, "Root")
	child := mustChild(t, p, root, "Child")

	view, err := p.GetRESTCollectionLevelAuthHeadersView(ctx, child)
	require.NoError(t, err)
	v, _ := view.Value()
	assert.Equal(t, collID(root), v.Auth.ParentID)
	assert.Equal(t, workspace.AuthTypeNone, v.Auth.Auth.AuthType)
	assert.Empty(t, v.Headers)

	auth := workspace.Auth{AuthType: workspace.AuthTypeBearer, AuthActive: true, Token: "abc"}
	require.NoError(t, p.UpdateRESTCollection(ctx, root, workspace.CollectionUpdate{
		Auth: &auth,
		Headers: []workspace.KeyValue{
			{Key: "X-A", Value: "root", Active: true},
			{Key: "X-B", Value: "root", Active: true},
		},
	}))
	require.NoError(t, p.UpdateRESTCollection(ctx, child, workspace.CollectionUpdate{
		Headers: []workspace.KeyValue{{Key: "x-a", Value: "child", Active: true}},
	}))

	v, _ = view.Value()
	assert.Equal(t, "Root", v.Auth.ParentName)
	assert.Equal(t, auth, v.Auth.Auth)
	require.Len(t, v.Headers, 2)
	assert.Equal(t, "child", v.Headers[0].Header.Value)
	assert.Equal(t, collID(child), v.Headers[0].ParentID)
	assert.Equal(t, "X-B", v.Headers[1].Header.Key)
	assert.Equal(t, collID(root), v.Headers[1].ParentID)

	basic := workspace.Auth{AuthType: workspace.AuthTypeBasic, AuthActive: true, Username: "u"}
	require.NoError(t, p.UpdateRESTCollection(ctx, child, workspace.CollectionUpdate{Auth: &basic}))
	v, _ = view.Value()
	assert.Equal(t, collID(child), v.Auth.ParentID)
	assert.Equal(t, workspace.AuthTypeBasic, v.Auth.Auth.AuthType)
}

func TestProvider_SearchResultsView(t *testing.T) {
	ctx := context.Background()
	p, _, ws := setup(t)
	wsv, _ := ws.Value()

	users := mustRoot(t, p, ws, "Users API")
	mustRequest(t, p, users, "List users")
	mustRequest(t, p, users, "Create order")
	orders := mustRoot(t, p, ws, "Orders")
	archive := mustChild(t, p, orders, "Archive")
	mustRequest(t, p, archive, "Old user lookup")
	mustRequest(t, p, archive, "Old order lookup")

	view, err := p.GetRESTSearchResultsView(ctx, ws, "USER")
	require.NoError(t, err)

	v, _ := view.Value()
	assert.Equal(t, "USER", v.Query)
	require.Len(t, v.Results, 2)
	assert.Equal(t, "Users API", v.Results[0].Name)
	assert.Len(t, v.Results[0].Requests, 2, "matching collection is returned whole")
	assert.Equal(t, "Orders", v.Results[1].Name)
	assert.Empty(t, v.Results[1].Requests)
	require.Len(t, v.Results[1].Folders, 1)
	require.Len(t, v.Results[1].Folders[0].Requests, 1)
	assert.Equal(t, "Old user lookup", v.Results[1].Folders[0].Requests[0].Name)

	// Results follow mutations.
	require.NoError(t, p.RemoveRESTCollection(ctx, orders))
	v, _ = view.Value()
	assert.Len(t, v.Results, 1)

	empty, err := p.GetRESTSearchResultsView(ctx, ws, "   ")
	require.NoError(t, err)
	ev, _ := empty.Value()
	assert.Empty(t, ev.Results)

	// Ending a session releases it.
	view.End()
	empty.End()
	assert.Equal(t, handle.ReasonEnded, view.Get().Reason)
	p.mu.Lock()
	assert.Empty(t, p.workspaces[wsv.WorkspaceID].searchViews)
	p.mu.Unlock()
}

func TestProvider_ImportExport(t *testing.T) {
	ctx := context.Background()
	p, _, ws := setup(t)

	input := []*workspace.RESTCollection{{
		ID:   "foreign-id",
		Name: "Imported",
		Folders: []*workspace.RESTCollection{{
			Name:     "Nested",
			Requests: []*workspace.RESTRequest{{ID: "r-foreign", Name: "ping", Method: "HEAD"}},
		}},
		Requests: []*workspace.RESTRequest{{Name: "status", Method: "GET", Endpoint: "https://x/status"}},
	}}

	handles, err := p.ImportRESTCollections(ctx, ws, input)
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.NotEqual(t, "foreign-id", collID(handles[0]))
	assert.Equal(t, "foreign-id", input[0].ID, "input is not modified")

	exported, err := p.ExportRESTCollections(ctx, ws)
	require.NoError(t, err)
	require.Len(t, exported, 1)
	assert.Empty(t, exported[0].ID)
	assert.Equal(t, workspace.CollectionFormatVersion, exported[0].Version)
	assert.Equal(t, workspace.AuthTypeInherit, exported[0].Auth.AuthType)
	assert.Empty(t, exported[0].Folders[0].Requests[0].ID)
	assert.Equal(t, "ping", exported[0].Folders[0].Requests[0].Name)

	// Round trip through import produces an equal export.
	_, err = p.ImportRESTCollections(ctx, ws, exported)
	require.NoError(t, err)
	again, err := p.ExportRESTCollections(ctx, ws)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, again[0], again[1])

	jsonView, err := p.GetRESTCollectionJSONView(ctx, handles[0])
	require.NoError(t, err)
	jv, _ := jsonView.Value()
	var decoded workspace.RESTCollection
	require.NoError(t, json.Unmarshal([]byte(jv.Content), &decoded))
	assert.Equal(t, "Imported", decoded.Name)
	assert.NotContains(t, jv.Content, `"id"`)

	bad := []*workspace.RESTCollection{{Name: ""}}
	_, err = p.ImportRESTCollections(ctx, ws, bad)
	assert.Error(t, err)
}

func TestProvider_RejectsForeignAndInvalidHandles(t *testing.T) {
	ctx := context.Background()
	p, _, ws := setup(t)

	foreign := handle.New(workspace.Workspace{ProviderID: "team", WorkspaceID: "x"})
	_, err := p.CreateRESTRootCollection(ctx, foreign, workspace.NewCollection{Name: "x"})
	assert.ErrorIs(t, err, workspace.ErrInvalidHandle)

	_, err = p.GetRESTRootCollectionView(ctx, nil)
	assert.ErrorIs(t, err, workspace.ErrInvalidHandle)

	c := mustRoot(t, p, ws, "x")
	c2 := handle.New(workspace.Collection{ProviderID: "personal", WorkspaceID: "gone", CollectionID: collID(c)})
	_, err = p.ExportRESTCollection(ctx, c2)
	assert.ErrorIs(t, err, workspace.ErrWorkspaceNotFound)

	failed := handle.Failed[workspace.Request](errors.New("boom"))
	assert.ErrorIs(t, p.RemoveRESTRequest(ctx, failed), workspace.ErrInvalidHandle)
}

func TestProvider_ConflictReloads(t *testing.T) {
	ctx := context.Background()
	p, store, ws := setup(t)
	wsv, _ := ws.Value()
	mustRoot(t, p, ws, "Local")

	// Another writer saves a newer version behind our back.
	snap, err := store.Load(ctx, wsv.WorkspaceID)
	require.NoError(t, err)
	snap.Collections = append(snap.Collections, &workspace.RESTCollection{ID: "ext", Name: "External"})
	snap.Version++
	require.NoError(t, store.Save(ctx, snap))

	view, err := p.GetRESTRootCollectionView(ctx, ws)
	require.NoError(t, err)

	_, err = p.CreateRESTRootCollection(ctx, ws, workspace.NewCollection{Name: "Lost"})
	assert.ErrorIs(t, err, workspace.ErrConflict)

	v, _ := view.Value()
	require.Len(t, v.Collections, 2)
	assert.Equal(t, "External", v.Collections[1].Name)

	// Retrying against the reloaded tree succeeds.
	mustRoot(t, p, ws, "Retried")
	assert.Equal(t, []string{"Local", "External", "Retried"}, rootNames(t, p, ws))
}

func TestProvider_Refresh(t *testing.T) {
	ctx := context.Background()
	p, store, ws := setup(t)
	wsv, _ := ws.Value()
	c := mustRoot(t, p, ws, "Before")

	snap, err := store.Load(ctx, wsv.WorkspaceID)
	require.NoError(t, err)
	snap.Collections[0].Name = "After"
	snap.Version++
	require.NoError(t, store.Save(ctx, snap))

	require.NoError(t, p.Refresh(ctx, wsv.WorkspaceID))
	v, _ := c.Value()
	assert.Equal(t, "After", v.Name)

	assert.NoError(t, p.Refresh(ctx, "never-opened"))
}

type failingStore struct {
	*MemoryStore
	fail bool
}

func (f *failingStore) Save(ctx context.Context, snap *Snapshot) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryStore.Save(ctx, snap)
}

func TestProvider_SaveFailureRestoresTree(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: NewMemoryStore()}
	p := New("personal", store, Options{})
	ws, err := p.CreateWorkspace(ctx, "w")
	require.NoError(t, err)
	c := mustRoot(t, p, ws, "Keep")

	store.fail = true
	err = p.RemoveRESTCollection(ctx, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, c.Get().OK())

	_, err = p.CreateRESTRootCollection(ctx, ws, workspace.NewCollection{Name: "Dropped"})
	require.Error(t, err)

	store.fail = false
	assert.Equal(t, []string{"Keep"}, rootNames(t, p, ws))
}
