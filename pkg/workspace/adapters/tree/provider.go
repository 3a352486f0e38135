// Package tree implements workspace.Provider on top of a snapshot Store.
//
// Each workspace is loaded once into an in-memory collection tree. Every
// mutation edits the tree, saves a new snapshot version and then reconciles
// all handles and views issued for that workspace. Backends only need to
// implement Store.
package tree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/jamesgeorge007/postwoman/pkg/handle"
	"github.com/jamesgeorge007/postwoman/pkg/ref"
	"github.com/jamesgeorge007/postwoman/pkg/workspace"
)

// Compile-time check that Provider implements workspace.Provider.
var _ workspace.Provider = (*Provider)(nil)

// errNoChange aborts a mutation that would leave the tree as it is.
var errNoChange = errors.New("no change")

// Options configures a Provider.
type Options struct {
	Decor  workspace.Decor
	Logger hclog.Logger
}

// Provider serves workspaces kept in a Store.
type Provider struct {
	id     string
	decor  workspace.Decor
	store  Store
	logger hclog.Logger

	mu         sync.Mutex
	workspaces map[string]*wsState
}

// New creates a provider with the given ID backed by store.
func New(id string, store Store, opts Options) *Provider {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	decor := opts.Decor
	if decor.Name == "" {
		decor.Name = id
	}
	return &Provider{
		id:         id,
		decor:      decor,
		store:      store,
		logger:     logger.Named("tree").With("provider", id),
		workspaces: make(map[string]*wsState),
	}
}

func (p *Provider) ID() string {
	return p.id
}

func (p *Provider) Decor() workspace.Decor {
	return p.decor
}

// Store returns the backing store.
func (p *Provider) Store() Store {
	return p.store
}

// Close closes the store if it holds resources.
func (p *Provider) Close() error {
	if c, ok := p.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// load returns the cached workspace, loading it from the store on first
// use. Caller must hold p.mu.
func (p *Provider) load(ctx context.Context, workspaceID string) (*wsState, error) {
	if ws, ok := p.workspaces[workspaceID]; ok {
		return ws, nil
	}
	snap, err := p.store.Load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	ws := newWSState(p.id, snap)
	p.workspaces[workspaceID] = ws
	p.logger.Debug("loaded workspace", "workspace", workspaceID, "version", snap.Version)
	return ws, nil
}

// mutate applies fn to a workspace and persists the result. On any failure
// the tree is put back the way it was. A version conflict reloads the
// workspace from the store before returning the error.
func (p *Provider) mutate(ctx context.Context, workspaceID string, fn func(ws *wsState) error) error {
	p.mu.Lock()
	ws, err := p.load(ctx, workspaceID)
	if err != nil {
		p.mu.Unlock()
		return err
	}

	before := ws.snapshot()
	if err := fn(ws); err != nil {
		ws.restore(before)
		notify := ws.sync(p.id)
		p.mu.Unlock()
		deliver(notify)
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}

	next := ws.snapshot()
	next.Version = before.Version + 1
	if err := p.store.Save(ctx, next); err != nil {
		ws.restore(before)
		var notify []func()
		if errors.Is(err, workspace.ErrConflict) {
			p.logger.Warn("version conflict, reloading workspace",
				"workspace", workspaceID, "version", next.Version)
			notify = p.reload(ctx, ws)
		} else {
			notify = ws.sync(p.id)
		}
		p.mu.Unlock()
		deliver(notify)
		return fmt.Errorf("error saving workspace %s: %w", workspaceID, err)
	}

	ws.version = next.Version
	notify := ws.sync(p.id)
	p.mu.Unlock()
	deliver(notify)

	p.logger.Debug("saved workspace", "workspace", workspaceID, "version", next.Version)
	return nil
}

// reload refreshes ws from the store. Caller must hold p.mu.
func (p *Provider) reload(ctx context.Context, ws *wsState) []func() {
	snap, err := p.store.Load(ctx, ws.id)
	switch {
	case errors.Is(err, workspace.ErrWorkspaceNotFound):
		delete(p.workspaces, ws.id)
		return ws.drop()
	case err != nil:
		// Keep what we have; the next save will conflict again and retry.
		p.logger.Error("error reloading workspace", "workspace", ws.id, "error", err)
		return ws.sync(p.id)
	}
	ws.restore(snap)
	return ws.sync(p.id)
}

// Refresh reloads a workspace that is already open if the store holds a
// newer version, updating every issued handle. Workspaces that were never
// opened are left alone.
func (p *Provider) Refresh(ctx context.Context, workspaceID string) error {
	p.mu.Lock()
	ws, ok := p.workspaces[workspaceID]
	if !ok {
		p.mu.Unlock()
		return nil
	}
	snap, err := p.store.Load(ctx, workspaceID)
	if err != nil && !errors.Is(err, workspace.ErrWorkspaceNotFound) {
		p.mu.Unlock()
		return fmt.Errorf("error loading workspace %s: %w", workspaceID, err)
	}

	var notify []func()
	switch {
	case err != nil:
		delete(p.workspaces, workspaceID)
		notify = ws.drop()
	case snap.Version > ws.version:
		ws.restore(snap)
		notify = ws.sync(p.id)
	}
	p.mu.Unlock()
	deliver(notify)
	return nil
}

// ===================================================================
// Handle resolution
// ===================================================================

func (p *Provider) owns(providerID string) error {
	if providerID != p.id {
		return fmt.Errorf("%w: handle belongs to provider %q", workspace.ErrInvalidHandle, providerID)
	}
	return nil
}

func resolve[T any](h *handle.Handle[T], what string) (T, error) {
	var zero T
	if h == nil {
		return zero, fmt.Errorf("%w: nil %s handle", workspace.ErrInvalidHandle, what)
	}
	s := h.Get()
	if !s.OK() {
		return zero, fmt.Errorf("%w: %s handle is %s", workspace.ErrInvalidHandle, what, s.Status)
	}
	return s.Value, nil
}

func (p *Provider) workspaceID(h workspace.WorkspaceHandle) (string, error) {
	v, err := resolve(h, "workspace")
	if err != nil {
		return "", err
	}
	if err := p.owns(v.ProviderID); err != nil {
		return "", err
	}
	return v.WorkspaceID, nil
}

func (p *Provider) collection(h workspace.CollectionHandle) (workspace.Collection, error) {
	v, err := resolve(h, "collection")
	if err != nil {
		return v, err
	}
	return v, p.owns(v.ProviderID)
}

func (p *Provider) request(h workspace.RequestHandle) (workspace.Request, error) {
	v, err := resolve(h, "request")
	if err != nil {
		return v, err
	}
	return v, p.owns(v.ProviderID)
}

func (ws *wsState) coll(id string) (*collNode, error) {
	n, ok := ws.colls[id]
	if !ok {
		return nil, workspace.NotFoundf(workspace.ErrCollectionNotFound, id)
	}
	return n, nil
}

func (ws *wsState) req(id string) (*reqNode, error) {
	r, ok := ws.reqs[id]
	if !ok {
		return nil, workspace.NotFoundf(workspace.ErrRequestNotFound, id)
	}
	return r, nil
}

// withWorkspace runs fn under the provider lock without persisting.
func (p *Provider) withWorkspace(ctx context.Context, workspaceID string, fn func(ws *wsState) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ws, err := p.load(ctx, workspaceID)
	if err != nil {
		return err
	}
	return fn(ws)
}

// ===================================================================
// WorkspaceOps
// ===================================================================

func (p *Provider) CreateWorkspace(ctx context.Context, name string) (workspace.WorkspaceHandle, error) {
	if err := validation.Validate(name, validation.Required, validation.Length(1, 256)); err != nil {
		return nil, fmt.Errorf("invalid workspace name: %w", err)
	}
	return p.create(ctx, ref.NewID(), name)
}

// EnsureWorkspace returns the workspace with the given ID, creating it
// empty if the store does not have it.
func (p *Provider) EnsureWorkspace(ctx context.Context, workspaceID, name string) (workspace.WorkspaceHandle, error) {
	h, err := p.GetWorkspaceHandle(ctx, workspaceID)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, workspace.ErrWorkspaceNotFound) {
		return nil, err
	}

	h, err = p.create(ctx, workspaceID, name)
	if errors.Is(err, workspace.ErrConflict) {
		// Created concurrently.
		return p.GetWorkspaceHandle(ctx, workspaceID)
	}
	return h, err
}

func (p *Provider) create(ctx context.Context, workspaceID, name string) (workspace.WorkspaceHandle, error) {
	snap := &Snapshot{
		WorkspaceID: workspaceID,
		Name:        name,
		Version:     1,
		Collections: []*workspace.RESTCollection{},
	}
	if err := p.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("error creating workspace: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ws, ok := p.workspaces[workspaceID]
	if !ok {
		ws = newWSState(p.id, snap)
		p.workspaces[workspaceID] = ws
	}
	p.logger.Info("created workspace", "workspace", workspaceID, "name", name)
	return ws.handle, nil
}

func (p *Provider) ListWorkspaces(ctx context.Context) ([]workspace.Workspace, error) {
	infos, err := p.store.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing workspaces: %w", err)
	}
	out := make([]workspace.Workspace, 0, len(infos))
	for _, info := range infos {
		out = append(out, workspace.Workspace{
			ProviderID:  p.id,
			WorkspaceID: info.ID,
			Name:        info.Name,
		})
	}
	return out, nil
}

func (p *Provider) GetWorkspaceHandle(ctx context.Context, workspaceID string) (workspace.WorkspaceHandle, error) {
	var h workspace.WorkspaceHandle
	err := p.withWorkspace(ctx, workspaceID, func(ws *wsState) error {
		h = ws.handle
		return nil
	})
	return h, err
}

func (p *Provider) GetCollectionHandle(ctx context.Context, wsh workspace.WorkspaceHandle, collectionID string) (workspace.CollectionHandle, error) {
	wsID, err := p.workspaceID(wsh)
	if err != nil {
		return nil, err
	}
	var h workspace.CollectionHandle
	err = p.withWorkspace(ctx, wsID, func(ws *wsState) error {
		n, err := ws.coll(collectionID)
		if err != nil {
			return err
		}
		h = ws.collectionHandle(p.id, n)
		return nil
	})
	return h, err
}

func (p *Provider) GetRequestHandle(ctx context.Context, wsh workspace.WorkspaceHandle, requestID string) (workspace.RequestHandle, error) {
	wsID, err := p.workspaceID(wsh)
	if err != nil {
		return nil, err
	}
	var h workspace.RequestHandle
	err = p.withWorkspace(ctx, wsID, func(ws *wsState) error {
		r, err := ws.req(requestID)
		if err != nil {
			return err
		}
		h = ws.requestHandle(p.id, r)
		return nil
	})
	return h, err
}

// ===================================================================
// CollectionOps
// ===================================================================

func newCollNode(c workspace.NewCollection, parent *collNode) *collNode {
	auth := workspace.InheritAuth()
	if c.Auth != nil {
		auth = normalizeAuth(*c.Auth)
	}
	return &collNode{
		id:      ref.NewID(),
		name:    c.Name,
		auth:    auth,
		headers: append([]workspace.KeyValue{}, c.Headers...),
		parent:  parent,
	}
}

func (p *Provider) CreateRESTRootCollection(ctx context.Context, wsh workspace.WorkspaceHandle, c workspace.NewCollection) (workspace.CollectionHandle, error) {
	wsID, err := p.workspaceID(wsh)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var h workspace.CollectionHandle
	err = p.mutate(ctx, wsID, func(ws *wsState) error {
		n := newCollNode(c, nil)
		ws.roots = append(ws.roots, n)
		ws.colls[n.id] = n
		h = ws.collectionHandle(p.id, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (p *Provider) CreateRESTChildCollection(ctx context.Context, parent workspace.CollectionHandle, c workspace.NewCollection) (workspace.CollectionHandle, error) {
	pv, err := p.collection(parent)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var h workspace.CollectionHandle
	err = p.mutate(ctx, pv.WorkspaceID, func(ws *wsState) error {
		pn, err := ws.coll(pv.CollectionID)
		if err != nil {
			return err
		}
		n := newCollNode(c, pn)
		pn.folders = append(pn.folders, n)
		ws.colls[n.id] = n
		h = ws.collectionHandle(p.id, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (p *Provider) UpdateRESTCollection(ctx context.Context, ch workspace.CollectionHandle, update workspace.CollectionUpdate) error {
	cv, err := p.collection(ch)
	if err != nil {
		return err
	}
	if err := update.Validate(); err != nil {
		return err
	}

	return p.mutate(ctx, cv.WorkspaceID, func(ws *wsState) error {
		n, err := ws.coll(cv.CollectionID)
		if err != nil {
			return err
		}
		if update.Name != nil {
			n.name = *update.Name
		}
		if update.Auth != nil {
			n.auth = normalizeAuth(*update.Auth)
		}
		if update.Headers != nil {
			n.headers = append([]workspace.KeyValue{}, update.Headers...)
		}
		return nil
	})
}

func (p *Provider) RemoveRESTCollection(ctx context.Context, ch workspace.CollectionHandle) error {
	cv, err := p.collection(ch)
	if err != nil {
		return err
	}

	return p.mutate(ctx, cv.WorkspaceID, func(ws *wsState) error {
		n, err := ws.coll(cv.CollectionID)
		if err != nil {
			return err
		}
		ws.detach(n)
		ws.forget(n)
		return nil
	})
}

func (p *Provider) ReorderRESTCollection(ctx context.Context, ch workspace.CollectionHandle, destinationCollectionID string) error {
	cv, err := p.collection(ch)
	if err != nil {
		return err
	}

	return p.mutate(ctx, cv.WorkspaceID, func(ws *wsState) error {
		n, err := ws.coll(cv.CollectionID)
		if err != nil {
			return err
		}
		s := ws.siblings(n)

		if destinationCollectionID == "" {
			if last := len(*s) - 1; (*s)[last] == n {
				return errNoChange
			}
			*s = append(removeNode(*s, n), n)
			return nil
		}
		if destinationCollectionID == n.id {
			return errNoChange
		}
		dest, err := ws.coll(destinationCollectionID)
		if err != nil {
			return err
		}
		if dest.parent != n.parent {
			return fmt.Errorf("%w: collection %q is not a sibling of %q",
				workspace.ErrInvalidDestination, dest.id, n.id)
		}

		*s = removeNode(*s, n)
		for i, v := range *s {
			if v == dest {
				*s = insertNode(*s, i, n)
				break
			}
		}
		return nil
	})
}

func (p *Provider) MoveRESTCollection(ctx context.Context, ch workspace.CollectionHandle, destinationCollectionID string) error {
	cv, err := p.collection(ch)
	if err != nil {
		return err
	}

	return p.mutate(ctx, cv.WorkspaceID, func(ws *wsState) error {
		n, err := ws.coll(cv.CollectionID)
		if err != nil {
			return err
		}

		if destinationCollectionID == "" {
			if n.parent == nil {
				return errNoChange
			}
			ws.detach(n)
			n.parent = nil
			ws.roots = append(ws.roots, n)
			return nil
		}

		dest, err := ws.coll(destinationCollectionID)
		if err != nil {
			return err
		}
		if dest.isWithin(n) {
			return fmt.Errorf("%w: cannot move collection %q into itself",
				workspace.ErrInvalidDestination, n.id)
		}
		if dest == n.parent {
			return errNoChange
		}
		ws.detach(n)
		n.parent = dest
		dest.folders = append(dest.folders, n)
		return nil
	})
}

// ===================================================================
// RequestOps
// ===================================================================

func (p *Provider) CreateRESTRequest(ctx context.Context, parent workspace.CollectionHandle, r *workspace.RESTRequest) (workspace.RequestHandle, error) {
	pv, err := p.collection(parent)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var h workspace.RequestHandle
	err = p.mutate(ctx, pv.WorkspaceID, func(ws *wsState) error {
		pn, err := ws.coll(pv.CollectionID)
		if err != nil {
			return err
		}
		rn := &reqNode{id: ref.NewID(), parent: pn, req: normalizeRequest(r)}
		rn.req.ID = rn.id
		pn.requests = append(pn.requests, rn)
		ws.reqs[rn.id] = rn
		h = ws.requestHandle(p.id, rn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (p *Provider) UpdateRESTRequest(ctx context.Context, rh workspace.RequestHandle, updated *workspace.RESTRequest) error {
	rv, err := p.request(rh)
	if err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	return p.mutate(ctx, rv.WorkspaceID, func(ws *wsState) error {
		rn, err := ws.req(rv.RequestID)
		if err != nil {
			return err
		}
		rn.req = normalizeRequest(updated)
		rn.req.ID = rn.id
		return nil
	})
}

func (p *Provider) RemoveRESTRequest(ctx context.Context, rh workspace.RequestHandle) error {
	rv, err := p.request(rh)
	if err != nil {
		return err
	}

	return p.mutate(ctx, rv.WorkspaceID, func(ws *wsState) error {
		rn, err := ws.req(rv.RequestID)
		if err != nil {
			return err
		}
		rn.parent.requests = removeReq(rn.parent.requests, rn)
		delete(ws.reqs, rn.id)
		return nil
	})
}

func (p *Provider) ReorderRESTRequest(ctx context.Context, rh workspace.RequestHandle, destinationCollectionID, destinationRequestID string) error {
	rv, err := p.request(rh)
	if err != nil {
		return err
	}

	return p.mutate(ctx, rv.WorkspaceID, func(ws *wsState) error {
		rn, err := ws.req(rv.RequestID)
		if err != nil {
			return err
		}
		dest := rn.parent
		if destinationCollectionID != "" {
			if dest, err = ws.coll(destinationCollectionID); err != nil {
				return err
			}
		}

		if destinationRequestID == "" {
			if dest == rn.parent && dest.requests[len(dest.requests)-1] == rn {
				return errNoChange
			}
			rn.parent.requests = removeReq(rn.parent.requests, rn)
			rn.parent = dest
			dest.requests = append(dest.requests, rn)
			return nil
		}
		if destinationRequestID == rn.id {
			return errNoChange
		}
		before, err := ws.req(destinationRequestID)
		if err != nil {
			return err
		}
		if before.parent != dest {
			return fmt.Errorf("%w: request %q is not in collection %q",
				workspace.ErrInvalidDestination, before.id, dest.id)
		}

		rn.parent.requests = removeReq(rn.parent.requests, rn)
		rn.parent = dest
		for i, v := range dest.requests {
			if v == before {
				dest.requests = insertReq(dest.requests, i, rn)
				break
			}
		}
		return nil
	})
}

func (p *Provider) MoveRESTRequest(ctx context.Context, rh workspace.RequestHandle, destinationCollectionID string) error {
	rv, err := p.request(rh)
	if err != nil {
		return err
	}
	if destinationCollectionID == "" {
		return fmt.Errorf("%w: requests must live in a collection", workspace.ErrInvalidDestination)
	}

	return p.mutate(ctx, rv.WorkspaceID, func(ws *wsState) error {
		rn, err := ws.req(rv.RequestID)
		if err != nil {
			return err
		}
		dest, err := ws.coll(destinationCollectionID)
		if err != nil {
			return err
		}
		if dest == rn.parent {
			return errNoChange
		}
		rn.parent.requests = removeReq(rn.parent.requests, rn)
		rn.parent = dest
		dest.requests = append(dest.requests, rn)
		return nil
	})
}

// ===================================================================
// TransferOps
// ===================================================================

func (p *Provider) ImportRESTCollections(ctx context.Context, wsh workspace.WorkspaceHandle, collections []*workspace.RESTCollection) ([]workspace.CollectionHandle, error) {
	wsID, err := p.workspaceID(wsh)
	if err != nil {
		return nil, err
	}
	for _, c := range collections {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}

	var handles []workspace.CollectionHandle
	err = p.mutate(ctx, wsID, func(ws *wsState) error {
		handles = handles[:0]
		for _, c := range collections {
			n := ws.build(c, nil, true)
			ws.roots = append(ws.roots, n)
			handles = append(handles, ws.collectionHandle(p.id, n))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("imported collections", "workspace", wsID, "count", len(handles))
	return handles, nil
}

func (p *Provider) ExportRESTCollections(ctx context.Context, wsh workspace.WorkspaceHandle) ([]*workspace.RESTCollection, error) {
	wsID, err := p.workspaceID(wsh)
	if err != nil {
		return nil, err
	}

	out := []*workspace.RESTCollection{}
	err = p.withWorkspace(ctx, wsID, func(ws *wsState) error {
		for _, n := range ws.roots {
			c := n.export()
			c.StripIDs()
			out = append(out, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Provider) ExportRESTCollection(ctx context.Context, ch workspace.CollectionHandle) (*workspace.RESTCollection, error) {
	cv, err := p.collection(ch)
	if err != nil {
		return nil, err
	}

	var out *workspace.RESTCollection
	err = p.withWorkspace(ctx, cv.WorkspaceID, func(ws *wsState) error {
		n, err := ws.coll(cv.CollectionID)
		if err != nil {
			return err
		}
		out = n.export()
		out.StripIDs()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ===================================================================
// ViewOps
// ===================================================================

// live reports whether a cached view can be handed out again.
func live[T any](h *handle.Handle[T]) bool {
	return h != nil && h.Get().Status != handle.StatusInvalid
}

func (p *Provider) GetRESTRootCollectionView(ctx context.Context, wsh workspace.WorkspaceHandle) (*handle.Handle[workspace.RootCollectionView], error) {
	wsID, err := p.workspaceID(wsh)
	if err != nil {
		return nil, err
	}

	var h *handle.Handle[workspace.RootCollectionView]
	err = p.withWorkspace(ctx, wsID, func(ws *wsState) error {
		if !live(ws.rootView) {
			ws.rootView = handle.New(ws.rootViewValue(p.id))
		}
		h = ws.rootView
		return nil
	})
	return h, err
}

func (p *Provider) GetRESTCollectionChildrenView(ctx context.Context, ch workspace.CollectionHandle) (*handle.Handle[workspace.CollectionChildrenView], error) {
	cv, err := p.collection(ch)
	if err != nil {
		return nil, err
	}

	var h *handle.Handle[workspace.CollectionChildrenView]
	err = p.withWorkspace(ctx, cv.WorkspaceID, func(ws *wsState) error {
		n, err := ws.coll(cv.CollectionID)
		if err != nil {
			return err
		}
		if h = ws.childViews[n.id]; !live(h) {
			h = handle.New(childrenViewValue(n))
			ws.childViews[n.id] = h
		}
		return nil
	})
	return h, err
}

func (p *Provider) GetRESTCollectionLevelAuthHeadersView(ctx context.Context, ch workspace.CollectionHandle) (*handle.Handle[workspace.CollectionLevelAuthHeadersView], error) {
	cv, err := p.collection(ch)
	if err != nil {
		return nil, err
	}

	var h *handle.Handle[workspace.CollectionLevelAuthHeadersView]
	err = p.withWorkspace(ctx, cv.WorkspaceID, func(ws *wsState) error {
		n, err := ws.coll(cv.CollectionID)
		if err != nil {
			return err
		}
		if h = ws.authViews[n.id]; !live(h) {
			h = handle.New(authHeadersViewValue(n))
			ws.authViews[n.id] = h
		}
		return nil
	})
	return h, err
}

func (p *Provider) GetRESTSearchResultsView(ctx context.Context, wsh workspace.WorkspaceHandle, query string) (*handle.Handle[workspace.SearchResultsView], error) {
	wsID, err := p.workspaceID(wsh)
	if err != nil {
		return nil, err
	}

	var h *handle.Handle[workspace.SearchResultsView]
	err = p.withWorkspace(ctx, wsID, func(ws *wsState) error {
		h = handle.New(ws.searchViewValue(query))
		ws.searchViews[h] = query
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.OnEnd(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if ws, ok := p.workspaces[wsID]; ok {
			delete(ws.searchViews, h)
		}
	})
	return h, nil
}

func (p *Provider) GetRESTCollectionJSONView(ctx context.Context, ch workspace.CollectionHandle) (*handle.Handle[workspace.CollectionJSONView], error) {
	cv, err := p.collection(ch)
	if err != nil {
		return nil, err
	}

	var h *handle.Handle[workspace.CollectionJSONView]
	err = p.withWorkspace(ctx, cv.WorkspaceID, func(ws *wsState) error {
		n, err := ws.coll(cv.CollectionID)
		if err != nil {
			return err
		}
		if h = ws.jsonViews[n.id]; !live(h) {
			h = handle.New(jsonViewValue(n))
			ws.jsonViews[n.id] = h
		}
		return nil
	})
	return h, err
}
