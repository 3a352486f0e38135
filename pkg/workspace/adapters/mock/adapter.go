// Package mock provides a recording fake workspace provider for testing.
package mock

import (
	"context"
	"sync"

	"github.com/jamesgeorge007/postwoman/pkg/handle"
	"github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
)

// Compile-time interface check.
var _ workspace.Provider = (*FakeAdapter)(nil)

// Call is one recorded provider call.
type Call struct {
	Op   string
	Args []any
}

// FakeAdapter is an in-memory provider that records every call. Errors set
// with FailNext are returned instead of calling through.
type FakeAdapter struct {
	*tree.Provider

	mu       sync.Mutex
	calls    []Call
	failures map[string]error
	closed   bool
}

// NewFakeAdapter creates a fake provider with the given ID.
func NewFakeAdapter(id string) *FakeAdapter {
	return NewFakeAdapterWithDecor(id, workspace.Decor{Name: id})
}

// NewFakeAdapterWithDecor creates a fake provider with custom decor.
func NewFakeAdapterWithDecor(id string, decor workspace.Decor) *FakeAdapter {
	return &FakeAdapter{
		Provider: tree.New(id, tree.NewMemoryStore(), tree.Options{Decor: decor}),
		failures: make(map[string]error),
	}
}

// FailNext makes the next call to op return err.
func (f *FakeAdapter) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

// Calls returns the recorded calls.
func (f *FakeAdapter) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Ops returns the names of the recorded calls, in order.
func (f *FakeAdapter) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ops := make([]string, len(f.calls))
	for i, c := range f.calls {
		ops[i] = c.Op
	}
	return ops
}

// Reset clears recorded calls and pending failures.
func (f *FakeAdapter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.failures = make(map[string]error)
}

// Closed reports whether Close was called.
func (f *FakeAdapter) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeAdapter) record(op string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Args: args})
	if err, ok := f.failures[op]; ok {
		delete(f.failures, op)
		return err
	}
	return nil
}

func (f *FakeAdapter) Close() error {
	if err := f.record("Close"); err != nil {
		return err
	}
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return f.Provider.Close()
}

// Workspaces

func (f *FakeAdapter) CreateWorkspace(ctx context.Context, name string) (workspace.WorkspaceHandle, error) {
	if err := f.record("CreateWorkspace", name); err != nil {
		return nil, err
	}
	return f.Provider.CreateWorkspace(ctx, name)
}

func (f *FakeAdapter) ListWorkspaces(ctx context.Context) ([]workspace.Workspace, error) {
	if err := f.record("ListWorkspaces"); err != nil {
		return nil, err
	}
	return f.Provider.ListWorkspaces(ctx)
}

func (f *FakeAdapter) GetWorkspaceHandle(ctx context.Context, workspaceID string) (workspace.WorkspaceHandle, error) {
	if err := f.record("GetWorkspaceHandle", workspaceID); err != nil {
		return nil, err
	}
	return f.Provider.GetWorkspaceHandle(ctx, workspaceID)
}

func (f *FakeAdapter) GetCollectionHandle(ctx context.Context, ws workspace.WorkspaceHandle, collectionID string) (workspace.CollectionHandle, error) {
	if err := f.record("GetCollectionHandle", ws, collectionID); err != nil {
		return nil, err
	}
	return f.Provider.GetCollectionHandle(ctx, ws, collectionID)
}

func (f *FakeAdapter) GetRequestHandle(ctx context.Context, ws workspace.WorkspaceHandle, requestID string) (workspace.RequestHandle, error) {
	if err := f.record("GetRequestHandle", ws, requestID); err != nil {
		return nil, err
	}
	return f.Provider.GetRequestHandle(ctx, ws, requestID)
}

// Collections

func (f *FakeAdapter) CreateRESTRootCollection(ctx context.Context, ws workspace.WorkspaceHandle, c workspace.NewCollection) (workspace.CollectionHandle, error) {
	if err := f.record("CreateRESTRootCollection", ws, c); err != nil {
		return nil, err
	}
	return f.Provider.CreateRESTRootCollection(ctx, ws, c)
}

func (f *FakeAdapter) CreateRESTChildCollection(ctx context.Context, parent workspace.CollectionHandle, c workspace.NewCollection) (workspace.CollectionHandle, error) {
	if err := f.record("CreateRESTChildCollection", parent, c); err != nil {
		return nil, err
	}
	return f.Provider.CreateRESTChildCollection(ctx, parent, c)
}

func (f *FakeAdapter) UpdateRESTCollection(ctx context.Context, c workspace.CollectionHandle, update workspace.CollectionUpdate) error {
	if err := f.record("UpdateRESTCollection", c, update); err != nil {
		return err
	}
	return f.Provider.UpdateRESTCollection(ctx, c, update)
}

func (f *FakeAdapter) RemoveRESTCollection(ctx context.Context, c workspace.CollectionHandle) error {
	if err := f.record("RemoveRESTCollection", c); err != nil {
		return err
	}
	return f.Provider.RemoveRESTCollection(ctx, c)
}

func (f *FakeAdapter) ReorderRESTCollection(ctx context.Context, c workspace.CollectionHandle, destinationCollectionID string) error {
	if err := f.record("ReorderRESTCollection", c, destinationCollectionID); err != nil {
		return err
	}
	return f.Provider.ReorderRESTCollection(ctx, c, destinationCollectionID)
}

func (f *FakeAdapter) MoveRESTCollection(ctx context.Context, c workspace.CollectionHandle, destinationCollectionID string) error {
	if err := f.record("MoveRESTCollection", c, destinationCollectionID); err != nil {
		return err
	}
	return f.Provider.MoveRESTCollection(ctx, c, destinationCollectionID)
}

// Requests

func (f *FakeAdapter) CreateRESTRequest(ctx context.Context, parent workspace.CollectionHandle, r *workspace.RESTRequest) (workspace.RequestHandle, error) {
	if err := f.record("CreateRESTRequest", parent, r); err != nil {
		return nil, err
	}
	return f.Provider.CreateRESTRequest(ctx, parent, r)
}

func (f *FakeAdapter) UpdateRESTRequest(ctx context.Context, r workspace.RequestHandle, updated *workspace.RESTRequest) error {
	if err := f.record("UpdateRESTRequest", r, updated); err != nil {
		return err
	}
	return f.Provider.UpdateRESTRequest(ctx, r, updated)
}

func (f *FakeAdapter) RemoveRESTRequest(ctx context.Context, r workspace.RequestHandle) error {
	if err := f.record("RemoveRESTRequest", r); err != nil {
		return err
	}
	return f.Provider.RemoveRESTRequest(ctx, r)
}

func (f *FakeAdapter) ReorderRESTRequest(ctx context.Context, r workspace.RequestHandle, destinationCollectionID, destinationRequestID string) error {
	if err := f.record("ReorderRESTRequest", r, destinationCollectionID, destinationRequestID); err != nil {
		return err
	}
	return f.Provider.ReorderRESTRequest(ctx, r, destinationCollectionID, destinationRequestID)
}

func (f *FakeAdapter) MoveRESTRequest(ctx context.Context, r workspace.RequestHandle, destinationCollectionID string) error {
	if err := f.record("MoveRESTRequest", r, destinationCollectionID); err != nil {
		return err
	}
	return f.Provider.MoveRESTRequest(ctx, r, destinationCollectionID)
}

// Transfer

func (f *FakeAdapter) ImportRESTCollections(ctx context.Context, ws workspace.WorkspaceHandle, collections []*workspace.RESTCollection) ([]workspace.CollectionHandle, error) {
	if err := f.record("ImportRESTCollections", ws, collections); err != nil {
		return nil, err
	}
	return f.Provider.ImportRESTCollections(ctx, ws, collections)
}

func (f *FakeAdapter) ExportRESTCollections(ctx context.Context, ws workspace.WorkspaceHandle) ([]*workspace.RESTCollection, error) {
	if err := f.record("ExportRESTCollections", ws); err != nil {
		return nil, err
	}
	return f.Provider.ExportRESTCollections(ctx, ws)
}

func (f *FakeAdapter) ExportRESTCollection(ctx context.Context, c workspace.CollectionHandle) (*workspace.RESTCollection, error) {
	if err := f.record("ExportRESTCollection", c); err != nil {
		return nil, err
	}
	return f.Provider.ExportRESTCollection(ctx, c)
}

// Views

func (f *FakeAdapter) GetRESTRootCollectionView(ctx context.Context, ws workspace.WorkspaceHandle) (*handle.Handle[workspace.RootCollectionView], error) {
	if err := f.record("GetRESTRootCollectionView", ws); err != nil {
		return nil, err
	}
	return f.Provider.GetRESTRootCollectionView(ctx, ws)
}

func (f *FakeAdapter) GetRESTCollectionChildrenView(ctx context.Context, c workspace.CollectionHandle) (*handle.Handle[workspace.CollectionChildrenView], error) {
	if err := f.record("GetRESTCollectionChildrenView", c); err != nil {
		return nil, err
	}
	return f.Provider.GetRESTCollectionChildrenView(ctx, c)
}

func (f *FakeAdapter) GetRESTCollectionLevelAuthHeadersView(ctx context.Context, c workspace.CollectionHandle) (*handle.Handle[workspace.CollectionLevelAuthHeadersView], error) {
	if err := f.record("GetRESTCollectionLevelAuthHeadersView", c); err != nil {
		return nil, err
	}
	return f.Provider.GetRESTCollectionLevelAuthHeadersView(ctx, c)
}

func (f *FakeAdapter) GetRESTSearchResultsView(ctx context.Context, ws workspace.WorkspaceHandle, query string) (*handle.Handle[workspace.SearchResultsView], error) {
	if err := f.record("GetRESTSearchResultsView", ws, query); err != nil {
		return nil, err
	}
	return f.Provider.GetRESTSearchResultsView(ctx, ws, query)
}

func (f *FakeAdapter) GetRESTCollectionJSONView(ctx context.Context, c workspace.CollectionHandle) (*handle.Handle[workspace.CollectionJSONView], error) {
	if err := f.record("GetRESTCollectionJSONView", c); err != nil {
		return nil, err
	}
	return f.Provider.GetRESTCollectionJSONView(ctx, c)
}
