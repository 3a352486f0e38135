package tree

import (
	"reflect"

	"github.com/jamesgeorge007/postwoman/pkg/handle"
	"github.com/jamesgeorge007/postwoman/pkg/workspace"
)

// sync reconciles every issued handle and live view with the current tree.
// It returns the notifications to deliver once the provider lock is
// released, so subscribers may call back into the provider.
//
// Value updates are tagged with a generation and skipped when a newer sync
// has happened in between; that newer sync carries the fresher value.
// Invalidations are always delivered.
func (ws *wsState) sync(providerID string) []func() {
	var notify []func()
	gen := ws.gen.Add(1)
	update := func(fn func() bool) {
		notify = append(notify, func() {
			if ws.gen.Load() == gen {
				fn()
			}
		})
	}

	for id, h := range ws.collHandles {
		n, ok := ws.colls[id]
		if !ok {
			notify = append(notify, invalidate(h, workspace.ReasonCollectionDoesNotExist))
			delete(ws.collHandles, id)
			continue
		}
		if changed(h, n.value(providerID, ws.id)) {
			update(set(h, n.value(providerID, ws.id)))
		}
	}

	for id, h := range ws.reqHandles {
		r, ok := ws.reqs[id]
		if !ok {
			notify = append(notify, invalidate(h, workspace.ReasonRequestDoesNotExist))
			delete(ws.reqHandles, id)
			continue
		}
		if changed(h, r.value(providerID, ws.id)) {
			update(set(h, r.value(providerID, ws.id)))
		}
	}

	if ws.rootView != nil {
		if changed(ws.rootView, ws.rootViewValue(providerID)) {
			update(set(ws.rootView, ws.rootViewValue(providerID)))
		}
	}

	for id, h := range ws.childViews {
		n, ok := ws.colls[id]
		if !ok {
			notify = append(notify, invalidate(h, workspace.ReasonCollectionDoesNotExist))
			delete(ws.childViews, id)
			continue
		}
		if changed(h, childrenViewValue(n)) {
			update(set(h, childrenViewValue(n)))
		}
	}

	for id, h := range ws.authViews {
		n, ok := ws.colls[id]
		if !ok {
			notify = append(notify, invalidate(h, workspace.ReasonCollectionDoesNotExist))
			delete(ws.authViews, id)
			continue
		}
		if changed(h, authHeadersViewValue(n)) {
			update(set(h, authHeadersViewValue(n)))
		}
	}

	for id, h := range ws.jsonViews {
		n, ok := ws.colls[id]
		if !ok {
			notify = append(notify, invalidate(h, workspace.ReasonCollectionDoesNotExist))
			delete(ws.jsonViews, id)
			continue
		}
		if changed(h, jsonViewValue(n)) {
			update(set(h, jsonViewValue(n)))
		}
	}

	for h, query := range ws.searchViews {
		if changed(h, ws.searchViewValue(query)) {
			update(set(h, ws.searchViewValue(query)))
		}
	}

	return notify
}

// drop invalidates every handle and view issued for the workspace. Used when
// the workspace disappeared from the store.
func (ws *wsState) drop() []func() {
	ws.gen.Add(1)
	notify := []func(){invalidate(ws.handle, workspace.ReasonWorkspaceDoesNotExist)}
	for _, h := range ws.collHandles {
		notify = append(notify, invalidate(h, workspace.ReasonWorkspaceDoesNotExist))
	}
	for _, h := range ws.reqHandles {
		notify = append(notify, invalidate(h, workspace.ReasonWorkspaceDoesNotExist))
	}
	if ws.rootView != nil {
		notify = append(notify, invalidate(ws.rootView, workspace.ReasonWorkspaceDoesNotExist))
	}
	for _, h := range ws.childViews {
		notify = append(notify, invalidate(h, workspace.ReasonWorkspaceDoesNotExist))
	}
	for _, h := range ws.authViews {
		notify = append(notify, invalidate(h, workspace.ReasonWorkspaceDoesNotExist))
	}
	for _, h := range ws.jsonViews {
		notify = append(notify, invalidate(h, workspace.ReasonWorkspaceDoesNotExist))
	}
	for h := range ws.searchViews {
		notify = append(notify, invalidate(h, workspace.ReasonWorkspaceDoesNotExist))
	}
	return notify
}

func changed[T any](h *handle.Handle[T], v T) bool {
	cur, ok := h.Value()
	return !ok || !reflect.DeepEqual(cur, v)
}

func set[T any](h *handle.Handle[T], v T) func() bool {
	return func() bool {
		h.Set(v)
		return true
	}
}

func invalidate[T any](h *handle.Handle[T], reason string) func() {
	return func() { h.Invalidate(reason) }
}

func deliver(notify []func()) {
	for _, fn := range notify {
		fn()
	}
}
