package service

import (
	"context"

	"github.com/jamesgeorge007/postwoman/pkg/events"
	"github.com/jamesgeorge007/postwoman/pkg/handle"
	"github.com/jamesgeorge007/postwoman/pkg/workspace"
)

func collectionEvent(t events.Type, c workspace.Collection) events.Event {
	e := events.New(t, c.ProviderID, c.WorkspaceID)
	e.CollectionID = c.CollectionID
	return e
}

func requestEvent(t events.Type, r workspace.Request) events.Event {
	e := events.New(t, r.ProviderID, r.WorkspaceID)
	e.CollectionID = r.CollectionID
	e.RequestID = r.RequestID
	return e
}

// ===================================================================
// COLLECTIONS
// ===================================================================

// CreateRESTRootCollection creates a root collection in ws.
func (s *Service) CreateRESTRootCollection(ctx context.Context, ws workspace.WorkspaceHandle, c workspace.NewCollection) (workspace.CollectionHandle, error) {
	const op = "CreateRESTRootCollection"
	p, _, err := s.workspace(op, ws)
	if err != nil {
		return nil, err
	}
	h, err := p.CreateRESTRootCollection(ctx, ws, c)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	if v, ok := h.Value(); ok {
		s.publish(ctx, collectionEvent(events.TypeCollectionCreated, v))
	}
	return h, nil
}

// CreateRESTChildCollection creates a collection under parent.
func (s *Service) CreateRESTChildCollection(ctx context.Context, parent workspace.CollectionHandle, c workspace.NewCollection) (workspace.CollectionHandle, error) {
	const op = "CreateRESTChildCollection"
	p, _, err := s.collection(op, parent)
	if err != nil {
		return nil, err
	}
	h, err := p.CreateRESTChildCollection(ctx, parent, c)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	if v, ok := h.Value(); ok {
		s.publish(ctx, collectionEvent(events.TypeCollectionCreated, v))
	}
	return h, nil
}

// UpdateRESTCollection changes the name, auth or headers of c.
func (s *Service) UpdateRESTCollection(ctx context.Context, c workspace.CollectionHandle, update workspace.CollectionUpdate) error {
	const op = "UpdateRESTCollection"
	p, v, err := s.collection(op, c)
	if err != nil {
		return err
	}
	if err := p.UpdateRESTCollection(ctx, c, update); err != nil {
		return workspace.ProviderError(op, p.ID(), err)
	}
	s.publish(ctx, collectionEvent(events.TypeCollectionUpdated, v))
	return nil
}

// RemoveRESTCollection removes c with everything inside it.
func (s *Service) RemoveRESTCollection(ctx context.Context, c workspace.CollectionHandle) error {
	const op = "RemoveRESTCollection"
	p, v, err := s.collection(op, c)
	if err != nil {
		return err
	}
	if err := p.RemoveRESTCollection(ctx, c); err != nil {
		return workspace.ProviderError(op, p.ID(), err)
	}
	s.publish(ctx, collectionEvent(events.TypeCollectionRemoved, v))
	return nil
}

// ReorderRESTCollection moves c before the sibling destinationCollectionID,
// or to the end of its level when that is empty.
func (s *Service) ReorderRESTCollection(ctx context.Context, c workspace.CollectionHandle, destinationCollectionID string) error {
	const op = "ReorderRESTCollection"
	p, v, err := s.collection(op, c)
	if err != nil {
		return err
	}
	if err := p.ReorderRESTCollection(ctx, c, destinationCollectionID); err != nil {
		return workspace.ProviderError(op, p.ID(), err)
	}
	s.publish(ctx, collectionEvent(events.TypeCollectionReordered, v))
	return nil
}

// MoveRESTCollection re-parents c under destinationCollectionID, or to the
// root when that is empty. The destination is resolved in c's provider.
func (s *Service) MoveRESTCollection(ctx context.Context, c workspace.CollectionHandle, destinationCollectionID string) error {
	const op = "MoveRESTCollection"
	p, v, err := s.collection(op, c)
	if err != nil {
		return err
	}
	if err := p.MoveRESTCollection(ctx, c, destinationCollectionID); err != nil {
		return workspace.ProviderError(op, p.ID(), err)
	}
	s.publish(ctx, collectionEvent(events.TypeCollectionMoved, v))
	return nil
}

// ===================================================================
// REQUESTS
// ===================================================================

// CreateRESTRequest creates r inside parent.
func (s *Service) CreateRESTRequest(ctx context.Context, parent workspace.CollectionHandle, r *workspace.RESTRequest) (workspace.RequestHandle, error) {
	const op = "CreateRESTRequest"
	p, _, err := s.collection(op, parent)
	if err != nil {
		return nil, err
	}
	h, err := p.CreateRESTRequest(ctx, parent, r)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	if v, ok := h.Value(); ok {
		s.publish(ctx, requestEvent(events.TypeRequestCreated, v))
	}
	return h, nil
}

// UpdateRESTRequest replaces the stored request behind r.
func (s *Service) UpdateRESTRequest(ctx context.Context, r workspace.RequestHandle, updated *workspace.RESTRequest) error {
	const op = "UpdateRESTRequest"
	p, v, err := s.request(op, r)
	if err != nil {
		return err
	}
	if err := p.UpdateRESTRequest(ctx, r, updated); err != nil {
		return workspace.ProviderError(op, p.ID(), err)
	}
	s.publish(ctx, requestEvent(events.TypeRequestUpdated, v))
	return nil
}

// RemoveRESTRequest removes r.
func (s *Service) RemoveRESTRequest(ctx context.Context, r workspace.RequestHandle) error {
	const op = "RemoveRESTRequest"
	p, v, err := s.request(op, r)
	if err != nil {
		return err
	}
	if err := p.RemoveRESTRequest(ctx, r); err != nil {
		return workspace.ProviderError(op, p.ID(), err)
	}
	s.publish(ctx, requestEvent(events.TypeRequestRemoved, v))
	return nil
}

// ReorderRESTRequest moves r into destinationCollectionID before
// destinationRequestID, or to the end when that is empty.
func (s *Service) ReorderRESTRequest(ctx context.Context, r workspace.RequestHandle, destinationCollectionID, destinationRequestID string) error {
	const op = "ReorderRESTRequest"
	p, v, err := s.request(op, r)
	if err != nil {
		return err
	}
	if err := p.ReorderRESTRequest(ctx, r, destinationCollectionID, destinationRequestID); err != nil {
		return workspace.ProviderError(op, p.ID(), err)
	}
	s.publish(ctx, requestEvent(events.TypeRequestReordered, v))
	return nil
}

// MoveRESTRequest appends r to destinationCollectionID.
func (s *Service) MoveRESTRequest(ctx context.Context, r workspace.RequestHandle, destinationCollectionID string) error {
	const op = "MoveRESTRequest"
	p, v, err := s.request(op, r)
	if err != nil {
		return err
	}
	if err := p.MoveRESTRequest(ctx, r, destinationCollectionID); err != nil {
		return workspace.ProviderError(op, p.ID(), err)
	}
	s.publish(ctx, requestEvent(events.TypeRequestMoved, v))
	return nil
}

// ===================================================================
// TRANSFER
// ===================================================================

// ImportRESTCollections appends collections to the root of ws.
func (s *Service) ImportRESTCollections(ctx context.Context, ws workspace.WorkspaceHandle, collections []*workspace.RESTCollection) ([]workspace.CollectionHandle, error) {
	const op = "ImportRESTCollections"
	p, v, err := s.workspace(op, ws)
	if err != nil {
		return nil, err
	}
	hs, err := p.ImportRESTCollections(ctx, ws, collections)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	s.publish(ctx, events.New(events.TypeCollectionsImported, v.ProviderID, v.WorkspaceID))
	return hs, nil
}

// ExportRESTCollections exports every root collection of ws.
func (s *Service) ExportRESTCollections(ctx context.Context, ws workspace.WorkspaceHandle) ([]*workspace.RESTCollection, error) {
	const op = "ExportRESTCollections"
	p, _, err := s.workspace(op, ws)
	if err != nil {
		return nil, err
	}
	out, err := p.ExportRESTCollections(ctx, ws)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	return out, nil
}

// ExportRESTCollection exports c with its descendants.
func (s *Service) ExportRESTCollection(ctx context.Context, c workspace.CollectionHandle) (*workspace.RESTCollection, error) {
	const op = "ExportRESTCollection"
	p, _, err := s.collection(op, c)
	if err != nil {
		return nil, err
	}
	out, err := p.ExportRESTCollection(ctx, c)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	return out, nil
}

// ===================================================================
// VIEWS
// ===================================================================

// RootCollectionView returns the live list of root collections of ws.
func (s *Service) RootCollectionView(ctx context.Context, ws workspace.WorkspaceHandle) (*handle.Handle[workspace.RootCollectionView], error) {
	const op = "RootCollectionView"
	p, _, err := s.workspace(op, ws)
	if err != nil {
		return nil, err
	}
	h, err := p.GetRESTRootCollectionView(ctx, ws)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	return h, nil
}

// CollectionChildrenView returns the live children of c.
func (s *Service) CollectionChildrenView(ctx context.Context, c workspace.CollectionHandle) (*handle.Handle[workspace.CollectionChildrenView], error) {
	const op = "CollectionChildrenView"
	p, _, err := s.collection(op, c)
	if err != nil {
		return nil, err
	}
	h, err := p.GetRESTCollectionChildrenView(ctx, c)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	return h, nil
}

// CollectionLevelAuthHeadersView returns the auth and headers requests
// inside c inherit.
func (s *Service) CollectionLevelAuthHeadersView(ctx context.Context, c workspace.CollectionHandle) (*handle.Handle[workspace.CollectionLevelAuthHeadersView], error) {
	const op = "CollectionLevelAuthHeadersView"
	p, _, err := s.collection(op, c)
	if err != nil {
		return nil, err
	}
	h, err := p.GetRESTCollectionLevelAuthHeadersView(ctx, c)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	return h, nil
}

// SearchResultsView opens a search session over ws. End the returned
// handle to release it.
func (s *Service) SearchResultsView(ctx context.Context, ws workspace.WorkspaceHandle, query string) (*handle.Handle[workspace.SearchResultsView], error) {
	const op = "SearchResultsView"
	p, _, err := s.workspace(op, ws)
	if err != nil {
		return nil, err
	}
	h, err := p.GetRESTSearchResultsView(ctx, ws, query)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	return h, nil
}

// CollectionJSONView returns the live exported JSON of c.
func (s *Service) CollectionJSONView(ctx context.Context, c workspace.CollectionHandle) (*handle.Handle[workspace.CollectionJSONView], error) {
	const op = "CollectionJSONView"
	p, _, err := s.collection(op, c)
	if err != nil {
		return nil, err
	}
	h, err := p.GetRESTCollectionJSONView(ctx, c)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	return h, nil
}
