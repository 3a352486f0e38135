package workspace

import (
	"context"

	"github.com/jamesgeorge007/postwoman/pkg/handle"
)

// Handle aliases used across providers and the service.
type (
	WorkspaceHandle  = *handle.Handle[Workspace]
	CollectionHandle = *handle.Handle[Collection]
	RequestHandle    = *handle.Handle[Request]
)

// Invalidation reasons set on handles whose object no longer exists.
const (
	ReasonWorkspaceDoesNotExist  = "WORKSPACE_DOES_NOT_EXIST"
	ReasonCollectionDoesNotExist = "COLLECTION_DOES_NOT_EXIST"
	ReasonRequestDoesNotExist    = "REQUEST_DOES_NOT_EXIST"
)

// ===================================================================
// PROVIDER INTERFACES
// ===================================================================
//
// A provider owns a set of workspaces and every handle it issues for
// objects inside them. Providers receive handles they issued themselves;
// the service guarantees that by routing on the handle's ProviderID.
//
// Providers keep issued handles current: values are updated after
// mutations and handles for removed objects are invalidated with one of
// the Reason* constants.

// WorkspaceOps resolves workspaces and the objects inside them.
type WorkspaceOps interface {
	// CreateWorkspace creates an empty workspace.
	CreateWorkspace(ctx context.Context, name string) (WorkspaceHandle, error)

	// ListWorkspaces lists the workspaces this provider owns.
	ListWorkspaces(ctx context.Context) ([]Workspace, error)

	// GetWorkspaceHandle returns the handle for a workspace ID.
	GetWorkspaceHandle(ctx context.Context, workspaceID string) (WorkspaceHandle, error)

	// GetCollectionHandle returns the handle for a collection inside ws.
	GetCollectionHandle(ctx context.Context, ws WorkspaceHandle, collectionID string) (CollectionHandle, error)

	// GetRequestHandle returns the handle for a request inside ws.
	GetRequestHandle(ctx context.Context, ws WorkspaceHandle, requestID string) (RequestHandle, error)
}

// CollectionOps mutates REST collections.
type CollectionOps interface {
	CreateRESTRootCollection(ctx context.Context, ws WorkspaceHandle, c NewCollection) (CollectionHandle, error)
	CreateRESTChildCollection(ctx context.Context, parent CollectionHandle, c NewCollection) (CollectionHandle, error)
	UpdateRESTCollection(ctx context.Context, c CollectionHandle, update CollectionUpdate) error
	RemoveRESTCollection(ctx context.Context, c CollectionHandle) error

	// ReorderRESTCollection moves c before its sibling
	// destinationCollectionID, or to the end when that is empty.
	ReorderRESTCollection(ctx context.Context, c CollectionHandle, destinationCollectionID string) error

	// MoveRESTCollection re-parents c under destinationCollectionID, or to
	// the root when that is empty.
	MoveRESTCollection(ctx context.Context, c CollectionHandle, destinationCollectionID string) error
}

// RequestOps mutates REST requests.
type RequestOps interface {
	CreateRESTRequest(ctx context.Context, parent CollectionHandle, r *RESTRequest) (RequestHandle, error)
	UpdateRESTRequest(ctx context.Context, r RequestHandle, updated *RESTRequest) error
	RemoveRESTRequest(ctx context.Context, r RequestHandle) error

	// ReorderRESTRequest moves r into destinationCollectionID before
	// destinationRequestID, or to the end when that is empty.
	ReorderRESTRequest(ctx context.Context, r RequestHandle, destinationCollectionID, destinationRequestID string) error

	// MoveRESTRequest appends r to destinationCollectionID.
	MoveRESTRequest(ctx context.Context, r RequestHandle, destinationCollectionID string) error
}

// TransferOps imports and exports collection trees.
type TransferOps interface {
	ImportRESTCollections(ctx context.Context, ws WorkspaceHandle, collections []*RESTCollection) ([]CollectionHandle, error)
	ExportRESTCollections(ctx context.Context, ws WorkspaceHandle) ([]*RESTCollection, error)
	ExportRESTCollection(ctx context.Context, c CollectionHandle) (*RESTCollection, error)
}

// ViewOps returns live views. View handles are refreshed after every
// mutation of the workspace they belong to.
type ViewOps interface {
	GetRESTRootCollectionView(ctx context.Context, ws WorkspaceHandle) (*handle.Handle[RootCollectionView], error)
	GetRESTCollectionChildrenView(ctx context.Context, c CollectionHandle) (*handle.Handle[CollectionChildrenView], error)
	GetRESTCollectionLevelAuthHeadersView(ctx context.Context, c CollectionHandle) (*handle.Handle[CollectionLevelAuthHeadersView], error)

	// GetRESTSearchResultsView returns a search session. Ending the handle
	// releases it.
	GetRESTSearchResultsView(ctx context.Context, ws WorkspaceHandle, query string) (*handle.Handle[SearchResultsView], error)

	GetRESTCollectionJSONView(ctx context.Context, c CollectionHandle) (*handle.Handle[CollectionJSONView], error)
}

// Provider is the full contract a workspace backend implements.
type Provider interface {
	// ID is the unique provider ID embedded in every handle value.
	ID() string

	// Decor describes the provider.
	Decor() Decor

	WorkspaceOps
	CollectionOps
	RequestOps
	TransferOps
	ViewOps
}
