// Package events publishes change events for workspace mutations.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type identifies what changed.
type Type string

const (
	TypeWorkspaceCreated      Type = "workspace.created"
	TypeCollectionCreated     Type = "collection.created"
	TypeCollectionUpdated     Type = "collection.updated"
	TypeCollectionRemoved     Type = "collection.removed"
	TypeCollectionReordered   Type = "collection.reordered"
	TypeCollectionMoved       Type = "collection.moved"
	TypeRequestCreated        Type = "request.created"
	TypeRequestUpdated        Type = "request.updated"
	TypeRequestRemoved        Type = "request.removed"
	TypeRequestReordered      Type = "request.reordered"
	TypeRequestMoved          Type = "request.moved"
	TypeCollectionsImported   Type = "collections.imported"
	TypeWorkspaceActivated    Type = "workspace.activated"
)

// Event describes a single successful mutation.
type Event struct {
	ID           string    `json:"id"`
	Type         Type      `json:"type"`
	ProviderID   string    `json:"providerID"`
	WorkspaceID  string    `json:"workspaceID"`
	CollectionID string    `json:"collectionID,omitempty"`
	RequestID    string    `json:"requestID,omitempty"`
	At           time.Time `json:"at"`
}

// New returns an event with a fresh ID and the current time.
func New(t Type, providerID, workspaceID string) Event {
	return Event{
		ID:          uuid.New().String(),
		Type:        t,
		ProviderID:  providerID,
		WorkspaceID: workspaceID,
		At:          time.Now().UTC(),
	}
}

// Key is the partition key. Events for one workspace share a key so they
// stay ordered.
func (e Event) Key() string {
	if e.WorkspaceID != "" {
		return "ws:" + e.ProviderID + "/" + e.WorkspaceID
	}
	return e.ID
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}
