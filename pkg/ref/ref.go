// Package ref provides textual references to workspace objects.
//
// A handle lives in memory; a Ref is what a CLI flag, a log line or an
// event key carries instead. It names the provider, the workspace and
// optionally a collection or request inside it.
//
//	personal/default                       - a workspace
//	personal/default/c/6f1c...             - a collection
//	personal/default/r/0a9e...             - a request
package ref

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind is the type of object a Ref points at.
type Kind string

const (
	KindWorkspace  Kind = "workspace"
	KindCollection Kind = "collection"
	KindRequest    Kind = "request"
)

// Ref points at a workspace object.
type Ref struct {
	ProviderID   string
	WorkspaceID  string
	CollectionID string
	RequestID    string
}

// NewID returns a fresh object identifier.
func NewID() string {
	return uuid.NewString()
}

// Workspace returns a reference to a workspace.
func Workspace(providerID, workspaceID string) Ref {
	return Ref{ProviderID: providerID, WorkspaceID: workspaceID}
}

// Collection returns a reference to a collection.
func Collection(providerID, workspaceID, collectionID string) Ref {
	return Ref{ProviderID: providerID, WorkspaceID: workspaceID, CollectionID: collectionID}
}

// Request returns a reference to a request.
func Request(providerID, workspaceID, requestID string) Ref {
	return Ref{ProviderID: providerID, WorkspaceID: workspaceID, RequestID: requestID}
}

// Kind reports what the reference points at.
func (r Ref) Kind() Kind {
	switch {
	case r.RequestID != "":
		return KindRequest
	case r.CollectionID != "":
		return KindCollection
	default:
		return KindWorkspace
	}
}

// IsZero returns true if no field is set.
func (r Ref) IsZero() bool {
	return r == Ref{}
}

// String returns the canonical form.
func (r Ref) String() string {
	if r.IsZero() {
		return ""
	}
	s := r.ProviderID + "/" + r.WorkspaceID
	switch r.Kind() {
	case KindCollection:
		s += "/c/" + r.CollectionID
	case KindRequest:
		s += "/r/" + r.RequestID
	}
	return s
}

// Parse parses the canonical form produced by String.
func Parse(s string) (Ref, error) {
	if s == "" {
		return Ref{}, fmt.Errorf("reference cannot be empty")
	}

	parts := strings.Split(s, "/")
	for _, p := range parts {
		if p == "" {
			return Ref{}, fmt.Errorf("invalid reference %q: empty segment", s)
		}
	}

	switch len(parts) {
	case 2:
		return Workspace(parts[0], parts[1]), nil
	case 4:
		switch parts[2] {
		case "c":
			return Collection(parts[0], parts[1], parts[3]), nil
		case "r":
			return Request(parts[0], parts[1], parts[3]), nil
		}
		return Ref{}, fmt.Errorf("invalid reference %q: unknown kind %q (expected 'c' or 'r')", s, parts[2])
	default:
		return Ref{}, fmt.Errorf(
			"invalid reference format (expected 'provider/workspace[/c|r/id]'): %s", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Ref) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Ref) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*r = Ref{}
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
