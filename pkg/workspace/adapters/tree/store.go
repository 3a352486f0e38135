package tree

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesgeorge007/postwoman/pkg/workspace"
)

// Snapshot is the persisted form of one workspace.
type Snapshot struct {
	WorkspaceID string                      `json:"workspaceID"`
	Name        string                      `json:"name"`
	Version     int64                       `json:"version"`
	Collections []*workspace.RESTCollection `json:"collections"`
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Collections = make([]*workspace.RESTCollection, len(s.Collections))
	for i, c := range s.Collections {
		out.Collections[i] = c.Clone()
	}
	return &out
}

// WorkspaceInfo is a workspace listing entry.
type WorkspaceInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Store persists workspace snapshots.
//
// Load returns an error wrapping workspace.ErrWorkspaceNotFound for unknown
// IDs. Save returns an error wrapping workspace.ErrConflict unless the
// stored version is exactly snap.Version-1 (or absent and snap.Version is
// 1).
type Store interface {
	ListWorkspaces(ctx context.Context) ([]WorkspaceInfo, error)
	Load(ctx context.Context, workspaceID string) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// CheckVersion enforces the Save version rule. current is nil when nothing
// is stored yet.
func CheckVersion(current, next *Snapshot) error {
	var have int64
	if current != nil {
		have = current.Version
	}
	if next.Version != have+1 {
		return fmt.Errorf("%w: workspace %s is at version %d, got %d",
			workspace.ErrConflict, next.WorkspaceID, have, next.Version)
	}
	return nil
}

// SortInfos orders a listing by name, then ID.
func SortInfos(infos []WorkspaceInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Name != infos[j].Name {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].ID < infos[j].ID
	})
}

// MemoryStore keeps snapshots in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*Snapshot)}
}

func (m *MemoryStore) ListWorkspaces(ctx context.Context) ([]WorkspaceInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]WorkspaceInfo, 0, len(m.snaps))
	for _, s := range m.snaps {
		infos = append(infos, WorkspaceInfo{ID: s.WorkspaceID, Name: s.Name})
	}
	SortInfos(infos)
	return infos, nil
}

func (m *MemoryStore) Load(ctx context.Context, workspaceID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.snaps[workspaceID]
	if !ok {
		return nil, workspace.NotFoundf(workspace.ErrWorkspaceNotFound, workspaceID)
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := CheckVersion(m.snaps[snap.WorkspaceID], snap); err != nil {
		return err
	}
	m.snaps[snap.WorkspaceID] = snap.Clone()
	return nil
}
