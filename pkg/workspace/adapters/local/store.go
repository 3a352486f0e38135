// Package local stores workspaces as JSON files in a directory.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
)

const fileExt = ".json"

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store keeps one <workspace-id>.json file per workspace under a root
// directory. Writes go through a temporary file and a rename.
type Store struct {
	fs     afero.Fs
	root   string
	logger hclog.Logger

	// Serializes the read-check-write in Save.
	mu sync.Mutex
}

var _ tree.Store = (*Store)(nil)

// NewStore creates a store rooted at cfg.Path on fsys, creating the
// directory if needed.
func NewStore(fsys afero.Fs, cfg *Config, logger hclog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid local store configuration: %w", err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := fsys.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("error creating workspace directory: %w", err)
	}
	return &Store{
		fs:     fsys,
		root:   cfg.Path,
		logger: logger.Named("local-store"),
	}, nil
}

func (s *Store) path(workspaceID string) (string, error) {
	if err := validation.Validate(workspaceID, validation.Required, validation.Match(validID)); err != nil {
		return "", fmt.Errorf("invalid workspace ID %q: %w", workspaceID, err)
	}
	return filepath.Join(s.root, workspaceID+fileExt), nil
}

func (s *Store) ListWorkspaces(ctx context.Context) ([]tree.WorkspaceInfo, error) {
	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, fmt.Errorf("error reading workspace directory: %w", err)
	}

	infos := []tree.WorkspaceInfo{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), fileExt)
		snap, err := s.Load(ctx, id)
		if err != nil {
			s.logger.Warn("skipping unreadable workspace file", "file", e.Name(), "error", err)
			continue
		}
		infos = append(infos, tree.WorkspaceInfo{ID: snap.WorkspaceID, Name: snap.Name})
	}
	tree.SortInfos(infos)
	return infos, nil
}

func (s *Store) Load(ctx context.Context, workspaceID string) (*tree.Snapshot, error) {
	path, err := s.path(workspaceID)
	if err != nil {
		return nil, err
	}
	return s.read(path, workspaceID)
}

func (s *Store) read(path, workspaceID string) (*tree.Snapshot, error) {
	data, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, workspace.NotFoundf(workspace.ErrWorkspaceNotFound, workspaceID)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading workspace file: %w", err)
	}

	var snap tree.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("error decoding workspace file %s: %w", path, err)
	}
	if snap.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("workspace file %s holds workspace %q", path, snap.WorkspaceID)
	}
	return &snap, nil
}

func (s *Store) Save(ctx context.Context, snap *tree.Snapshot) error {
	path, err := s.path(snap.WorkspaceID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(path, snap.WorkspaceID)
	if err != nil && !errors.Is(err, workspace.ErrWorkspaceNotFound) {
		return err
	}
	if err := tree.CheckVersion(current, snap); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding workspace: %w", err)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("error writing workspace file: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("error replacing workspace file: %w", err)
	}

	s.logger.Debug("saved workspace", "workspace", snap.WorkspaceID, "version", snap.Version)
	return nil
}
