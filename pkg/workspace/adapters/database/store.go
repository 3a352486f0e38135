// Package database stores workspaces as normalized rows through gorm.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/jamesgeorge007/postwoman/pkg/models"
	"github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
)

// Store persists workspace trees in the workspaces, collections and
// requests tables.
type Store struct {
	db     *gorm.DB
	logger hclog.Logger
}

var _ tree.Store = (*Store)(nil)

// NewStore creates a store and migrates its tables.
func NewStore(db *gorm.DB, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := db.AutoMigrate(models.ModelsToAutoMigrate()...); err != nil {
		return nil, fmt.Errorf("error migrating workspace tables: %w", err)
	}
	return &Store{db: db, logger: logger.Named("database-store")}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) ListWorkspaces(ctx context.Context) ([]tree.WorkspaceInfo, error) {
	rows, err := models.GetAllWorkspaces(s.db.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("error listing workspaces: %w", err)
	}
	infos := make([]tree.WorkspaceInfo, 0, len(rows))
	for _, w := range rows {
		infos = append(infos, tree.WorkspaceInfo{ID: w.ID, Name: w.Name})
	}
	tree.SortInfos(infos)
	return infos, nil
}

func (s *Store) Load(ctx context.Context, workspaceID string) (*tree.Snapshot, error) {
	var snap *tree.Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var w models.Workspace
		if err := w.Get(tx, workspaceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return workspace.NotFoundf(workspace.ErrWorkspaceNotFound, workspaceID)
			}
			return fmt.Errorf("error getting workspace: %w", err)
		}

		colls, reqs, err := models.GetWorkspaceTree(tx, workspaceID)
		if err != nil {
			return err
		}
		collections, err := assemble(colls, reqs)
		if err != nil {
			return fmt.Errorf("error assembling workspace %s: %w", workspaceID, err)
		}

		snap = &tree.Snapshot{
			WorkspaceID: w.ID,
			Name:        w.Name,
			Version:     w.Version,
			Collections: collections,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) Save(ctx context.Context, snap *tree.Snapshot) error {
	colls, reqs, err := flatten(snap)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w := models.Workspace{ID: snap.WorkspaceID, Name: snap.Name, Version: snap.Version}
		var err error
		if snap.Version == 1 {
			err = w.Create(tx)
		} else {
			err = w.Advance(tx, snap.Version-1)
		}
		if err != nil {
			return err
		}
		return models.ReplaceWorkspaceTree(tx, snap.WorkspaceID, colls, reqs)
	})
	if errors.Is(err, models.ErrVersionMismatch) {
		return s.conflict(ctx, snap)
	}
	if err != nil {
		return fmt.Errorf("error saving workspace %s: %w", snap.WorkspaceID, err)
	}

	s.logger.Debug("saved workspace", "workspace", snap.WorkspaceID, "version", snap.Version,
		"collections", len(colls), "requests", len(reqs))
	return nil
}

// conflict builds the error for a rejected save.
func (s *Store) conflict(ctx context.Context, snap *tree.Snapshot) error {
	var current *tree.Snapshot
	var w models.Workspace
	if err := w.Get(s.db.WithContext(ctx), snap.WorkspaceID); err == nil {
		current = &tree.Snapshot{WorkspaceID: w.ID, Version: w.Version}
	}
	if err := tree.CheckVersion(current, snap); err != nil {
		return err
	}
	// The row moved again after the failed update.
	return fmt.Errorf("%w: workspace %s changed concurrently", workspace.ErrConflict, snap.WorkspaceID)
}

// flatten turns a snapshot into rows, numbering siblings in order.
func flatten(snap *tree.Snapshot) ([]models.Collection, []models.Request, error) {
	var colls []models.Collection
	var reqs []models.Request

	var walk func(c *workspace.RESTCollection, parentID string, pos int) error
	walk = func(c *workspace.RESTCollection, parentID string, pos int) error {
		auth, err := models.MarshalToJSON(c.Auth)
		if err != nil {
			return err
		}
		headers, err := models.MarshalToJSON(c.Headers)
		if err != nil {
			return err
		}
		colls = append(colls, models.Collection{
			WorkspaceID: snap.WorkspaceID,
			ID:          c.ID,
			ParentID:    parentID,
			Position:    pos,
			Name:        c.Name,
			Auth:        auth,
			Headers:     headers,
		})

		for i, r := range c.Requests {
			data, err := models.MarshalToJSON(r)
			if err != nil {
				return err
			}
			reqs = append(reqs, models.Request{
				WorkspaceID:  snap.WorkspaceID,
				ID:           r.ID,
				CollectionID: c.ID,
				Position:     i,
				Name:         r.Name,
				Method:       r.Method,
				Data:         data,
			})
		}
		for i, f := range c.Folders {
			if err := walk(f, c.ID, i); err != nil {
				return err
			}
		}
		return nil
	}

	for i, c := range snap.Collections {
		if err := walk(c, "", i); err != nil {
			return nil, nil, fmt.Errorf("error encoding collection %q: %w", c.Name, err)
		}
	}
	return colls, reqs, nil
}

// assemble rebuilds the collection trees from rows sorted by position.
func assemble(colls []models.Collection, reqs []models.Request) ([]*workspace.RESTCollection, error) {
	byID := make(map[string]*workspace.RESTCollection, len(colls))
	for _, row := range colls {
		c := &workspace.RESTCollection{
			Version:  workspace.CollectionFormatVersion,
			ID:       row.ID,
			Name:     row.Name,
			Folders:  []*workspace.RESTCollection{},
			Requests: []*workspace.RESTRequest{},
			Headers:  []workspace.KeyValue{},
		}
		if err := row.Auth.Decode(&c.Auth); err != nil {
			return nil, fmt.Errorf("collection %s auth: %w", row.ID, err)
		}
		if err := row.Headers.Decode(&c.Headers); err != nil {
			return nil, fmt.Errorf("collection %s headers: %w", row.ID, err)
		}
		byID[row.ID] = c
	}

	roots := []*workspace.RESTCollection{}
	for _, row := range colls {
		c := byID[row.ID]
		if row.ParentID == "" {
			roots = append(roots, c)
			continue
		}
		parent, ok := byID[row.ParentID]
		if !ok {
			return nil, fmt.Errorf("collection %s has unknown parent %s", row.ID, row.ParentID)
		}
		parent.Folders = append(parent.Folders, c)
	}

	for _, row := range reqs {
		parent, ok := byID[row.CollectionID]
		if !ok {
			return nil, fmt.Errorf("request %s has unknown collection %s", row.ID, row.CollectionID)
		}
		var r workspace.RESTRequest
		if err := row.Data.Decode(&r); err != nil {
			return nil, fmt.Errorf("request %s: %w", row.ID, err)
		}
		r.ID = row.ID
		parent.Requests = append(parent.Requests, &r)
	}
	return roots, nil
}
