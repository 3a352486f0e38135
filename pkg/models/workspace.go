package models

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Workspace is a stored workspace. Version increases by one on every save.
type Workspace struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"not null"`
	Version   int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Collection is one collection of a workspace tree. Root collections have
// an empty ParentID. Position orders siblings.
type Collection struct {
	WorkspaceID string `gorm:"primaryKey;size:64"`
	ID          string `gorm:"primaryKey;size:64"`
	ParentID    string `gorm:"size:64;index"`
	Position    int    `gorm:"not null"`
	Name        string `gorm:"not null"`

	// Auth and Headers hold the collection's auth and header list as JSON.
	Auth    JSON `gorm:"type:jsonb"`
	Headers JSON `gorm:"type:jsonb"`
}

// Request is one request of a workspace tree. Data holds the full request
// as JSON; Name and Method are copied out for querying.
type Request struct {
	WorkspaceID  string `gorm:"primaryKey;size:64"`
	ID           string `gorm:"primaryKey;size:64"`
	CollectionID string `gorm:"size:64;index;not null"`
	Position     int    `gorm:"not null"`
	Name         string `gorm:"not null"`
	Method       string `gorm:"size:16;not null"`
	Data         JSON   `gorm:"type:jsonb"`
}

// ErrVersionMismatch is returned when a workspace is not at the expected
// version.
var ErrVersionMismatch = errors.New("workspace version mismatch")

// Create creates a new workspace. It fails with ErrVersionMismatch if the
// ID is taken.
func (w *Workspace) Create(db *gorm.DB) error {
	if err := validation.ValidateStruct(w,
		validation.Field(&w.ID, validation.Required),
		validation.Field(&w.Version, validation.Required),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	res := db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(w)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionMismatch
	}
	return nil
}

// Get retrieves a workspace by ID.
func (w *Workspace) Get(db *gorm.DB, id string) error {
	if err := validation.Validate(id, validation.Required); err != nil {
		return err
	}

	return db.
		Where("id = ?", id).
		First(w).
		Error
}

// Advance moves the workspace from version from to w.Version, updating its
// name. It fails with ErrVersionMismatch if the stored version is not from.
func (w *Workspace) Advance(db *gorm.DB, from int64) error {
	if err := validation.ValidateStruct(w,
		validation.Field(&w.ID, validation.Required),
	); err != nil {
		return err
	}

	res := db.
		Model(&Workspace{}).
		Where("id = ? AND version = ?", w.ID, from).
		Updates(map[string]any{
			"name":       w.Name,
			"version":    w.Version,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionMismatch
	}
	return nil
}

// GetAllWorkspaces returns all workspaces ordered by name.
func GetAllWorkspaces(db *gorm.DB) ([]Workspace, error) {
	var ws []Workspace
	if err := db.
		Order("name, id").
		Find(&ws).
		Error; err != nil {
		return nil, err
	}
	return ws, nil
}

// GetWorkspaceTree returns the collections and requests of a workspace in
// position order.
func GetWorkspaceTree(db *gorm.DB, workspaceID string) ([]Collection, []Request, error) {
	if err := validation.Validate(workspaceID, validation.Required); err != nil {
		return nil, nil, err
	}

	var colls []Collection
	if err := db.
		Where("workspace_id = ?", workspaceID).
		Order("position").
		Find(&colls).
		Error; err != nil {
		return nil, nil, fmt.Errorf("error getting collections: %w", err)
	}

	var reqs []Request
	if err := db.
		Where("workspace_id = ?", workspaceID).
		Order("position").
		Find(&reqs).
		Error; err != nil {
		return nil, nil, fmt.Errorf("error getting requests: %w", err)
	}
	return colls, reqs, nil
}

// ReplaceWorkspaceTree replaces every collection and request of a
// workspace. Run it inside the transaction that advanced the version.
func ReplaceWorkspaceTree(db *gorm.DB, workspaceID string, colls []Collection, reqs []Request) error {
	if err := db.
		Where("workspace_id = ?", workspaceID).
		Delete(&Request{}).
		Error; err != nil {
		return fmt.Errorf("error deleting requests: %w", err)
	}
	if err := db.
		Where("workspace_id = ?", workspaceID).
		Delete(&Collection{}).
		Error; err != nil {
		return fmt.Errorf("error deleting collections: %w", err)
	}

	if len(colls) > 0 {
		if err := db.CreateInBatches(colls, 100).Error; err != nil {
			return fmt.Errorf("error creating collections: %w", err)
		}
	}
	if len(reqs) > 0 {
		if err := db.CreateInBatches(reqs, 100).Error; err != nil {
			return fmt.Errorf("error creating requests: %w", err)
		}
	}
	return nil
}
