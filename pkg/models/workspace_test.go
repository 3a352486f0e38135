package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(ModelsToAutoMigrate()...))
	return db
}

func TestWorkspace_CreateGetAdvance(t *testing.T) {
	db := setupTestDB(t)

	w := Workspace{ID: "w1", Name: "Personal", Version: 1}
	require.NoError(t, w.Create(db))
	assert.ErrorIs(t, (&Workspace{ID: "w1", Version: 1}).Create(db), ErrVersionMismatch)
	assert.Error(t, (&Workspace{ID: "w2"}).Create(db), "version is required")

	var got Workspace
	require.NoError(t, got.Get(db, "w1"))
	assert.Equal(t, "Personal", got.Name)
	assert.Equal(t, int64(1), got.Version)

	assert.ErrorIs(t, (&Workspace{}).Get(db, "missing"), gorm.ErrRecordNotFound)

	next := Workspace{ID: "w1", Name: "Renamed", Version: 2}
	require.NoError(t, next.Advance(db, 1))
	assert.ErrorIs(t, next.Advance(db, 1), ErrVersionMismatch)

	require.NoError(t, got.Get(db, "w1"))
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, int64(2), got.Version)
}

func TestGetAllWorkspaces(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, (&Workspace{ID: "b", Name: "Zeta", Version: 1}).Create(db))
	require.NoError(t, (&Workspace{ID: "a", Name: "Alpha", Version: 1}).Create(db))

	all, err := GetAllWorkspaces(db)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "Zeta", all[1].Name)
}

func TestReplaceWorkspaceTree(t *testing.T) {
	db := setupTestDB(t)

	auth, err := MarshalToJSON(map[string]any{"authType": "none"})
	require.NoError(t, err)

	colls := []Collection{
		{WorkspaceID: "w", ID: "c2", Position: 1, Name: "Second", Auth: auth},
		{WorkspaceID: "w", ID: "c1", Position: 0, Name: "First"},
	}
	reqs := []Request{
		{WorkspaceID: "w", ID: "r1", CollectionID: "c1", Name: "list", Method: "GET", Data: JSON(`{"name":"list"}`)},
	}
	require.NoError(t, ReplaceWorkspaceTree(db, "w", colls, reqs))
	// Other workspaces are untouched by a replace.
	require.NoError(t, ReplaceWorkspaceTree(db, "other", []Collection{{WorkspaceID: "other", ID: "c1", Name: "x"}}, nil))

	gotColls, gotReqs, err := GetWorkspaceTree(db, "w")
	require.NoError(t, err)
	require.Len(t, gotColls, 2)
	assert.Equal(t, "First", gotColls[0].Name)
	assert.Equal(t, "Second", gotColls[1].Name)
	require.Len(t, gotReqs, 1)

	var decoded map[string]any
	require.NoError(t, gotColls[1].Auth.Decode(&decoded))
	assert.Equal(t, "none", decoded["authType"])

	var none map[string]any
	require.NoError(t, gotColls[0].Auth.Decode(&none))
	assert.Nil(t, none)

	require.NoError(t, ReplaceWorkspaceTree(db, "w", nil, nil))
	gotColls, gotReqs, err = GetWorkspaceTree(db, "w")
	require.NoError(t, err)
	assert.Empty(t, gotColls)
	assert.Empty(t, gotReqs)

	otherColls, _, err := GetWorkspaceTree(db, "other")
	require.NoError(t, err)
	assert.Len(t, otherColls, 1)
}
