package operator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pw "github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
)

func seed(t *testing.T, s tree.Store, id, name string, versions int) {
	t.Helper()
	for v := 1; v <= versions; v++ {
		require.NoError(t, s.Save(context.Background(), &tree.Snapshot{
			WorkspaceID: id,
			Name:        name,
			Version:     int64(v),
			Collections: []*pw.RESTCollection{{Name: name + " collection"}},
		}))
	}
}

func TestCopyWorkspaces(t *testing.T) {
	ctx := context.Background()
	from, to := tree.NewMemoryStore(), tree.NewMemoryStore()
	seed(t, from, "a", "Alpha", 3)
	seed(t, from, "b", "Beta", 1)
	seed(t, to, "b", "Old Beta", 2)

	var actions []string
	res, err := CopyWorkspaces(ctx, from, to, CopyOptions{
		Progress: func(info tree.WorkspaceInfo, action string) {
			actions = append(actions, info.ID+":"+action)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, CopyResult{Total: 2, Copied: 1, Skipped: 1}, res)
	assert.Equal(t, []string{"a:copy", "b:skip"}, actions)

	a, err := to.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.Version, "versions restart in the destination")
	assert.Equal(t, "Alpha collection", a.Collections[0].Name)

	b, err := to.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Old Beta", b.Name)

	res, err = CopyWorkspaces(ctx, from, to, CopyOptions{Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, CopyResult{Total: 2, Copied: 2}, res)

	b, err = to.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Beta", b.Name)
	assert.Equal(t, int64(3), b.Version)
}

func TestCopyWorkspaces_DryRun(t *testing.T) {
	ctx := context.Background()
	from, to := tree.NewMemoryStore(), tree.NewMemoryStore()
	seed(t, from, "a", "Alpha", 1)

	res, err := CopyWorkspaces(ctx, from, to, CopyOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Copied)

	_, err = to.Load(ctx, "a")
	assert.ErrorIs(t, err, pw.ErrWorkspaceNotFound)
}

type failingStore struct {
	tree.Store
	err error
}

func (s failingStore) Save(context.Context, *tree.Snapshot) error { return s.err }

func TestCopyWorkspaces_CountsFailures(t *testing.T) {
	ctx := context.Background()
	from := tree.NewMemoryStore()
	seed(t, from, "a", "Alpha", 1)
	seed(t, from, "b", "Beta", 1)

	to := failingStore{Store: tree.NewMemoryStore(), err: errors.New("disk full")}
	res, err := CopyWorkspaces(ctx, from, to, CopyOptions{})
	require.NoError(t, err)
	assert.Equal(t, CopyResult{Total: 2, Failed: 2}, res)
}
