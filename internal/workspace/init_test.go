package workspace

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesgeorge007/postwoman/internal/config"
	"github.com/jamesgeorge007/postwoman/pkg/events"
	pw "github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/local"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
)

const runtimeConfig = `
provider "scratch" {
  type     = "memory"
  priority = 2
}

provider "personal" {
  type     = "local"
  name     = "Personal"
  priority = 1
  options  = { path = "/data/workspaces" }
}

provider "team" {
  type = "database"
  options = {
    driver = "sqlite"
    path   = ":memory:"
  }
}

default_workspace {
  provider = "personal"
  id       = "main"
  name     = "Main"
}

events {
  backend = "log"
}
`

func TestBuild(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.Parse("postwoman.hcl", []byte(runtimeConfig))
	require.NoError(t, err)

	fsys := afero.NewMemMapFs()
	rt, err := Build(ctx, cfg, hclog.NewNullLogger(), Options{Fs: fsys})
	require.NoError(t, err)
	defer rt.Close()

	var ids []string
	for _, p := range rt.Service.Providers() {
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []string{"team", "personal", "scratch"}, ids)

	decor, err := rt.Service.Decor("personal")
	require.NoError(t, err)
	assert.Equal(t, "Personal", decor.Name)

	active := rt.Service.ActiveWorkspace().Get()
	require.NotNil(t, active.Value)
	ws := active.Value.Get()
	require.True(t, ws.OK())
	assert.Equal(t, "personal", ws.Value.ProviderID)
	assert.Equal(t, "main", ws.Value.WorkspaceID)
	assert.Equal(t, "Main", ws.Value.Name)

	exists, err := afero.Exists(fsys, "/data/workspaces/main.json")
	require.NoError(t, err)
	assert.True(t, exists, "default workspace is persisted")

	store, err := rt.Store("personal")
	require.NoError(t, err)
	assert.IsType(t, &local.Store{}, store)

	_, err = rt.Store("missing")
	assert.Error(t, err)

	coll, err := rt.Service.CreateRESTRootCollection(ctx, active.Value, pw.NewCollection{Name: "Users"})
	require.NoError(t, err)
	assert.Equal(t, "Users", coll.Get().Value.Name)
}

func TestBuild_DefaultWorkspaceIsReused(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	cfg, err := config.Parse("postwoman.hcl", []byte(runtimeConfig))
	require.NoError(t, err)

	first, err := Build(ctx, cfg, nil, Options{Fs: fsys})
	require.NoError(t, err)
	ws := first.Service.ActiveWorkspace().Get().Value
	_, err = first.Service.CreateRESTRootCollection(ctx, ws, pw.NewCollection{Name: "Kept"})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Build(ctx, cfg, nil, Options{Fs: fsys})
	require.NoError(t, err)
	defer second.Close()

	view, err := second.Service.RootCollectionView(ctx, second.Service.ActiveWorkspace().Get().Value)
	require.NoError(t, err)
	roots := view.Get().Value.Collections
	require.Len(t, roots, 1)
	assert.Equal(t, "Kept", roots[0].Name)
}

func TestBuild_BadProvider(t *testing.T) {
	cfg := &config.Config{
		Providers: []*config.Provider{
			{ID: "ok", Type: config.ProviderTypeMemory},
			{ID: "bad", Type: config.ProviderTypeLocal, Options: map[string]string{"bogus": "x"}},
		},
	}

	_, err := Build(context.Background(), cfg, nil, Options{Fs: afero.NewMemMapFs()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `provider "bad"`)
}

func TestNewStore(t *testing.T) {
	fsys := afero.NewMemMapFs()
	logger := hclog.NewNullLogger()

	store, err := NewStore(&config.Provider{ID: "m", Type: config.ProviderTypeMemory}, logger, fsys)
	require.NoError(t, err)
	assert.IsType(t, &tree.MemoryStore{}, store)

	_, err = NewStore(&config.Provider{ID: "x", Type: "carrier-pigeon"}, logger, fsys)
	assert.ErrorContains(t, err, "unknown provider type")

	_, err = NewStore(&config.Provider{
		ID:      "r",
		Type:    config.ProviderTypeRemote,
		Options: map[string]string{"base_url": "ftp://nope"},
	}, logger, fsys)
	assert.ErrorContains(t, err, "http or https")

	_, err = NewStore(&config.Provider{
		ID:      "s",
		Type:    config.ProviderTypeS3,
		Options: map[string]string{"region": "us-east-1"},
	}, logger, fsys)
	assert.ErrorContains(t, err, "bucket is required")
}

func TestNewPublisher(t *testing.T) {
	logger := hclog.NewNullLogger()

	pub, err := NewPublisher(nil, logger)
	require.NoError(t, err)
	assert.IsType(t, events.NopPublisher{}, pub)

	pub, err = NewPublisher(&config.Events{Backend: config.EventsBackendLog}, logger)
	require.NoError(t, err)
	assert.IsType(t, &events.LogPublisher{}, pub)

	_, err = NewPublisher(&config.Events{Backend: "pager"}, logger)
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester/.postwoman", expandHome("~/.postwoman"))
	assert.Equal(t, "/home/tester", expandHome("~"))
	assert.Equal(t, "/srv/data", expandHome("/srv/data"))
	assert.Equal(t, "~user/data", expandHome("~user/data"))
}
