package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncapi "github.com/jamesgeorge007/postwoman/internal/api"
	"github.com/jamesgeorge007/postwoman/internal/config"
	"github.com/jamesgeorge007/postwoman/internal/server"
	"github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/service"
)

const testSecret = "sync-secret"

func newSyncServer(t *testing.T, wrap func(http.Handler) http.Handler) (*httptest.Server, *tree.MemoryStore) {
	t.Helper()
	backing := tree.NewMemoryStore()
	srv := server.Server{
		Config:  &config.Config{Server: &config.Server{Provider: "central", JWTSecret: testSecret}},
		Service: service.New(service.Options{}),
		Store:   backing,
		Logger:  hclog.NewNullLogger(),
	}
	var h http.Handler = syncapi.NewMux(srv)
	if wrap != nil {
		h = wrap(h)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts, backing
}

func newTestStore(t *testing.T, baseURL string) *Store {
	t.Helper()
	token, err := syncapi.MintToken(testSecret, "", "tester", time.Hour)
	require.NoError(t, err)

	s, err := NewStore(&Config{
		BaseURL:    baseURL,
		AuthToken:  token,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}, hclog.NewNullLogger())
	require.NoError(t, err)
	return s
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"missing url", Config{}, "base_url is required"},
		{"bad scheme", Config{BaseURL: "ftp://x"}, "http or https"},
		{"negative retries", Config{BaseURL: "http://x", MaxRetries: -1}, "max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			cfg.Timeout = time.Second
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	cfg := Config{BaseURL: "https://example.com"}
	cfg.SetDefaults()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	require.NotNil(t, cfg.TLSVerify)
	assert.True(t, *cfg.TLSVerify)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ts, backing := newSyncServer(t, nil)
	s := newTestStore(t, ts.URL)

	_, err := s.Load(ctx, "ws1")
	assert.ErrorIs(t, err, workspace.ErrWorkspaceNotFound)

	snap := &tree.Snapshot{
		WorkspaceID: "ws1",
		Name:        "Team",
		Version:     1,
		Collections: []*workspace.RESTCollection{{Name: "Users", ID: "c1"}},
	}
	require.NoError(t, s.Save(ctx, snap))

	stored, err := backing.Load(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, "Users", stored.Collections[0].Name)

	got, err := s.Load(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, "c1", got.Collections[0].ID)

	err = s.Save(ctx, &tree.Snapshot{WorkspaceID: "ws1", Name: "Team", Version: 1})
	assert.ErrorIs(t, err, workspace.ErrConflict)

	infos, err := s.ListWorkspaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tree.WorkspaceInfo{{ID: "ws1", Name: "Team"}}, infos)
}

func TestStore_Unauthorized(t *testing.T) {
	var calls atomic.Int32
	ts, _ := newSyncServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			next.ServeHTTP(w, r)
		})
	})

	s, err := NewStore(&Config{BaseURL: ts.URL, MaxRetries: 3, RetryDelay: time.Millisecond}, nil)
	require.NoError(t, err)

	_, err = s.ListWorkspaces(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestStore_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts, _ := newSyncServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= 2 {
				http.Error(w, "try again", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	s := newTestStore(t, ts.URL)

	infos, err := s.ListWorkspaces(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
	assert.Equal(t, int32(3), calls.Load())
}

func TestStore_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer ts.Close()

	s := newTestStore(t, ts.URL)
	_, err := s.Load(context.Background(), "ws1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, int32(3), calls.Load())
}

func TestStore_RetriedSaveAlreadyApplied(t *testing.T) {
	ctx := context.Background()
	var puts atomic.Int32
	ts, backing := newSyncServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPut && puts.Add(1) == 1 {
				// Apply the write, then lose the response.
				next.ServeHTTP(httptest.NewRecorder(), r)
				http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	s := newTestStore(t, ts.URL)

	snap := &tree.Snapshot{
		WorkspaceID: "ws1",
		Name:        "Team",
		Version:     1,
		Collections: []*workspace.RESTCollection{{Name: "Users", ID: "c1"}},
	}
	require.NoError(t, s.Save(ctx, snap))
	assert.Equal(t, int32(2), puts.Load())

	stored, err := backing.Load(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestStore_RetriedSaveLostToOtherWriter(t *testing.T) {
	ctx := context.Background()
	var puts atomic.Int32
	var backing *tree.MemoryStore
	ts, backing := newSyncServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPut && puts.Add(1) == 1 {
				assert.NoError(t, backing.Save(r.Context(), &tree.Snapshot{
					WorkspaceID: "ws1",
					Name:        "Someone else",
					Version:     1,
				}))
				http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	s := newTestStore(t, ts.URL)

	err := s.Save(ctx, &tree.Snapshot{WorkspaceID: "ws1", Name: "Team", Version: 1})
	assert.ErrorIs(t, err, workspace.ErrConflict)
}

func TestStore_WithTreeProvider(t *testing.T) {
	ctx := context.Background()
	ts, _ := newSyncServer(t, nil)

	edgeA := tree.New("team", newTestStore(t, ts.URL), tree.Options{})
	edgeB := tree.New("team", newTestStore(t, ts.URL), tree.Options{})

	ws, err := edgeA.EnsureWorkspace(ctx, "shared", "Shared")
	require.NoError(t, err)
	coll, err := edgeA.CreateRESTRootCollection(ctx, ws, workspace.NewCollection{Name: "Users"})
	require.NoError(t, err)
	collID := coll.Get().Value.CollectionID

	wsB, err := edgeB.GetWorkspaceHandle(ctx, "shared")
	require.NoError(t, err)
	collB, err := edgeB.GetCollectionHandle(ctx, wsB, collID)
	require.NoError(t, err)
	assert.Equal(t, "Users", collB.Get().Value.Name)

	// A writes again; B is now stale and its next save conflicts, then
	// reloads A's state.
	name := "People"
	require.NoError(t, edgeA.UpdateRESTCollection(ctx, coll, workspace.CollectionUpdate{Name: &name}))

	other := "Accounts"
	err = edgeB.UpdateRESTCollection(ctx, collB, workspace.CollectionUpdate{Name: &other})
	assert.ErrorIs(t, err, workspace.ErrConflict)
	assert.Equal(t, "People", collB.Get().Value.Name)

	require.NoError(t, edgeB.UpdateRESTCollection(ctx, collB, workspace.CollectionUpdate{Name: &other}))
	require.NoError(t, edgeA.Refresh(ctx, "shared"))
	assert.Equal(t, "Accounts", coll.Get().Value.Name)
}
