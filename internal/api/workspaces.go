package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jamesgeorge007/postwoman/internal/server"
	"github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
)

// maxSnapshotBytes bounds the size of an uploaded snapshot.
const maxSnapshotBytes = 16 << 20

// WorkspacesHandler serves the snapshot store for remote providers.
//
// GET /api/v1/workspaces       - List workspaces
// GET /api/v1/workspaces/{id}  - Get a workspace snapshot
// PUT /api/v1/workspaces/{id}  - Save a workspace snapshot
func WorkspacesHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := parseResourceIDFromURL(r.URL.Path, "workspaces")
		if err != nil && !errors.Is(err, errNoResourceID) {
			http.Error(w, "Invalid path", http.StatusBadRequest)
			return
		}

		switch {
		case id == "" && r.Method == http.MethodGet:
			handleListWorkspaces(w, r, srv)
		case id == "":
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		case r.Method == http.MethodGet:
			handleGetWorkspace(w, r, id, srv)
		case r.Method == http.MethodPut:
			handlePutWorkspace(w, r, id, srv)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func handleListWorkspaces(w http.ResponseWriter, r *http.Request, srv server.Server) {
	infos, err := srv.Store.ListWorkspaces(r.Context())
	if err != nil {
		srv.Logger.Error("error listing workspaces", "error", err)
		http.Error(w, "Error listing workspaces", http.StatusInternalServerError)
		return
	}
	if infos == nil {
		infos = []tree.WorkspaceInfo{}
	}
	writeJSON(w, srv, http.StatusOK, infos)
}

func handleGetWorkspace(w http.ResponseWriter, r *http.Request, id string, srv server.Server) {
	snap, err := srv.Store.Load(r.Context(), id)
	if errors.Is(err, workspace.ErrWorkspaceNotFound) {
		http.Error(w, "Workspace not found", http.StatusNotFound)
		return
	}
	if err != nil {
		srv.Logger.Error("error loading workspace", "error", err, "workspace_id", id)
		http.Error(w, "Error loading workspace", http.StatusInternalServerError)
		return
	}
	writeJSON(w, srv, http.StatusOK, snap)
}

func handlePutWorkspace(w http.ResponseWriter, r *http.Request, id string, srv server.Server) {
	var snap tree.Snapshot
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSnapshotBytes)).Decode(&snap); err != nil {
		srv.Logger.Warn("error decoding workspace snapshot", "error", err, "workspace_id", id)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if snap.WorkspaceID == "" {
		snap.WorkspaceID = id
	}
	if snap.WorkspaceID != id {
		http.Error(w, "Workspace ID does not match path", http.StatusBadRequest)
		return
	}
	if snap.Version < 1 {
		http.Error(w, "version must be positive", http.StatusBadRequest)
		return
	}
	for _, c := range snap.Collections {
		if err := c.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	err := srv.Store.Save(r.Context(), &snap)
	if errors.Is(err, workspace.ErrConflict) {
		srv.Logger.Info("workspace version conflict",
			"workspace_id", id, "version", snap.Version)
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		srv.Logger.Error("error saving workspace", "error", err, "workspace_id", id)
		http.Error(w, "Error saving workspace", http.StatusInternalServerError)
		return
	}

	srv.Logger.Debug("workspace saved", "workspace_id", id, "version", snap.Version)
	w.WriteHeader(http.StatusNoContent)
}

// ProviderInfo is a registered provider as listed by the API.
type ProviderInfo struct {
	ID string `json:"id"`
	workspace.Decor
}

// ProvidersHandler lists the registered providers.
//
// GET /api/v1/providers
func ProvidersHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		resp := []ProviderInfo{}
		for _, p := range srv.Service.Providers() {
			resp = append(resp, ProviderInfo{ID: p.ID(), Decor: p.Decor()})
		}
		writeJSON(w, srv, http.StatusOK, resp)
	})
}

// NewMux wires every API route, behind JWT authentication when a secret is
// configured.
func NewMux(srv server.Server) *http.ServeMux {
	wrap := func(h http.Handler) http.Handler {
		if srv.Config != nil && srv.Config.Server != nil && srv.Config.Server.JWTSecret != "" {
			return JWTAuthMiddleware(srv, h)
		}
		return h
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/workspaces", wrap(WorkspacesHandler(srv)))
	mux.Handle("/api/v1/workspaces/", wrap(WorkspacesHandler(srv)))
	mux.Handle("/api/v1/providers", wrap(ProvidersHandler(srv)))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func writeJSON(w http.ResponseWriter, srv server.Server, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		srv.Logger.Error("error encoding response", "error", err)
	}
}

var errNoResourceID = errors.New("no resource ID set in url path")

// parseResourceIDFromURL parses a URL path with the format
// "/api/v1/{apiPath}/{resourceID}" and returns the resource ID.
func parseResourceIDFromURL(url, apiPath string) (string, error) {
	url = strings.TrimPrefix(url, "/api/v1/"+apiPath)

	var parts []string
	for _, v := range strings.Split(url, "/") {
		if v != "" {
			parts = append(parts, v)
		}
	}
	switch len(parts) {
	case 0:
		return "", errNoResourceID
	case 1:
		return parts[0], nil
	default:
		return "", errors.New("invalid URL path")
	}
}
