package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"github.com/jamesgeorge007/postwoman/pkg/workspace"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
)

const workspacesPath = "/api/v1/workspaces"

// Compile-time interface check.
var _ tree.Store = (*Store)(nil)

// Store is a tree.Store backed by a remote sync server.
type Store struct {
	config *Config
	client *http.Client
	logger hclog.Logger
}

// NewStore creates a remote store.
func NewStore(cfg *Config, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid remote store config: %w", err)
	}

	client := cfg.NewHTTPClient()
	if cfg.AuthToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AuthToken,
			TokenType:   "Bearer",
		}))
		client.Timeout = cfg.Timeout
	}

	return &Store{
		config: cfg,
		client: client,
		logger: logger.Named("remote-store").With("base_url", cfg.BaseURL),
	}, nil
}

func (s *Store) ListWorkspaces(ctx context.Context) ([]tree.WorkspaceInfo, error) {
	var infos []tree.WorkspaceInfo
	if err := s.doRequest(ctx, http.MethodGet, workspacesPath, nil, &infos); err != nil {
		return nil, fmt.Errorf("error listing workspaces: %w", err)
	}
	tree.SortInfos(infos)
	return infos, nil
}

func (s *Store) Load(ctx context.Context, workspaceID string) (*tree.Snapshot, error) {
	var snap tree.Snapshot
	err := s.doRequest(ctx, http.MethodGet, workspacePath(workspaceID), nil, &snap)
	if err != nil {
		return nil, fmt.Errorf("error loading workspace %s: %w", workspaceID, err)
	}
	return &snap, nil
}

func (s *Store) Save(ctx context.Context, snap *tree.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	attempts, err := s.send(ctx, http.MethodPut, workspacePath(snap.WorkspaceID), body, nil)
	if errors.Is(err, workspace.ErrConflict) && attempts > 1 && s.alreadySaved(ctx, snap, body) {
		s.logger.Debug("earlier attempt was applied",
			"workspace_id", snap.WorkspaceID,
			"version", snap.Version)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error saving workspace %s: %w", snap.WorkspaceID, err)
	}
	return nil
}

// alreadySaved reports whether the server holds exactly snap. A retried PUT
// conflicts with itself when an earlier attempt landed but its response was
// lost.
func (s *Store) alreadySaved(ctx context.Context, snap *tree.Snapshot, body []byte) bool {
	var stored tree.Snapshot
	if _, err := s.send(ctx, http.MethodGet, workspacePath(snap.WorkspaceID), nil, &stored); err != nil {
		return false
	}
	if stored.Version != snap.Version {
		return false
	}
	got, err := json.Marshal(&stored)
	if err != nil {
		return false
	}
	return bytes.Equal(got, body)
}

func workspacePath(id string) string {
	return workspacesPath + "/" + url.PathEscape(id)
}

// doRequest executes an HTTP request with retries. 404 maps to
// workspace.ErrWorkspaceNotFound and 409 to workspace.ErrConflict.
func (s *Store) doRequest(ctx context.Context, method, path string, body []byte, result any) error {
	_, err := s.send(ctx, method, path, body, result)
	return err
}

// send is doRequest that also reports how many attempts were made.
func (s *Store) send(ctx context.Context, method, path string, body []byte, result any) (int, error) {
	endpoint := s.config.BaseURL + path

	attempts := 0
	attempt := func() error {
		attempts++
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(workspace.ErrWorkspaceNotFound)
		case resp.StatusCode == http.StatusConflict:
			return backoff.Permanent(fmt.Errorf("%w: %s", workspace.ErrConflict, bytes.TrimSpace(respBody)))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("server error (status %d): %s", resp.StatusCode, bytes.TrimSpace(respBody))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody)))
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.config.RetryDelay
	policy.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.config.MaxRetries)), ctx)

	err := backoff.RetryNotify(attempt, b, func(err error, wait time.Duration) {
		s.logger.Warn("retrying request",
			"method", method,
			"path", path,
			"wait", wait,
			"error", err)
	})
	return attempts, err
}
