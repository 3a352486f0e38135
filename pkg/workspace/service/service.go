// Package service routes workspace operations to registered providers.
//
// Every operation takes a handle, reads the provider ID embedded in the
// handle's value, and calls the provider registered under that ID. Handle
// and routing failures come back as *workspace.Error of kind
// KindInvalidHandle or KindInvalidProvider; failures reported by the
// provider come back as KindProvider wrapping the provider's error.
package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/jamesgeorge007/postwoman/pkg/events"
	"github.com/jamesgeorge007/postwoman/pkg/handle"
	"github.com/jamesgeorge007/postwoman/pkg/workspace"
)

// Options configures a Service.
type Options struct {
	Logger    hclog.Logger
	Publisher events.Publisher

	// PublishTimeout bounds each event publish. Zero means
	// DefaultPublishTimeout.
	PublishTimeout time.Duration
}

// DefaultPublishTimeout is the publish bound used when Options leaves it
// unset.
const DefaultPublishTimeout = 5 * time.Second

// Service is the dispatch table between callers and providers.
type Service struct {
	mu        sync.RWMutex
	providers map[string]workspace.Provider

	// activeMu serializes active workspace changes. Subscribers of the
	// active handle must not call ChangeActiveWorkspace synchronously.
	activeMu     sync.Mutex
	active       *handle.Handle[workspace.WorkspaceHandle]
	activeCancel func()

	publisher      events.Publisher
	publishTimeout time.Duration
	logger         hclog.Logger
}

// New creates an empty service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	pub := opts.Publisher
	if pub == nil {
		pub = events.NopPublisher{}
	}
	timeout := opts.PublishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Service{
		providers:      make(map[string]workspace.Provider),
		active:         handle.New[workspace.WorkspaceHandle](nil),
		publisher:      pub,
		publishTimeout: timeout,
		logger:         logger.Named("workspace-service"),
	}
}

// ===================================================================
// REGISTRY
// ===================================================================

// RegisterProvider adds p under p.ID().
func (s *Service) RegisterProvider(p workspace.Provider) error {
	if p == nil {
		return fmt.Errorf("provider is nil")
	}
	id := p.ID()
	if id == "" {
		return fmt.Errorf("provider ID is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.providers[id]; exists {
		return fmt.Errorf("provider %s already registered", id)
	}
	s.providers[id] = p

	d := p.Decor()
	s.logger.Info("provider registered",
		"id", id,
		"name", d.Name,
		"priority", d.Priority)
	return nil
}

// UnregisterProvider removes a provider. If the active workspace belongs to
// it, the active workspace is cleared.
func (s *Service) UnregisterProvider(id string) error {
	s.mu.Lock()
	if _, exists := s.providers[id]; !exists {
		s.mu.Unlock()
		return fmt.Errorf("provider %s not registered", id)
	}
	delete(s.providers, id)
	s.mu.Unlock()

	s.logger.Info("provider unregistered", "id", id)

	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	if cur, _ := s.active.Value(); cur != nil {
		if v, ok := cur.Value(); !ok || v.ProviderID == id {
			s.setActiveLocked(nil)
		}
	}
	return nil
}

// Provider returns the provider registered under id.
func (s *Service) Provider(id string) (workspace.Provider, error) {
	return s.provider("Provider", id)
}

// Providers returns every registered provider ordered by Decor priority,
// then ID.
func (s *Service) Providers() []workspace.Provider {
	s.mu.RLock()
	out := make([]workspace.Provider, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Decor().Priority, out[j].Decor().Priority
		if pi != pj {
			return pi < pj
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

// Decor returns the decor of the provider registered under id.
func (s *Service) Decor(id string) (workspace.Decor, error) {
	p, err := s.provider("Decor", id)
	if err != nil {
		return workspace.Decor{}, err
	}
	return p.Decor(), nil
}

func (s *Service) provider(op, id string) (workspace.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.providers[id]
	if !ok {
		return nil, workspace.InvalidProvider(op, id)
	}
	return p, nil
}

// resolve checks that h is usable and returns its value with the provider
// that issued it.
func resolve[T any](s *Service, op, what string, h *handle.Handle[T], providerID func(T) string) (workspace.Provider, T, error) {
	var zero T
	if h == nil {
		return nil, zero, workspace.InvalidHandle(op, what, "is nil")
	}

	st := h.Get()
	switch st.Status {
	case handle.StatusOK:
	case handle.StatusInvalid:
		return nil, zero, workspace.InvalidHandle(op, what, "is invalid: "+st.Reason)
	default:
		return nil, zero, workspace.InvalidHandle(op, what, "is in error state")
	}

	p, err := s.provider(op, providerID(st.Value))
	if err != nil {
		return nil, zero, err
	}
	return p, st.Value, nil
}

func (s *Service) workspace(op string, h workspace.WorkspaceHandle) (workspace.Provider, workspace.Workspace, error) {
	return resolve(s, op, "workspace", h, func(v workspace.Workspace) string { return v.ProviderID })
}

func (s *Service) collection(op string, h workspace.CollectionHandle) (workspace.Provider, workspace.Collection, error) {
	return resolve(s, op, "collection", h, func(v workspace.Collection) string { return v.ProviderID })
}

func (s *Service) request(op string, h workspace.RequestHandle) (workspace.Provider, workspace.Request, error) {
	return resolve(s, op, "request", h, func(v workspace.Request) string { return v.ProviderID })
}

// publish sends e. The mutation has already succeeded, so failures are only
// logged and a stuck publisher is cut off after publishTimeout.
func (s *Service) publish(ctx context.Context, e events.Event) {
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event",
			"type", e.Type,
			"provider", e.ProviderID,
			"workspace_id", e.WorkspaceID,
			"error", err)
	}
}

// ===================================================================
// ACTIVE WORKSPACE
// ===================================================================

// ActiveWorkspace returns a handle whose value is the active workspace
// handle, or nil when none is active. It is cleared when the active
// workspace is invalidated.
func (s *Service) ActiveWorkspace() *handle.Handle[workspace.WorkspaceHandle] {
	return s.active
}

// ChangeActiveWorkspace makes h the active workspace.
func (s *Service) ChangeActiveWorkspace(ctx context.Context, h workspace.WorkspaceHandle) error {
	const op = "ChangeActiveWorkspace"
	_, ws, err := s.workspace(op, h)
	if err != nil {
		return err
	}

	s.activeMu.Lock()
	s.setActiveLocked(h)
	s.activeMu.Unlock()

	s.logger.Debug("active workspace changed",
		"provider", ws.ProviderID,
		"workspace_id", ws.WorkspaceID)
	s.publish(ctx, events.New(events.TypeWorkspaceActivated, ws.ProviderID, ws.WorkspaceID))
	return nil
}

func (s *Service) setActiveLocked(h workspace.WorkspaceHandle) {
	if s.activeCancel != nil {
		s.activeCancel()
		s.activeCancel = nil
	}
	if h != nil {
		s.activeCancel = h.Subscribe(func(st handle.State[workspace.Workspace]) {
			if st.Status == handle.StatusInvalid {
				s.clearActive(h)
			}
		})
	}
	s.active.Set(h)

	// Invalidated between validation and subscribing.
	if h != nil && h.Get().Status == handle.StatusInvalid {
		s.activeCancel()
		s.activeCancel = nil
		s.active.Set(nil)
	}
}

func (s *Service) clearActive(h workspace.WorkspaceHandle) {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	if cur, _ := s.active.Value(); cur == h {
		s.logger.Debug("active workspace invalidated", "reason", h.Get().Reason)
		s.setActiveLocked(nil)
	}
}

// ===================================================================
// WORKSPACES
// ===================================================================

// CreateWorkspace creates a workspace in the given provider.
func (s *Service) CreateWorkspace(ctx context.Context, providerID, name string) (workspace.WorkspaceHandle, error) {
	const op = "CreateWorkspace"
	p, err := s.provider(op, providerID)
	if err != nil {
		return nil, err
	}

	h, err := p.CreateWorkspace(ctx, name)
	if err != nil {
		return nil, workspace.ProviderError(op, providerID, err)
	}

	if v, ok := h.Value(); ok {
		s.publish(ctx, events.New(events.TypeWorkspaceCreated, providerID, v.WorkspaceID))
	}
	return h, nil
}

// ListWorkspaces lists the workspaces of every provider, in provider order.
func (s *Service) ListWorkspaces(ctx context.Context) ([]workspace.Workspace, error) {
	const op = "ListWorkspaces"
	providers := s.Providers()
	results := make([][]workspace.Workspace, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			list, err := p.ListWorkspaces(gctx)
			if err != nil {
				return workspace.ProviderError(op, p.ID(), err)
			}
			results[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []workspace.Workspace
	for _, list := range results {
		out = append(out, list...)
	}
	return out, nil
}

// WorkspaceHandle returns the handle for a workspace in a provider.
func (s *Service) WorkspaceHandle(ctx context.Context, providerID, workspaceID string) (workspace.WorkspaceHandle, error) {
	const op = "WorkspaceHandle"
	p, err := s.provider(op, providerID)
	if err != nil {
		return nil, err
	}
	h, err := p.GetWorkspaceHandle(ctx, workspaceID)
	if err != nil {
		return nil, workspace.ProviderError(op, providerID, err)
	}
	return h, nil
}

// CollectionHandle returns the handle for a collection inside ws.
func (s *Service) CollectionHandle(ctx context.Context, ws workspace.WorkspaceHandle, collectionID string) (workspace.CollectionHandle, error) {
	const op = "CollectionHandle"
	p, _, err := s.workspace(op, ws)
	if err != nil {
		return nil, err
	}
	h, err := p.GetCollectionHandle(ctx, ws, collectionID)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	return h, nil
}

// RequestHandle returns the handle for a request inside ws.
func (s *Service) RequestHandle(ctx context.Context, ws workspace.WorkspaceHandle, requestID string) (workspace.RequestHandle, error) {
	const op = "RequestHandle"
	p, _, err := s.workspace(op, ws)
	if err != nil {
		return nil, err
	}
	h, err := p.GetRequestHandle(ctx, ws, requestID)
	if err != nil {
		return nil, workspace.ProviderError(op, p.ID(), err)
	}
	return h, nil
}

// Close closes every provider that holds resources, then the publisher.
func (s *Service) Close() error {
	var result *multierror.Error
	for _, p := range s.Providers() {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("provider %s: %w", p.ID(), err))
			}
		}
	}
	if err := s.publisher.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("publisher: %w", err))
	}
	return result.ErrorOrNil()
}
