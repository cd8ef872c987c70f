package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mosaicflow/mosaic"
	"github.com/mosaicflow/mosaic/internal/logging"
	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/mosaicflow/mosaic/pkg/ports"
)

// Session is one live editing session: an engine plus a counter of
// generations currently in flight, so hosts can warn before discarding work.
type Session struct {
	ID     string
	Engine *mosaic.Engine

	mu      sync.Mutex
	pending map[string]bool
}

// AddPending records a generation in flight for a node.
func (s *Session) AddPending(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[nodeID] = true
}

// RemovePending clears the in-flight record for a node.
func (s *Session) RemovePending(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, nodeID)
}

// Pending returns the number of generations currently in flight.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// lockEntry holds the per-session mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store     ports.WorkflowStore
	newEngine func() *mosaic.Engine

	mu       sync.Mutex
	sessions map[string]*Session
	locks    map[string]*lockEntry

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithEngineFactory overrides how engines for new sessions are built, e.g. to
// wire a generator and hooks.
func WithEngineFactory(fn func() *mosaic.Engine) Option {
	return func(m *Manager) { m.newEngine = fn }
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a session manager over the given persistence store.
func NewManager(store ports.WorkflowStore, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		newEngine: func() *mosaic.Engine { return mosaic.New() },
		sessions:  make(map[string]*Session),
		locks:     make(map[string]*lockEntry),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// LoadOrStart returns the live session for a workflow id, loading it from the
// store or starting a fresh one if it has never been saved.
func (m *Manager) LoadOrStart(ctx context.Context, id string) (*Session, error) {
	var sess *Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		m.mu.Lock()
		existing, ok := m.sessions[id]
		m.mu.Unlock()
		if ok {
			sess = existing
			return nil
		}

		sess = &Session{
			ID:      id,
			Engine:  m.newEngine(),
			pending: make(map[string]bool),
		}

		wf, err := m.store.Load(ctx, id)
		switch {
		case err == nil:
			sess.Engine.Load(*wf)
		case errors.Is(err, domain.ErrWorkflowNotFound):
			// Fresh session on an empty canvas.
		default:
			return fmt.Errorf("load session %s: %w", id, err)
		}

		m.mu.Lock()
		m.sessions[id] = sess
		m.mu.Unlock()
		return nil
	})
	return sess, err
}

// Save persists the session's current graph.
func (m *Manager) Save(ctx context.Context, id, name string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		m.mu.Lock()
		sess, ok := m.sessions[id]
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("session %s is not live", id)
		}

		wf := sess.Engine.Export(id, name)
		if prev, err := m.store.Load(ctx, id); err == nil {
			wf.CreatedAt = prev.CreatedAt
			wf.UpdatedAt = time.Now().UTC()
			if name == "" {
				wf.Name = prev.Name
			}
		}
		return m.store.Save(ctx, wf)
	})
}

// Delete removes the session from the store and drops its live state. A
// session with generations in flight is refused.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		m.mu.Lock()
		sess, live := m.sessions[id]
		m.mu.Unlock()

		if live && sess.Pending() > 0 {
			return fmt.Errorf("session %s has %d generations in flight", id, sess.Pending())
		}
		if err := m.store.Delete(ctx, id); err != nil {
			return err
		}

		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying workflow store.
func (m *Manager) Store() ports.WorkflowStore {
	return m.store
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	return fn(ctx)
}
