// Package memory provides an in-memory implementation of ports.WorkflowStore.
// Useful for tests and for hosts that never persist across restarts.
package memory

import (
	"context"
	"sync"

	"github.com/mosaicflow/mosaic/pkg/domain"
)

// Store implements ports.WorkflowStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Workflow
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Workflow),
	}
}

// Save persists the workflow in memory.
func (s *Store) Save(ctx context.Context, wf domain.Workflow) error {
	// Deep copy on write so the caller cannot mutate stored state.
	copied := wf.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[wf.ID] = copied
	return nil
}

// Load retrieves a workflow by id.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wf, ok := s.data[id]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}

	out := wf.Clone()
	return &out, nil
}

// Delete removes the workflow. Missing ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the ids of all stored workflows.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
