// Package history implements the undo/redo stack for graph snapshots.
package history

import (
	"sync"

	"github.com/mosaicflow/mosaic/pkg/domain"
)

// Depth caps the snapshot stack. The oldest snapshot is evicted first.
const Depth = 50

// Snapshot is an immutable (Nodes, Edges) pair.
type Snapshot struct {
	Nodes []domain.Node
	Edges []domain.Edge
}

// Manager keeps an ordered stack of snapshots with a cursor. Pushing after an
// undo truncates everything past the cursor: the redo branch is discarded on
// a new edit.
type Manager struct {
	mu       sync.Mutex
	stack    []Snapshot
	cursor   int
	suppress bool
}

// New returns a manager seeded with a single snapshot of the empty graph.
func New() *Manager {
	return &Manager{
		stack: []Snapshot{{Nodes: []domain.Node{}, Edges: []domain.Edge{}}},
	}
}

// Save pushes a snapshot of the given graph and advances the cursor.
//
// If the manager is in the suppression window opened by Undo or Redo, the
// call is the echo of its own restore: the window closes and nothing is
// pushed.
func (m *Manager) Save(nodes []domain.Node, edges []domain.Edge) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.suppress {
		m.suppress = false
		return
	}

	m.stack = m.stack[:m.cursor+1]
	m.stack = append(m.stack, Snapshot{
		Nodes: domain.CloneNodes(nodes),
		Edges: domain.CloneEdges(edges),
	})
	m.cursor++

	if len(m.stack) > Depth {
		over := len(m.stack) - Depth
		m.stack = m.stack[over:]
		m.cursor -= over
	}
}

// Undo steps the cursor back and returns the snapshot to restore. The second
// return is false when there is nothing to undo.
//
// The returned snapshot must be written back through the store's normal apply
// path; the manager suppresses exactly one subsequent Save to swallow that
// write's echo.
func (m *Manager) Undo() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor == 0 {
		return Snapshot{}, false
	}
	m.cursor--
	m.suppress = true
	return m.at(m.cursor), true
}

// Redo steps the cursor forward, with the same suppression rule as Undo.
func (m *Manager) Redo() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor >= len(m.stack)-1 {
		return Snapshot{}, false
	}
	m.cursor++
	m.suppress = true
	return m.at(m.cursor), true
}

// CanUndo reports whether an undo step is available.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor > 0
}

// CanRedo reports whether a redo step is available.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor < len(m.stack)-1
}

// Len returns the number of stored snapshots.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stack)
}

// at returns a deep copy so callers can mutate the restored graph freely.
func (m *Manager) at(i int) Snapshot {
	snap := m.stack[i]
	return Snapshot{
		Nodes: domain.CloneNodes(snap.Nodes),
		Edges: domain.CloneEdges(snap.Edges),
	}
}
