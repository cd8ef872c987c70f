// Package graph implements the mutable store for the current node and edge
// collections. All mutation flows through its narrow write APIs; every write
// is a single atomic replace under the store lock, and node deletion cascades
// to the edges touching it so the graph never holds a dangling edge.
package graph

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/mosaicflow/mosaic/internal/logging"
	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/mosaicflow/mosaic/pkg/history"
)

// DefaultDebounce is how long position-only changes coalesce before one
// history snapshot is taken. Dragging a node produces one snapshot, not one
// per mouse event.
const DefaultDebounce = 300 * time.Millisecond

// Store holds the live graph.
type Store struct {
	mu     sync.Mutex
	nodes  []domain.Node
	edges  []domain.Edge
	hist   *history.Manager
	logger *slog.Logger
	newID  func() string

	debounce time.Duration
	posTimer *time.Timer

	onSelect func(nodeID string)
}

// Option configures the store.
type Option func(*Store)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithDebounce overrides the position-change coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithIDSource overrides the identity generator.
func WithIDSource(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithSelectionNotifier registers the callback invoked when the selection
// changes. An empty id means the selection was cleared.
func WithSelectionNotifier(fn func(nodeID string)) Option {
	return func(s *Store) { s.onSelect = fn }
}

// New creates a store backed by the given history manager.
func New(hist *history.Manager, opts ...Option) *Store {
	s := &Store{
		nodes:    []domain.Node{},
		edges:    []domain.Edge{},
		hist:     hist,
		logger:   logging.NewNop(),
		newID:    NewIDSource("n"),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Nodes returns a deep copy of the node collection.
func (s *Store) Nodes() []domain.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneNodes(s.nodes)
}

// Edges returns a copy of the edge collection.
func (s *Store) Edges() []domain.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneEdges(s.edges)
}

// Node looks up a single node by id.
func (s *Store) Node(id string) (domain.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		if n.ID == id {
			return n.Clone(), true
		}
	}
	return domain.Node{}, false
}

// NewID mints a fresh identity from the store's id source.
func (s *Store) NewID() string {
	return s.newID()
}

// ApplyNodeChanges applies a batch of node mutations and returns the new
// collection. Structural changes (add/remove) snapshot immediately; position
// changes snapshot on the debounce window; selection changes never snapshot.
func (s *Store) ApplyNodeChanges(changes []NodeChange) []domain.Node {
	var notify []string

	s.mu.Lock()
	structural, positional := false, false
	for _, ch := range changes {
		switch ch.Type {
		case ChangeAdd:
			node := ch.Node.Clone()
			if node.ID == "" {
				node.ID = s.newID()
			}
			s.nodes = append(s.nodes, node)
			structural = true
		case ChangeRemove:
			if s.removeNodeLocked(ch.ID) {
				structural = true
			}
		case ChangePosition:
			for i := range s.nodes {
				if s.nodes[i].ID == ch.ID {
					s.nodes[i].Position = ch.Position
					positional = true
				}
			}
		case ChangeSelect:
			for i := range s.nodes {
				if s.nodes[i].ID == ch.ID {
					s.nodes[i].Selected = ch.Selected
					if ch.Selected {
						notify = append(notify, ch.ID)
					}
				}
			}
		}
	}

	switch {
	case structural:
		s.saveNowLocked()
	case positional:
		s.schedulePositionSaveLocked()
	}
	out := domain.CloneNodes(s.nodes)
	s.mu.Unlock()

	for _, id := range notify {
		s.notifySelect(id)
	}
	return out
}

// ApplyEdgeChanges applies a batch of edge mutations. Edge add/remove is
// always structural, so the snapshot is always immediate.
func (s *Store) ApplyEdgeChanges(changes []EdgeChange) []domain.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, ch := range changes {
		switch ch.Type {
		case ChangeAdd:
			edge := ch.Edge
			if edge.ID == "" {
				edge.ID = s.newID()
			}
			s.edges = append(s.edges, edge)
			changed = true
		case ChangeRemove:
			for i, e := range s.edges {
				if e.ID == ch.ID {
					s.edges = append(s.edges[:i], s.edges[i+1:]...)
					changed = true
					break
				}
			}
		}
	}

	if changed {
		s.saveNowLocked()
	}
	return domain.CloneEdges(s.edges)
}

// Connect validates handle compatibility and inserts the candidate edge.
// Rejected connections are silently dropped; the second return reports the
// outcome so a UI can surface it.
func (s *Store) Connect(candidate domain.Edge) ([]domain.Edge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasNodeLocked(candidate.Source) || !s.hasNodeLocked(candidate.Target) {
		s.logger.Debug("connection rejected: unknown endpoint",
			"source", candidate.Source, "target", candidate.Target)
		return domain.CloneEdges(s.edges), false
	}
	if !domain.CompatibleHandles(candidate.SourceHandle, candidate.TargetHandle) {
		s.logger.Debug("connection rejected: incompatible handles",
			"sourceHandle", candidate.SourceHandle, "targetHandle", candidate.TargetHandle)
		return domain.CloneEdges(s.edges), false
	}

	if candidate.ID == "" {
		candidate.ID = s.newID()
	}
	s.edges = append(s.edges, candidate)
	s.saveNowLocked()
	return domain.CloneEdges(s.edges), true
}

// DeleteNode removes the node and every edge with it as source or target,
// atomically, and clears the selection if it pointed at the deleted node.
func (s *Store) DeleteNode(id string) {
	s.mu.Lock()
	wasSelected := false
	for _, n := range s.nodes {
		if n.ID == id && n.Selected {
			wasSelected = true
		}
	}
	if !s.removeNodeLocked(id) {
		s.mu.Unlock()
		return
	}
	s.saveNowLocked()
	s.mu.Unlock()

	if wasSelected {
		s.notifySelect("")
	}
}

// UpdateNodeData shallow-merges a patch into the node's data. The snapshot is
// immediate: a data edit is a discrete user action, not a continuous gesture.
func (s *Store) UpdateNodeData(id string, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.nodes {
		if s.nodes[i].ID != id {
			continue
		}
		data := s.nodes[i].Data.Clone()
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &data,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return err
		}
		if err := dec.Decode(patch); err != nil {
			return fmt.Errorf("invalid data patch for node %s: %w", id, err)
		}
		s.nodes[i].Data = data
		s.saveNowLocked()
		return nil
	}
	return domain.ErrNodeNotFound
}

// Insert appends a batch of nodes and edges in one transition with a single
// snapshot. When deselectOthers is set, pre-existing nodes are deselected
// first. This is the paste path.
func (s *Store) Insert(nodes []domain.Node, edges []domain.Edge, deselectOthers bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deselectOthers {
		for i := range s.nodes {
			s.nodes[i].Selected = false
		}
	}
	s.nodes = append(s.nodes, domain.CloneNodes(nodes)...)
	s.edges = append(s.edges, edges...)
	s.saveNowLocked()
}

// SelectedIDs returns the ids of all currently selected nodes.
func (s *Store) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, n := range s.nodes {
		if n.Selected {
			out = append(out, n.ID)
		}
	}
	return out
}

// SelectOnly marks one node selected and deselects the rest. An empty id
// clears the selection. Selection is not a history event.
func (s *Store) SelectOnly(id string) {
	s.mu.Lock()
	for i := range s.nodes {
		s.nodes[i].Selected = s.nodes[i].ID == id && id != ""
	}
	s.mu.Unlock()
	s.notifySelect(id)
}

// ResetGenerating force-clears the in-flight flag on every node. Used when a
// run is stopped; state hygiene, not a user edit, so no snapshot is taken.
func (s *Store) ResetGenerating() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.nodes {
		s.nodes[i].Data.IsGenerating = false
	}
}

// Restore replaces the graph with a history snapshot. The write goes through
// the normal save path; the history manager swallows the echo.
func (s *Store) Restore(snap history.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPositionSaveLocked()
	s.nodes = snap.Nodes
	s.edges = snap.Edges
	s.hist.Save(s.nodes, s.edges)
}

// SetGraph replaces the graph wholesale, e.g. when loading a workflow.
// It snapshots the new state as a fresh baseline.
func (s *Store) SetGraph(nodes []domain.Node, edges []domain.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPositionSaveLocked()
	s.nodes = domain.CloneNodes(nodes)
	s.edges = domain.CloneEdges(edges)
	s.saveNowLocked()
}

func (s *Store) hasNodeLocked(id string) bool {
	for _, n := range s.nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// removeNodeLocked deletes the node and cascades to its edges.
func (s *Store) removeNodeLocked(id string) bool {
	found := false
	for i, n := range s.nodes {
		if n.ID == id {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return false
	}

	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	s.edges = kept
	return true
}

// saveNowLocked flushes any pending debounced save and snapshots immediately.
// A structural snapshot already includes the latest positions.
func (s *Store) saveNowLocked() {
	s.cancelPositionSaveLocked()
	s.hist.Save(s.nodes, s.edges)
}

// schedulePositionSaveLocked arms (or re-arms) the coalescing timer.
func (s *Store) schedulePositionSaveLocked() {
	if s.posTimer != nil {
		s.posTimer.Reset(s.debounce)
		return
	}
	s.posTimer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.posTimer = nil
		s.hist.Save(s.nodes, s.edges)
	})
}

func (s *Store) cancelPositionSaveLocked() {
	if s.posTimer != nil {
		s.posTimer.Stop()
		s.posTimer = nil
	}
}

func (s *Store) notifySelect(id string) {
	if s.onSelect != nil {
		s.onSelect(id)
	}
}
