// Package clipboard implements copy/paste of sub-graphs. The payload is a
// by-value copy, never tied to the live graph; pasting re-instantiates it
// with fresh identities and cleared generation outputs.
package clipboard

import (
	"sync"

	"github.com/mosaicflow/mosaic/pkg/domain"
)

// DefaultOffset is applied to pasted node positions so the copy does not
// land exactly on the original.
var DefaultOffset = domain.Position{X: 50, Y: 50}

// Manager holds the most recent copied payload until the next copy
// overwrites it. There is no automatic expiry.
type Manager struct {
	mu    sync.Mutex
	nodes []domain.Node
	edges []domain.Edge

	newID  func() string
	offset domain.Position
}

// Option configures the manager.
type Option func(*Manager)

// WithOffset overrides the paste position offset.
func WithOffset(off domain.Position) Option {
	return func(m *Manager) { m.offset = off }
}

// New creates a clipboard whose pasted nodes draw identities from newID.
func New(newID func() string, opts ...Option) *Manager {
	m := &Manager{
		newID:  newID,
		offset: DefaultOffset,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Copy captures the selected sub-graph: the selected nodes plus only the
// edges fully internal to the selection. Edges crossing the selection
// boundary are dropped, never migrated. An empty selection is a no-op.
func (m *Manager) Copy(nodes []domain.Node, edges []domain.Edge, selected map[string]bool) {
	if len(selected) == 0 {
		return
	}

	var pickedNodes []domain.Node
	for _, n := range nodes {
		if selected[n.ID] {
			pickedNodes = append(pickedNodes, n.Clone())
		}
	}
	if len(pickedNodes) == 0 {
		return
	}

	var pickedEdges []domain.Edge
	for _, e := range edges {
		if selected[e.Source] && selected[e.Target] {
			pickedEdges = append(pickedEdges, e)
		}
	}

	m.mu.Lock()
	m.nodes = pickedNodes
	m.edges = pickedEdges
	m.mu.Unlock()
}

// Paste returns a fresh instantiation of the clipboard payload: new ids for
// every node, positions shifted by the offset, generation outputs cleared and
// the pasted nodes marked selected. Edges are remapped through the id
// substitution table; an edge whose endpoint is missing from the table is
// dropped.
//
// An empty clipboard returns nil slices. Pasting never mutates the payload,
// so pasting twice yields two independent copies.
func (m *Manager) Paste() ([]domain.Node, []domain.Edge) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.nodes) == 0 {
		return nil, nil
	}

	remap := make(map[string]string, len(m.nodes))
	nodes := make([]domain.Node, 0, len(m.nodes))
	for _, src := range m.nodes {
		n := src.Clone()
		remap[src.ID] = m.newID()
		n.ID = remap[src.ID]
		n.Position.X += m.offset.X
		n.Position.Y += m.offset.Y
		n.Selected = true
		n.Data.ClearOutputs()
		nodes = append(nodes, n)
	}

	var edges []domain.Edge
	for _, src := range m.edges {
		source, okS := remap[src.Source]
		target, okT := remap[src.Target]
		if !okS || !okT {
			continue
		}
		edges = append(edges, domain.Edge{
			ID:           m.newID(),
			Source:       source,
			Target:       target,
			SourceHandle: src.SourceHandle,
			TargetHandle: src.TargetHandle,
		})
	}

	return nodes, edges
}

// Empty reports whether the clipboard holds a payload.
func (m *Manager) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes) == 0
}
