package graph

import "github.com/mosaicflow/mosaic/pkg/domain"

// ChangeType tags an incremental graph mutation.
type ChangeType string

const (
	ChangeAdd      ChangeType = "add"
	ChangeRemove   ChangeType = "remove"
	ChangePosition ChangeType = "position"
	ChangeSelect   ChangeType = "select"
)

// NodeChange is one incremental node mutation. Add carries the full node;
// the other types address an existing node by ID.
type NodeChange struct {
	Type     ChangeType
	Node     domain.Node
	ID       string
	Position domain.Position
	Selected bool
}

// EdgeChange is one incremental edge mutation.
type EdgeChange struct {
	Type ChangeType
	Edge domain.Edge
	ID   string
}
