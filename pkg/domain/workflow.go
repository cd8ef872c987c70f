package domain

import "time"

// Workflow is the persistence record for a named graph.
type Workflow struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Nodes     []Node    `json:"nodes" yaml:"nodes"`
	Edges     []Edge    `json:"edges" yaml:"edges"`
	CreatedAt time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Clone deep-copies the workflow.
func (w Workflow) Clone() Workflow {
	out := w
	out.Nodes = CloneNodes(w.Nodes)
	out.Edges = CloneEdges(w.Edges)
	return out
}
