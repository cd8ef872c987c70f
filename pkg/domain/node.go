package domain

// NodeKind selects which execution adapter and which configuration shape
// applies to a node.
type NodeKind string

const (
	// Source kinds. They hold data but perform no work when a graph runs.
	KindPrompt     NodeKind = "prompt"
	KindImageInput NodeKind = "image-input"
	KindVideoInput NodeKind = "video-input"
	KindFileInput  NodeKind = "file-input"

	// Generation kinds.
	KindImageGen    NodeKind = "image-gen"
	KindTextVideo   NodeKind = "text-video"
	KindFrameVideo  NodeKind = "frame-video"
	KindEffectVideo NodeKind = "effect-video"

	// Editing kinds.
	KindVideoConcat     NodeKind = "video-concat"
	KindVideoTrim       NodeKind = "video-trim"
	KindVideoSubtitles  NodeKind = "video-subtitles"
	KindVideoTransition NodeKind = "video-transition"
)

// executableKinds is the closed set of kinds whose adapter performs real work.
var executableKinds = map[NodeKind]bool{
	KindImageGen:        true,
	KindTextVideo:       true,
	KindFrameVideo:      true,
	KindEffectVideo:     true,
	KindVideoConcat:     true,
	KindVideoTrim:       true,
	KindVideoSubtitles:  true,
	KindVideoTransition: true,
}

// Executable reports whether nodes of this kind perform work when a graph runs.
func (k NodeKind) Executable() bool {
	return executableKinds[k]
}

// Position holds canvas coordinates for a node.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a unit of graph state: a data source or a generation/edit step.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Kind     NodeKind `json:"kind" yaml:"kind"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
	Selected bool     `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	out.Data = n.Data.Clone()
	return out
}

// CloneNodes deep-copies a node collection. Snapshots and clipboard payloads
// must never share slices with the live graph.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// CloneEdges copies an edge collection.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}
