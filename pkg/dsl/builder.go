package dsl

import (
	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/mosaicflow/mosaic/pkg/graph"
)

const columnSpacing = 250

// Builder manages graph construction.
type Builder struct {
	nodes []*NodeBuilder
	byID  map[string]*NodeBuilder
	edges []domain.Edge
	newID func() string

	nextX float64
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		byID:  make(map[string]*NodeBuilder),
		newID: graph.NewIDSource("n"),
	}
}

// add places a node of the given kind, auto-laying it out one column to the
// right of the previous node.
func (b *Builder) add(kind domain.NodeKind, data domain.NodeData) *NodeBuilder {
	nb := &NodeBuilder{
		node: domain.Node{
			ID:       b.newID(),
			Kind:     kind,
			Position: domain.Position{X: b.nextX},
			Data:     data,
		},
		builder: b,
	}
	b.nextX += columnSpacing
	b.nodes = append(b.nodes, nb)
	b.byID[nb.node.ID] = nb
	return nb
}

// Prompt adds a prompt node carrying the given text.
func (b *Builder) Prompt(text string) *NodeBuilder {
	return b.add(domain.KindPrompt, domain.NodeData{Prompt: text})
}

// Image adds an image input node referencing existing media.
func (b *Builder) Image(url string) *NodeBuilder {
	return b.add(domain.KindImageInput, domain.NodeData{ImageURL: url})
}

// Video adds a video input node referencing existing media.
func (b *Builder) Video(url string) *NodeBuilder {
	return b.add(domain.KindVideoInput, domain.NodeData{VideoURL: url})
}

// File adds a file input node for uploaded media.
func (b *Builder) File(url, mimeType string) *NodeBuilder {
	return b.add(domain.KindFileInput, domain.NodeData{FileURL: url, MimeType: mimeType})
}

// ImageGen adds an image generation node.
func (b *Builder) ImageGen() *NodeBuilder {
	return b.add(domain.KindImageGen, domain.NodeData{})
}

// TextVideo adds a text-to-video generation node.
func (b *Builder) TextVideo() *NodeBuilder {
	return b.add(domain.KindTextVideo, domain.NodeData{})
}

// FrameVideo adds a frame-interpolation video node.
func (b *Builder) FrameVideo() *NodeBuilder {
	return b.add(domain.KindFrameVideo, domain.NodeData{})
}

// EffectVideo adds an effect video node.
func (b *Builder) EffectVideo(effect string) *NodeBuilder {
	return b.add(domain.KindEffectVideo, domain.NodeData{Effect: effect})
}

// Concat adds a video concatenation node.
func (b *Builder) Concat() *NodeBuilder {
	return b.add(domain.KindVideoConcat, domain.NodeData{})
}

// Trim adds a video trim node.
func (b *Builder) Trim(start, end float64) *NodeBuilder {
	return b.add(domain.KindVideoTrim, domain.NodeData{TrimStart: start, TrimEnd: end})
}

// Subtitles adds a subtitle node.
func (b *Builder) Subtitles(language string) *NodeBuilder {
	return b.add(domain.KindVideoSubtitles, domain.NodeData{Language: language})
}

// Transition adds a video transition node.
func (b *Builder) Transition(transitions ...string) *NodeBuilder {
	return b.add(domain.KindVideoTransition, domain.NodeData{Transitions: transitions})
}

// Connect adds an edge between two built nodes over the given handle pair.
func (b *Builder) Connect(from, to *NodeBuilder, sourceHandle, targetHandle string) *Builder {
	b.edges = append(b.edges, domain.Edge{
		ID:           b.newID(),
		Source:       from.node.ID,
		Target:       to.node.ID,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	})
	return b
}

// Build returns the assembled graph, ready for Engine.Load or a store.
func (b *Builder) Build() ([]domain.Node, []domain.Edge) {
	nodes := make([]domain.Node, 0, len(b.nodes))
	for _, nb := range b.nodes {
		nodes = append(nodes, nb.node.Clone())
	}
	return nodes, domain.CloneEdges(b.edges)
}
