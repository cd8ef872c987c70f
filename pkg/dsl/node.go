package dsl

import "github.com/mosaicflow/mosaic/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// ID returns the generated node id.
func (n *NodeBuilder) ID() string {
	return n.node.ID
}

// Label sets the display label.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Data.Label = label
	return n
}

// At overrides the auto-layout position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Duration sets the requested output duration in seconds.
func (n *NodeBuilder) Duration(seconds float64) *NodeBuilder {
	n.node.Data.Duration = seconds
	return n
}

// Resolution sets the requested output resolution.
func (n *NodeBuilder) Resolution(res string) *NodeBuilder {
	n.node.Data.Resolution = res
	return n
}

// Aspect sets the requested aspect ratio.
func (n *NodeBuilder) Aspect(ratio string) *NodeBuilder {
	n.node.Data.AspectRatio = ratio
	return n
}

// PromptFrom connects a prompt node into this node's prompt handle.
func (n *NodeBuilder) PromptFrom(src *NodeBuilder) *NodeBuilder {
	n.builder.Connect(src, n, domain.HandlePrompt, domain.HandlePrompt)
	return n
}

// ImageFrom connects an image-bearing node into the given target handle.
func (n *NodeBuilder) ImageFrom(src *NodeBuilder, targetHandle string) *NodeBuilder {
	n.builder.Connect(src, n, domain.HandleResult, targetHandle)
	return n
}

// VideoFrom connects a video-bearing node into the given target handle.
// Ordered slots (video1, video2) define concatenation order.
func (n *NodeBuilder) VideoFrom(src *NodeBuilder, targetHandle string) *NodeBuilder {
	n.builder.Connect(src, n, domain.HandleResult, targetHandle)
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}
