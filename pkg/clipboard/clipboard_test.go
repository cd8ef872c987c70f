package clipboard_test

import (
	"testing"

	"github.com/mosaicflow/mosaic/pkg/clipboard"
	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/mosaicflow/mosaic/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() ([]domain.Node, []domain.Edge) {
	nodes := []domain.Node{
		{ID: "p", Kind: domain.KindPrompt, Data: domain.NodeData{Prompt: "hello"}},
		{ID: "g", Kind: domain.KindImageGen, Position: domain.Position{X: 250},
			Data: domain.NodeData{ImageURL: "https://example.com/done.png", Seed: 7, Error: "stale"}},
		{ID: "outside", Kind: domain.KindVideoInput},
	}
	edges := []domain.Edge{
		{ID: "e1", Source: "p", Target: "g",
			SourceHandle: domain.HandlePrompt, TargetHandle: domain.HandlePrompt},
		{ID: "e2", Source: "g", Target: "outside",
			SourceHandle: domain.HandleResult, TargetHandle: domain.HandleImage},
	}
	return nodes, edges
}

func TestCopyKeepsOnlyInternalEdges(t *testing.T) {
	m := clipboard.New(graph.NewIDSource("c"))
	nodes, edges := sampleGraph()

	m.Copy(nodes, edges, map[string]bool{"p": true, "g": true})

	pastedNodes, pastedEdges := m.Paste()
	require.Len(t, pastedNodes, 2)
	assert.Len(t, pastedEdges, 1, "the boundary-crossing edge is dropped")
}

func TestPasteFreshIdentitiesAndClearedOutputs(t *testing.T) {
	m := clipboard.New(graph.NewIDSource("c"))
	nodes, edges := sampleGraph()
	m.Copy(nodes, edges, map[string]bool{"p": true, "g": true})

	pastedNodes, pastedEdges := m.Paste()
	require.Len(t, pastedNodes, 2)
	require.Len(t, pastedEdges, 1)

	byKind := map[domain.NodeKind]domain.Node{}
	for _, n := range pastedNodes {
		assert.NotContains(t, []string{"p", "g"}, n.ID, "pasted ids are fresh")
		assert.True(t, n.Selected)
		byKind[n.Kind] = n
	}

	gen := byKind[domain.KindImageGen]
	assert.Empty(t, gen.Data.ImageURL)
	assert.Empty(t, gen.Data.Error)
	assert.Zero(t, gen.Data.Seed)
	assert.Equal(t, 300.0, gen.Position.X, "offset applied")

	prompt := byKind[domain.KindPrompt]
	assert.Equal(t, "hello", prompt.Data.Prompt, "configuration survives the paste")

	// The remapped edge connects the two pasted nodes.
	e := pastedEdges[0]
	assert.Equal(t, prompt.ID, e.Source)
	assert.Equal(t, gen.ID, e.Target)
	assert.Equal(t, domain.HandlePrompt, e.TargetHandle)
}

func TestPasteTwiceYieldsIndependentCopies(t *testing.T) {
	m := clipboard.New(graph.NewIDSource("c"))
	nodes, edges := sampleGraph()
	m.Copy(nodes, edges, map[string]bool{"p": true, "g": true})

	n1, e1 := m.Paste()
	n2, e2 := m.Paste()
	require.Len(t, n1, 2)
	require.Len(t, n2, 2)
	require.Len(t, e1, 1)
	require.Len(t, e2, 1)

	seen := map[string]bool{}
	for _, n := range append(append([]domain.Node{}, n1...), n2...) {
		assert.False(t, seen[n.ID], "no id collisions across pastes")
		seen[n.ID] = true
	}
	assert.NotEqual(t, e1[0].ID, e2[0].ID)
}

func TestCopyEmptySelectionKeepsPayload(t *testing.T) {
	m := clipboard.New(graph.NewIDSource("c"))
	nodes, edges := sampleGraph()
	m.Copy(nodes, edges, map[string]bool{"p": true})
	require.False(t, m.Empty())

	m.Copy(nodes, edges, map[string]bool{})

	pasted, _ := m.Paste()
	assert.Len(t, pasted, 1, "empty selection does not clear the clipboard")
}

func TestPasteEmptyClipboard(t *testing.T) {
	m := clipboard.New(graph.NewIDSource("c"))
	nodes, edges := m.Paste()
	assert.Nil(t, nodes)
	assert.Nil(t, edges)
	assert.True(t, m.Empty())
}

func TestCopyIsDetachedFromLiveGraph(t *testing.T) {
	m := clipboard.New(graph.NewIDSource("c"))
	nodes, edges := sampleGraph()
	m.Copy(nodes, edges, map[string]bool{"p": true})

	// Later mutations of the source graph must not leak into the payload.
	nodes[0].Data.Prompt = "mutated"

	pasted, _ := m.Paste()
	require.Len(t, pasted, 1)
	assert.Equal(t, "hello", pasted[0].Data.Prompt)
}
