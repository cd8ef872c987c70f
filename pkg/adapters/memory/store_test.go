package memory_test

import (
	"context"
	"testing"

	"github.com/mosaicflow/mosaic/pkg/adapters/memory"
	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWorkflow(id string) domain.Workflow {
	return domain.Workflow{
		ID:   id,
		Name: "demo",
		Nodes: []domain.Node{
			{ID: "p", Kind: domain.KindPrompt, Data: domain.NodeData{Prompt: "hi"}},
			{ID: "g", Kind: domain.KindImageGen},
		},
		Edges: []domain.Edge{
			{ID: "e", Source: "p", Target: "g",
				SourceHandle: domain.HandlePrompt, TargetHandle: domain.HandlePrompt},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleWorkflow("wf1")))

	got, err := s.Load(ctx, "wf1")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Name)
	assert.Len(t, got.Nodes, 2)
	assert.Len(t, got.Edges, 1)
}

func TestLoadMissing(t *testing.T) {
	s := memory.NewStore()

	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func TestStoredCopyIsIsolated(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	wf := sampleWorkflow("wf1")
	require.NoError(t, s.Save(ctx, wf))
	wf.Nodes[0].Data.Prompt = "mutated"

	got, err := s.Load(ctx, "wf1")
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Nodes[0].Data.Prompt)

	// Mutating a loaded copy must not leak back either.
	got.Nodes[0].Data.Prompt = "also mutated"
	again, err := s.Load(ctx, "wf1")
	require.NoError(t, err)
	assert.Equal(t, "hi", again.Nodes[0].Data.Prompt)
}

func TestDeleteAndList(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleWorkflow("a")))
	require.NoError(t, s.Save(ctx, sampleWorkflow("b")))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "ghost"), "deleting a missing id is not an error")

	ids, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}
