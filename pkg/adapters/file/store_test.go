package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mosaicflow/mosaic/pkg/adapters/file"
	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWorkflow(id string) domain.Workflow {
	return domain.Workflow{
		ID:   id,
		Name: "demo",
		Nodes: []domain.Node{
			{ID: "p", Kind: domain.KindPrompt, Position: domain.Position{X: 10, Y: 20},
				Data: domain.NodeData{Prompt: "hello"}},
			{ID: "v", Kind: domain.KindTextVideo,
				Data: domain.NodeData{Duration: 8, AspectRatio: "9:16"}},
		},
		Edges: []domain.Edge{
			{ID: "e", Source: "p", Target: "v",
				SourceHandle: domain.HandlePrompt, TargetHandle: domain.HandlePrompt},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := file.NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleWorkflow("wf1")))

	got, err := s.Load(ctx, "wf1")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Name)
	require.Len(t, got.Nodes, 2)
	assert.Equal(t, 10.0, got.Nodes[0].Position.X)
	assert.Equal(t, 8.0, got.Nodes[1].Data.Duration)
	require.Len(t, got.Edges, 1)
	assert.Equal(t, domain.HandlePrompt, got.Edges[0].TargetHandle)
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")
	_, err := file.NewStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadMissing(t *testing.T) {
	s, err := file.NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	s, err := file.NewStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleWorkflow("wf1")))

	updated := sampleWorkflow("wf1")
	updated.Name = "renamed"
	require.NoError(t, s.Save(ctx, updated))

	got, err := s.Load(ctx, "wf1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	// No temp files left behind after the rename.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "wf1.yaml", entries[0].Name())
}

func TestDeleteAndList(t *testing.T) {
	s, err := file.NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleWorkflow("a")))
	require.NoError(t, s.Save(ctx, sampleWorkflow("b")))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "ghost"))

	ids, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := file.NewStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleWorkflow("wf1")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.yaml"), []byte("x"), 0o644))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"wf1"}, ids)
}
