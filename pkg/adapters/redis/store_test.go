package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mosaicflow/mosaic/pkg/adapters/redis"
	"github.com/mosaicflow/mosaic/pkg/domain"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redis.NewFromClient(client, opts...), mr
}

func sampleWorkflow(id string, updated time.Time) domain.Workflow {
	return domain.Workflow{
		ID:   id,
		Name: "demo",
		Nodes: []domain.Node{
			{ID: "p", Kind: domain.KindPrompt, Data: domain.NodeData{Prompt: "hi"}},
		},
		UpdatedAt: updated,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleWorkflow("wf1", time.Now())))

	got, err := s.Load(ctx, "wf1")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Name)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "hi", got.Nodes[0].Data.Prompt)
}

func TestLoadMissing(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func TestListOrdersByUpdateTime(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	require.NoError(t, s.Save(ctx, sampleWorkflow("newest", base.Add(2*time.Hour))))
	require.NoError(t, s.Save(ctx, sampleWorkflow("oldest", base)))
	require.NoError(t, s.Save(ctx, sampleWorkflow("middle", base.Add(time.Hour))))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"oldest", "middle", "newest"}, ids)
}

func TestDeleteRemovesBlobAndIndexEntry(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleWorkflow("wf1", time.Now())))
	require.NoError(t, s.Delete(ctx, "wf1"))

	_, err := s.Load(ctx, "wf1")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.False(t, mr.Exists("mosaic:workflow:wf1"))

	require.NoError(t, s.Delete(ctx, "ghost"), "deleting a missing id is not an error")
}

func TestCustomPrefix(t *testing.T) {
	s, mr := newTestStore(t, redis.WithPrefix("team42:"))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleWorkflow("wf1", time.Now())))

	assert.True(t, mr.Exists("team42:workflow:wf1"))
	assert.False(t, mr.Exists("mosaic:workflow:wf1"))
}

func TestTTLExpiresWorkflow(t *testing.T) {
	s, mr := newTestStore(t, redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleWorkflow("wf1", time.Now())))

	mr.FastForward(2 * time.Minute)

	_, err := s.Load(ctx, "wf1")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}
