package runtime

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mosaicflow/mosaic/pkg/graph"
	"github.com/mosaicflow/mosaic/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver serves fixed bytes and halves the payload per Encode call
// until floor is reached.
type stubResolver struct {
	data     []byte
	mime     string
	fetchErr error
	floor    int
	encoded  []int
}

func (r *stubResolver) Fetch(_ context.Context, ref string) ([]byte, string, error) {
	if r.fetchErr != nil {
		return nil, "", r.fetchErr
	}
	return r.data, r.mime, nil
}

func (r *stubResolver) Encode(_ context.Context, data []byte, _ string, quality int) ([]byte, error) {
	r.encoded = append(r.encoded, quality)
	next := len(data) / 2
	if next < r.floor {
		next = r.floor
	}
	return bytes.Repeat([]byte{'x'}, next), nil
}

func TestIsRemoteRef(t *testing.T) {
	assert.True(t, isRemoteRef("https://cdn.example.com/a.png"))
	assert.True(t, isRemoteRef("http://host/a.png"))
	assert.True(t, isRemoteRef("data:image/png;base64,AAAA"))
	assert.False(t, isRemoteRef("/uploads/a.png"))
	assert.False(t, isRemoteRef("file-store://a.png"))
}

func TestInlineRefSmallPayloadSkipsLadder(t *testing.T) {
	r := &stubResolver{data: []byte("tiny"), mime: "image/png"}

	out, err := inlineRef(context.Background(), r, "/uploads/a.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/png;base64,"))
	assert.Empty(t, r.encoded, "payloads under the ceiling are never recompressed")
}

func TestInlineRefWalksLadderUntilFit(t *testing.T) {
	// 12 MiB halves to 6 then 3; two rungs suffice.
	r := &stubResolver{
		data:  bytes.Repeat([]byte{'x'}, 12<<20),
		mime:  "image/jpeg",
		floor: 1,
	}

	out, err := inlineRef(context.Background(), r, "/uploads/big.jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))
	assert.Equal(t, []int{85, 70}, r.encoded, "stops at the first rung that fits")
}

func TestInlineRefAcceptsLowestRungEvenWhenOversize(t *testing.T) {
	// The floor keeps every rung above the ceiling. The last rung is still
	// accepted instead of failing the node.
	r := &stubResolver{
		data:  bytes.Repeat([]byte{'x'}, 16<<20),
		mime:  "image/jpeg",
		floor: 8 << 20,
	}

	out, err := inlineRef(context.Background(), r, "/uploads/huge.jpg")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, []int{85, 70, 55, 40, 25}, r.encoded, "the whole ladder is tried")
}

func TestInlineRefFetchFailure(t *testing.T) {
	r := &stubResolver{fetchErr: fmt.Errorf("gone")}

	_, err := inlineRef(context.Background(), r, "/uploads/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `resolve media reference "/uploads/missing.png"`)
}

func TestTransportSafePassesRemoteAndEmptyThrough(t *testing.T) {
	s := NewScheduler(graph.New(history.New()))

	out, err := s.transportSafe(context.Background(), "https://cdn/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a.png", out)

	out, err = s.transportSafe(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestTransportSafeLocalRefNeedsResolver(t *testing.T) {
	s := NewScheduler(graph.New(history.New()))

	_, err := s.transportSafe(context.Background(), "/uploads/a.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no media resolver configured")
}

func TestTransportSafeInlinesLocalRef(t *testing.T) {
	r := &stubResolver{data: []byte("pixels"), mime: "image/png"}
	s := NewScheduler(graph.New(history.New()), WithMediaResolver(r))

	out, err := s.transportSafe(context.Background(), "/uploads/a.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/png;base64,"))
}
