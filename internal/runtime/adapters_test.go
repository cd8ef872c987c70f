package runtime

import (
	"context"
	"testing"

	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/mosaicflow/mosaic/pkg/graph"
	"github.com/mosaicflow/mosaic/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanExecuteReadinessReasons(t *testing.T) {
	cases := []struct {
		name   string
		nodes  []domain.Node
		edges  []domain.Edge
		target string
		reason string
	}{
		{
			name:   "image gen without prompt",
			nodes:  []domain.Node{node("img", domain.KindImageGen)},
			target: "img",
			reason: "Connect a Prompt node",
		},
		{
			name:   "text video without prompt",
			nodes:  []domain.Node{node("vid", domain.KindTextVideo)},
			target: "vid",
			reason: "Connect a Prompt node",
		},
		{
			name:   "frame video without first frame",
			nodes:  []domain.Node{node("fv", domain.KindFrameVideo)},
			target: "fv",
			reason: "Connect an image for the first frame",
		},
		{
			name:   "effect video without image",
			nodes:  []domain.Node{node("fx", domain.KindEffectVideo)},
			target: "fx",
			reason: "Connect an image node",
		},
		{
			name: "effect video without effect",
			nodes: []domain.Node{
				{ID: "src", Kind: domain.KindImageInput, Data: domain.NodeData{ImageURL: "https://x/a.png"}},
				node("fx", domain.KindEffectVideo),
			},
			edges:  []domain.Edge{handleEdge("src", "fx", domain.HandleResult, domain.HandleImage)},
			target: "fx",
			reason: "Choose an effect",
		},
		{
			name:   "concat without videos",
			nodes:  []domain.Node{node("cat", domain.KindVideoConcat)},
			target: "cat",
			reason: "Connect at least 1 video",
		},
		{
			name: "transition with one video",
			nodes: []domain.Node{
				videoNode("v1", "a.mp4"),
				node("tr", domain.KindVideoTransition),
			},
			edges:  []domain.Edge{handleEdge("v1", "tr", domain.HandleResult, "video1")},
			target: "tr",
			reason: "Connect at least 2 videos",
		},
		{
			name:   "trim without video",
			nodes:  []domain.Node{node("trim", domain.KindVideoTrim)},
			target: "trim",
			reason: "Connect a video node",
		},
		{
			name:   "subtitles without video",
			nodes:  []domain.Node{node("subs", domain.KindVideoSubtitles)},
			target: "subs",
			reason: "Connect a video node",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _, _ := newTestScheduler(t, tc.nodes, tc.edges)
			ok, reason := s.CanExecute(tc.target)
			assert.False(t, ok)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestCanExecuteCountsConnectionsNotOutputs(t *testing.T) {
	// The upstream generator has not produced a video yet, but the
	// connection alone makes the editor ready to schedule.
	s, _, _ := newTestScheduler(t,
		[]domain.Node{
			promptNode("p", "x"),
			node("vid", domain.KindTextVideo),
			node("trim", domain.KindVideoTrim),
		},
		[]domain.Edge{
			handleEdge("p", "vid", domain.HandlePrompt, domain.HandlePrompt),
			handleEdge("vid", "trim", domain.HandleResult, domain.HandleVideo),
		},
	)

	ok, reason := s.CanExecute("trim")
	assert.True(t, ok, reason)
}

func TestRunTransitionRejectsSingleProducedVideo(t *testing.T) {
	// Two connections satisfy readiness, but only one upstream carries a
	// payload at run time.
	s, _, _ := newTestScheduler(t,
		[]domain.Node{
			videoNode("v1", "a.mp4"),
			videoNode("v2", ""),
			node("tr", domain.KindVideoTransition),
		},
		[]domain.Edge{
			handleEdge("v1", "tr", domain.HandleResult, "video1"),
			handleEdge("v2", "tr", domain.HandleResult, "video2"),
		},
	)

	res := s.ExecuteNode(context.Background(), "tr")
	require.False(t, res.Success)
	assert.Equal(t, "transition needs at least 2 videos, got 1", res.Error)
}

func TestRunTrimRejectsInvertedWindow(t *testing.T) {
	s, _, _ := newTestScheduler(t,
		[]domain.Node{
			videoNode("v", "https://x/a.mp4"),
			{ID: "trim", Kind: domain.KindVideoTrim,
				Data: domain.NodeData{TrimStart: 5, TrimEnd: 2}},
		},
		[]domain.Edge{handleEdge("v", "trim", domain.HandleResult, domain.HandleVideo)},
	)

	res := s.ExecuteNode(context.Background(), "trim")
	require.False(t, res.Success)
	assert.Equal(t, "trim end 2.00s must be after trim start 5.00s", res.Error)
}

func TestRunTrimZeroEndMeansClipEnd(t *testing.T) {
	s, _, gen := newTestScheduler(t,
		[]domain.Node{
			videoNode("v", "https://x/a.mp4"),
			{ID: "trim", Kind: domain.KindVideoTrim,
				Data: domain.NodeData{TrimStart: 3}},
		},
		[]domain.Edge{handleEdge("v", "trim", domain.HandleResult, domain.HandleVideo)},
	)

	res := s.ExecuteNode(context.Background(), "trim")
	require.True(t, res.Success, res.Error)
	require.Len(t, gen.calls, 1)
	assert.Equal(t, 3.0, gen.calls[0].TrimStart)
	assert.Zero(t, gen.calls[0].TrimEnd)
}

func TestRunAppliesNormalizedDefaults(t *testing.T) {
	s, _, gen := newTestScheduler(t,
		[]domain.Node{
			promptNode("p", "a storm"),
			node("vid", domain.KindTextVideo),
		},
		[]domain.Edge{handleEdge("p", "vid", domain.HandlePrompt, domain.HandlePrompt)},
	)

	res := s.ExecuteNode(context.Background(), "vid")
	require.True(t, res.Success, res.Error)

	require.Len(t, gen.calls, 1)
	req := gen.calls[0]
	assert.Equal(t, "a storm", req.Prompt)
	assert.Equal(t, 5.0, req.Duration)
	assert.Equal(t, "720p", req.Resolution)
	assert.Equal(t, "16:9", req.AspectRatio)
}

func TestRunSubtitlesDefaultsLanguage(t *testing.T) {
	s, _, gen := newTestScheduler(t,
		[]domain.Node{
			videoNode("v", "https://x/a.mp4"),
			node("subs", domain.KindVideoSubtitles),
		},
		[]domain.Edge{handleEdge("v", "subs", domain.HandleResult, domain.HandleVideo)},
	)

	res := s.ExecuteNode(context.Background(), "subs")
	require.True(t, res.Success, res.Error)
	require.Len(t, gen.calls, 1)
	assert.Equal(t, "en", gen.calls[0].Language)
}

func TestRunConcatOrdersAndPadsTransitions(t *testing.T) {
	s, _, gen := newTestScheduler(t,
		[]domain.Node{
			videoNode("b", "https://x/b.mp4"),
			videoNode("a", "https://x/a.mp4"),
			videoNode("c", "https://x/c.mp4"),
			{ID: "cat", Kind: domain.KindVideoConcat,
				Data: domain.NodeData{Transitions: []string{"fade"}}},
		},
		[]domain.Edge{
			handleEdge("b", "cat", domain.HandleResult, "video2"),
			handleEdge("a", "cat", domain.HandleResult, "video1"),
			handleEdge("c", "cat", domain.HandleResult, "video3"),
		},
	)

	res := s.ExecuteNode(context.Background(), "cat")
	require.True(t, res.Success, res.Error)

	require.Len(t, gen.calls, 1)
	req := gen.calls[0]
	assert.Equal(t, []string{"https://x/a.mp4", "https://x/b.mp4", "https://x/c.mp4"}, req.VideoURLs,
		"handle index, not connection order, decides the sequence")
	assert.Equal(t, []string{"fade", "none"}, req.Transitions,
		"missing pairs pad with the neutral transition")
}

func TestNormalizeTransitions(t *testing.T) {
	assert.Equal(t, []string{"fade", "none", "none"},
		normalizeTransitions([]string{"fade"}, 3))
	assert.Equal(t, []string{"fade"},
		normalizeTransitions([]string{"fade", "wipe"}, 1), "extras are trimmed")
	assert.Equal(t, []string{"none"},
		normalizeTransitions([]string{""}, 1), "empty slots default")
	assert.Empty(t, normalizeTransitions([]string{"fade"}, 0))
	assert.Empty(t, normalizeTransitions(nil, -1))
}

func TestResultPatchDetectedRatioWins(t *testing.T) {
	patch := resultPatch(&domain.GenerationResult{
		VideoURL:    "out.mp4",
		AspectRatio: "9:16",
		Seed:        42,
	}, "16:9")

	assert.Equal(t, map[string]any{
		"videoUrl":    "out.mp4",
		"aspectRatio": "9:16",
		"seed":        int64(42),
	}, patch)
}

func TestResultPatchFallsBackToRequestedRatio(t *testing.T) {
	patch := resultPatch(&domain.GenerationResult{ImageURL: "out.png"}, "1:1")

	assert.Equal(t, "out.png", patch["imageUrl"])
	assert.Equal(t, "1:1", patch["aspectRatio"])
	assert.NotContains(t, patch, "seed")
}

func TestEditorInputsAspectFromFirstQualifyingInput(t *testing.T) {
	s := NewScheduler(graph.New(history.New()))
	vids := []inputSource{
		{node: videoNode("a", "https://x/a.mp4")},
		{node: domain.Node{ID: "b", Kind: domain.KindVideoInput,
			Data: domain.NodeData{VideoURL: "https://x/b.mp4", AspectRatio: "9:16"}}},
		{node: domain.Node{ID: "c", Kind: domain.KindVideoInput,
			Data: domain.NodeData{VideoURL: "https://x/c.mp4", AspectRatio: "4:3"}}},
	}

	urls, aspect, err := editorInputs(context.Background(), s, vids)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/a.mp4", "https://x/b.mp4", "https://x/c.mp4"}, urls)
	assert.Equal(t, "9:16", aspect, "first input with a ratio decides")
}

func TestEditorInputsDefaultAspect(t *testing.T) {
	s := NewScheduler(graph.New(history.New()))
	_, aspect, err := editorInputs(context.Background(), s,
		[]inputSource{{node: videoNode("a", "https://x/a.mp4")}})
	require.NoError(t, err)
	assert.Equal(t, "16:9", aspect)
}
