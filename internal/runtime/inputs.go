package runtime

import (
	"sort"

	"github.com/mosaicflow/mosaic/pkg/domain"
)

// inputSource is one resolved upstream connection of a node: the source node
// plus the handle pair the edge travels over.
type inputSource struct {
	node         domain.Node
	sourceHandle string
	targetHandle string
}

// sources resolves the incoming edges of a node in edge-list order. When two
// upstream nodes could satisfy the same input, the first match in this order
// wins; that tie-break is deterministic and deliberate.
func (g *graphIndex) sources(id string) []inputSource {
	var out []inputSource
	for _, e := range g.incoming[id] {
		n, ok := g.nodes[e.Source]
		if !ok {
			continue
		}
		out = append(out, inputSource{
			node:         n,
			sourceHandle: e.SourceHandle,
			targetHandle: e.TargetHandle,
		})
	}
	return out
}

// extractPrompt returns the prompt text of the first connected prompt source.
func extractPrompt(sources []inputSource) (string, bool) {
	for _, s := range sources {
		if s.sourceHandle == domain.HandlePrompt || s.node.Kind == domain.KindPrompt {
			return s.node.Data.Prompt, true
		}
	}
	return "", false
}

// nodeImageURL returns the image payload a node can contribute, if any.
func nodeImageURL(n domain.Node) string {
	switch n.Kind {
	case domain.KindImageInput, domain.KindImageGen:
		return n.Data.ImageURL
	case domain.KindFileInput:
		return n.Data.FileURL
	}
	return ""
}

// nodeVideoURL returns the video payload a node can contribute, if any.
func nodeVideoURL(n domain.Node) string {
	switch n.Kind {
	case domain.KindVideoInput:
		return n.Data.VideoURL
	case domain.KindFileInput:
		return n.Data.FileURL
	case domain.KindTextVideo, domain.KindFrameVideo, domain.KindEffectVideo,
		domain.KindVideoConcat, domain.KindVideoTrim,
		domain.KindVideoSubtitles, domain.KindVideoTransition:
		return n.Data.VideoURL
	}
	return ""
}

// extractImageURL returns the image reference from the first matching source.
// A direct image/result handle match is favored over an incidental kind
// match.
func extractImageURL(sources []inputSource) (string, bool) {
	for _, s := range sources {
		t := domain.TypeOfHandle(s.sourceHandle)
		if t == domain.HandleTypeImage || t == domain.HandleTypeMedia {
			if url := nodeImageURL(s.node); url != "" {
				return url, true
			}
		}
	}
	for _, s := range sources {
		if url := nodeImageURL(s.node); url != "" {
			return url, true
		}
	}
	return "", false
}

// extractVideoURL is the symmetric rule for video payloads.
func extractVideoURL(sources []inputSource) (string, bool) {
	for _, s := range sources {
		t := domain.TypeOfHandle(s.sourceHandle)
		if t == domain.HandleTypeVideo || t == domain.HandleTypeMedia {
			if url := nodeVideoURL(s.node); url != "" {
				return url, true
			}
		}
	}
	for _, s := range sources {
		if url := nodeVideoURL(s.node); url != "" {
			return url, true
		}
	}
	return "", false
}

// imageAtHandle returns the image landing on a specific target handle.
func imageAtHandle(sources []inputSource, handle string) string {
	for _, s := range sources {
		if s.targetHandle == handle {
			if url := nodeImageURL(s.node); url != "" {
				return url
			}
		}
	}
	return ""
}

// videoSources filters sources to video-bearing connections and sorts them by
// the numeric suffix of the target handle (video1 before video2). The order
// defines the final concatenation/transition order, so it must be stable and
// independent of connection order.
func videoSources(sources []inputSource) []inputSource {
	var out []inputSource
	for _, s := range sources {
		if nodeVideoURL(s.node) != "" {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return domain.HandleIndex(out[i].targetHandle) < domain.HandleIndex(out[j].targetHandle)
	})
	return out
}
