package runtime

import (
	"context"
	"fmt"

	"github.com/mosaicflow/mosaic/pkg/domain"
)

// Normalized defaults. Every optional knob gets an explicit value before the
// collaborator call so an unset field never varies between calls.
const (
	defaultDuration    = 5.0
	defaultResolution  = "720p"
	defaultVideoAspect = "16:9"
	defaultImageAspect = "1:1"
	defaultLanguage    = "en"
	noTransition       = "none"
)

// validationError is detected before any external call. It never sets the
// in-flight flag and is surfaced as a node-scoped message, not an exception.
type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// adapter binds one executable node kind to its readiness predicate and its
// execution routine. run returns the data patch to commit on success.
type adapter struct {
	canExecute func(g *graphIndex, node domain.Node) (bool, string)
	run        func(ctx context.Context, s *Scheduler, node domain.Node, g *graphIndex) (map[string]any, error)
}

var adapters = map[domain.NodeKind]*adapter{
	domain.KindImageGen: {
		canExecute: needsPrompt,
		run:        runImageGen,
	},
	domain.KindTextVideo: {
		canExecute: needsPrompt,
		run:        runTextVideo,
	},
	domain.KindFrameVideo: {
		canExecute: func(g *graphIndex, node domain.Node) (bool, string) {
			if imageAtHandle(g.sources(node.ID), domain.HandleFirstFrame) == "" {
				return false, "Connect an image for the first frame"
			}
			return true, ""
		},
		run: runFrameVideo,
	},
	domain.KindEffectVideo: {
		canExecute: func(g *graphIndex, node domain.Node) (bool, string) {
			if _, ok := extractImageURL(g.sources(node.ID)); !ok {
				return false, "Connect an image node"
			}
			if node.Data.Effect == "" {
				return false, "Choose an effect"
			}
			return true, ""
		},
		run: runEffectVideo,
	},
	domain.KindVideoConcat: {
		canExecute: needsVideos(1, "Connect at least 1 video"),
		run:        runConcat,
	},
	domain.KindVideoTransition: {
		canExecute: needsVideos(2, "Connect at least 2 videos"),
		run:        runTransition,
	},
	domain.KindVideoTrim: {
		canExecute: needsVideos(1, "Connect a video node"),
		run:        runTrim,
	},
	domain.KindVideoSubtitles: {
		canExecute: needsVideos(1, "Connect a video node"),
		run:        runSubtitles,
	},
}

func needsPrompt(g *graphIndex, node domain.Node) (bool, string) {
	if _, ok := extractPrompt(g.sources(node.ID)); !ok {
		return false, "Connect a Prompt node"
	}
	return true, ""
}

// needsVideos counts connected video-bearing sources, not produced outputs,
// so readiness can be judged before anything upstream has run.
func needsVideos(min int, reason string) func(*graphIndex, domain.Node) (bool, string) {
	return func(g *graphIndex, node domain.Node) (bool, string) {
		count := 0
		for _, s := range g.sources(node.ID) {
			switch domain.TypeOfHandle(s.targetHandle) {
			case domain.HandleTypeVideo, domain.HandleTypeMedia:
				count++
			}
		}
		if count < min {
			return false, reason
		}
		return true, ""
	}
}

func runImageGen(ctx context.Context, s *Scheduler, node domain.Node, g *graphIndex) (map[string]any, error) {
	in := g.sources(node.ID)
	prompt, ok := extractPrompt(in)
	if !ok || prompt == "" {
		return nil, invalid("no prompt provided: connect a Prompt node")
	}

	req := domain.GenerationRequest{
		Kind:        node.Kind,
		Prompt:      prompt,
		AspectRatio: orDefault(node.Data.AspectRatio, defaultImageAspect),
		Resolution:  orDefault(node.Data.Resolution, defaultResolution),
	}
	res, err := s.generate(ctx, node, req)
	if err != nil {
		return nil, err
	}
	return resultPatch(res, req.AspectRatio), nil
}

func runTextVideo(ctx context.Context, s *Scheduler, node domain.Node, g *graphIndex) (map[string]any, error) {
	in := g.sources(node.ID)
	prompt, ok := extractPrompt(in)
	if !ok || prompt == "" {
		return nil, invalid("no prompt provided: connect a Prompt node")
	}

	req := domain.GenerationRequest{
		Kind:        node.Kind,
		Prompt:      prompt,
		Duration:    orDefaultF(node.Data.Duration, defaultDuration),
		Resolution:  orDefault(node.Data.Resolution, defaultResolution),
		AspectRatio: orDefault(node.Data.AspectRatio, defaultVideoAspect),
	}
	// Optional start image steers the first frame.
	if imageURL, ok := extractImageURL(in); ok {
		safe, err := s.transportSafe(ctx, imageURL)
		if err != nil {
			return nil, err
		}
		req.ImageURL = safe
	}

	res, err := s.generate(ctx, node, req)
	if err != nil {
		return nil, err
	}
	return resultPatch(res, req.AspectRatio), nil
}

func runFrameVideo(ctx context.Context, s *Scheduler, node domain.Node, g *graphIndex) (map[string]any, error) {
	in := g.sources(node.ID)
	first := imageAtHandle(in, domain.HandleFirstFrame)
	if first == "" {
		return nil, invalid("no first frame image: connect an image to the firstFrame input")
	}

	req := domain.GenerationRequest{
		Kind:        node.Kind,
		Duration:    orDefaultF(node.Data.Duration, defaultDuration),
		Resolution:  orDefault(node.Data.Resolution, defaultResolution),
		AspectRatio: orDefault(node.Data.AspectRatio, defaultVideoAspect),
	}
	if prompt, ok := extractPrompt(in); ok {
		req.Prompt = prompt
	}

	var err error
	if req.FirstFrame, err = s.transportSafe(ctx, first); err != nil {
		return nil, err
	}
	if last := imageAtHandle(in, domain.HandleLastFrame); last != "" {
		if req.LastFrame, err = s.transportSafe(ctx, last); err != nil {
			return nil, err
		}
	}

	res, err := s.generate(ctx, node, req)
	if err != nil {
		return nil, err
	}
	return resultPatch(res, req.AspectRatio), nil
}

func runEffectVideo(ctx context.Context, s *Scheduler, node domain.Node, g *graphIndex) (map[string]any, error) {
	in := g.sources(node.ID)
	imageURL, ok := extractImageURL(in)
	if !ok {
		return nil, invalid("no image connected: connect an image node")
	}
	if node.Data.Effect == "" {
		return nil, invalid("no effect selected")
	}

	safe, err := s.transportSafe(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	req := domain.GenerationRequest{
		Kind:        node.Kind,
		ImageURL:    safe,
		Effect:      node.Data.Effect,
		Duration:    orDefaultF(node.Data.Duration, defaultDuration),
		Resolution:  orDefault(node.Data.Resolution, defaultResolution),
		AspectRatio: orDefault(node.Data.AspectRatio, defaultVideoAspect),
	}
	res, err := s.generate(ctx, node, req)
	if err != nil {
		return nil, err
	}
	return resultPatch(res, req.AspectRatio), nil
}

func runConcat(ctx context.Context, s *Scheduler, node domain.Node, g *graphIndex) (map[string]any, error) {
	vids := videoSources(g.sources(node.ID))
	if len(vids) < 1 {
		return nil, invalid("no videos connected: concat needs at least 1 video")
	}

	urls, aspect, err := editorInputs(ctx, s, vids)
	if err != nil {
		return nil, err
	}
	req := domain.GenerationRequest{
		Kind:        node.Kind,
		VideoURLs:   urls,
		AspectRatio: aspect,
		Transitions: normalizeTransitions(node.Data.Transitions, len(urls)-1),
	}
	res, err := s.generate(ctx, node, req)
	if err != nil {
		return nil, err
	}
	return resultPatch(res, req.AspectRatio), nil
}

func runTransition(ctx context.Context, s *Scheduler, node domain.Node, g *graphIndex) (map[string]any, error) {
	vids := videoSources(g.sources(node.ID))
	if len(vids) < 2 {
		return nil, invalid("transition needs at least 2 videos, got %d", len(vids))
	}

	urls, aspect, err := editorInputs(ctx, s, vids)
	if err != nil {
		return nil, err
	}
	req := domain.GenerationRequest{
		Kind:        node.Kind,
		VideoURLs:   urls,
		AspectRatio: aspect,
		Transitions: normalizeTransitions(node.Data.Transitions, len(urls)-1),
	}
	res, err := s.generate(ctx, node, req)
	if err != nil {
		return nil, err
	}
	return resultPatch(res, req.AspectRatio), nil
}

func runTrim(ctx context.Context, s *Scheduler, node domain.Node, g *graphIndex) (map[string]any, error) {
	in := g.sources(node.ID)
	videoURL, ok := extractVideoURL(in)
	if !ok {
		return nil, invalid("no video connected: connect a video node")
	}

	safe, err := s.transportSafe(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	start, end := node.Data.TrimStart, node.Data.TrimEnd
	if start < 0 {
		start = 0
	}
	if end != 0 && end <= start {
		return nil, invalid("trim end %.2fs must be after trim start %.2fs", end, start)
	}
	req := domain.GenerationRequest{
		Kind:      node.Kind,
		VideoURL:  safe,
		TrimStart: start,
		// TrimEnd zero means "to the end of the clip".
		TrimEnd:     end,
		AspectRatio: orDefault(node.Data.AspectRatio, defaultVideoAspect),
	}
	res, err := s.generate(ctx, node, req)
	if err != nil {
		return nil, err
	}
	return resultPatch(res, req.AspectRatio), nil
}

func runSubtitles(ctx context.Context, s *Scheduler, node domain.Node, g *graphIndex) (map[string]any, error) {
	in := g.sources(node.ID)
	videoURL, ok := extractVideoURL(in)
	if !ok {
		return nil, invalid("no video connected: connect a video node")
	}

	safe, err := s.transportSafe(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	req := domain.GenerationRequest{
		Kind:        node.Kind,
		VideoURL:    safe,
		Language:    orDefault(node.Data.Language, defaultLanguage),
		AspectRatio: orDefault(node.Data.AspectRatio, defaultVideoAspect),
	}
	res, err := s.generate(ctx, node, req)
	if err != nil {
		return nil, err
	}
	return resultPatch(res, req.AspectRatio), nil
}

// editorInputs converts the ordered video sources to transport-safe URLs and
// picks the effective aspect ratio: the first qualifying input's shape
// propagates downstream.
func editorInputs(ctx context.Context, s *Scheduler, vids []inputSource) ([]string, string, error) {
	urls := make([]string, 0, len(vids))
	aspect := ""
	for _, v := range vids {
		safe, err := s.transportSafe(ctx, nodeVideoURL(v.node))
		if err != nil {
			return nil, "", err
		}
		urls = append(urls, safe)
		if aspect == "" && v.node.Data.AspectRatio != "" {
			aspect = v.node.Data.AspectRatio
		}
	}
	return urls, orDefault(aspect, defaultVideoAspect), nil
}

// normalizeTransitions pads or trims the per-pair transition list to exactly
// pairs entries, defaulting any missing slot to the neutral transition.
func normalizeTransitions(transitions []string, pairs int) []string {
	if pairs < 0 {
		pairs = 0
	}
	out := make([]string, pairs)
	for i := range out {
		if i < len(transitions) && transitions[i] != "" {
			out[i] = transitions[i]
		} else {
			out[i] = noTransition
		}
	}
	return out
}

// resultPatch builds the data patch committed after a successful call.
func resultPatch(res *domain.GenerationResult, requestedAspect string) map[string]any {
	patch := map[string]any{}
	if res.ImageURL != "" {
		patch["imageUrl"] = res.ImageURL
	}
	if res.VideoURL != "" {
		patch["videoUrl"] = res.VideoURL
	}
	if res.Seed != 0 {
		patch["seed"] = res.Seed
	}
	// The collaborator's detected ratio wins over the requested one.
	if res.AspectRatio != "" {
		patch["aspectRatio"] = res.AspectRatio
	} else if requestedAspect != "" {
		patch["aspectRatio"] = requestedAspect
	}
	return patch
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultF(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
