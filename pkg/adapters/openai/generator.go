// Package openai implements ports.Generator for image generation against the
// OpenAI images API (or any compatible endpoint via a custom base URL). It
// only handles image requests; route video kinds to another backend with
// genmux.
package openai

import (
	"context"
	"fmt"

	"github.com/mosaicflow/mosaic/pkg/domain"
	backend "github.com/sashabaranov/go-openai"
)

// Generator calls the images endpoint for image generation requests.
type Generator struct {
	client *backend.Client
	model  string
}

// Option configures the generator.
type Option func(*Generator)

// WithModel overrides the image model.
func WithModel(model string) Option {
	return func(g *Generator) { g.model = model }
}

// NewGenerator creates a generator. baseURL may be empty for the default
// endpoint.
func NewGenerator(apiKey, baseURL string, opts ...Option) *Generator {
	config := backend.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	g := &Generator{
		client: backend.NewClientWithConfig(config),
		model:  backend.CreateImageModelDallE3,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements ports.Generator for image kinds.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if req.Kind != domain.KindImageGen {
		return nil, fmt.Errorf("openai generator does not support kind %q", req.Kind)
	}
	if req.Prompt == "" {
		return nil, fmt.Errorf("image generation requires a prompt")
	}

	resp, err := g.client.CreateImage(ctx, backend.ImageRequest{
		Model:          g.model,
		Prompt:         req.Prompt,
		Size:           sizeForAspect(req.AspectRatio),
		N:              1,
		ResponseFormat: backend.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image generation returned no data")
	}

	return &domain.GenerationResult{
		ImageURL:    resp.Data[0].URL,
		AspectRatio: req.AspectRatio,
	}, nil
}

// sizeForAspect maps an aspect ratio to the nearest supported image size.
func sizeForAspect(ratio string) string {
	switch ratio {
	case "16:9", "4:3":
		return backend.CreateImageSize1792x1024
	case "9:16", "3:4":
		return backend.CreateImageSize1024x1792
	default:
		return backend.CreateImageSize1024x1024
	}
}
