package ports

import (
	"context"

	"github.com/mosaicflow/mosaic/pkg/domain"
)

// Generator is the generation/editing collaborator. The engine does not know
// or care how the call is transported, only that it is asynchronous and can
// fail with a human-readable message.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	return f(ctx, req)
}
