// Package genmux routes generation requests to different backends by node
// kind, so image generation can run against one service and video editing
// against another.
package genmux

import (
	"context"

	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/mosaicflow/mosaic/pkg/ports"
)

// Mux dispatches by request kind, with an optional fallback for unrouted
// kinds.
type Mux struct {
	routes   map[domain.NodeKind]ports.Generator
	fallback ports.Generator
}

// New creates an empty mux.
func New() *Mux {
	return &Mux{routes: make(map[domain.NodeKind]ports.Generator)}
}

// Route binds one or more kinds to a backend. Later bindings overwrite
// earlier ones.
func (m *Mux) Route(gen ports.Generator, kinds ...domain.NodeKind) *Mux {
	for _, k := range kinds {
		m.routes[k] = gen
	}
	return m
}

// Fallback sets the backend for kinds with no explicit route.
func (m *Mux) Fallback(gen ports.Generator) *Mux {
	m.fallback = gen
	return m
}

// Generate implements ports.Generator.
func (m *Mux) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if gen, ok := m.routes[req.Kind]; ok {
		return gen.Generate(ctx, req)
	}
	if m.fallback != nil {
		return m.fallback.Generate(ctx, req)
	}
	return nil, domain.ErrNoGenerator
}
