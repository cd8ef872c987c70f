// Package httpgen implements ports.Generator against a JSON-over-HTTP
// generation service. The request body is the normalized parameter set; the
// response carries the produced media references. Any backend speaking this
// shape plugs in without engine changes.
package httpgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mosaicflow/mosaic/pkg/domain"
)

const defaultTimeout = 5 * time.Minute

// Generator posts generation requests to a remote endpoint.
type Generator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// Option configures the generator.
type Option func(*Generator)

// WithAPIKey attaches a bearer token to every request.
func WithAPIKey(key string) Option {
	return func(g *Generator) { g.apiKey = key }
}

// WithHTTPClient replaces the underlying client, e.g. for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Generator) { g.client = client }
}

// NewGenerator creates a generator targeting the given endpoint URL.
func NewGenerator(endpoint string, opts ...Option) *Generator {
	g := &Generator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type errorResponse struct {
	Error string `json:"error"`
}

// Generate implements ports.Generator.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call generation service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read generation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("generation service: %s", errResp.Error)
		}
		return nil, fmt.Errorf("generation service returned status %d", resp.StatusCode)
	}

	var result domain.GenerationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode generation response: %w", err)
	}
	return &result, nil
}
