// Package redis provides a Redis-backed ports.WorkflowStore. Workflows are
// JSON blobs under a key prefix, with a sorted-set index so List never scans
// the keyspace.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mosaicflow/mosaic/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "mosaic:"

// Store implements ports.WorkflowStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the store.
type Option func(*Store)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithTTL sets an expiry on stored workflows. Zero means no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// NewStore connects to Redis at the given address.
func NewStore(addr string, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{Addr: addr})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client, e.g. one shared with a session
// manager or a test server.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists the workflow and updates the index in one pipeline.
func (s *Store) Save(ctx context.Context, wf domain.Workflow) error {
	data, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("encode workflow %s: %w", wf.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(wf.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(wf.UpdatedAt.UnixNano()),
		Member: wf.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save workflow %s: %w", wf.ID, err)
	}
	return nil
}

// Load retrieves a workflow by id.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workflow, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("load workflow %s: %w", id, err)
	}

	var wf domain.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("decode workflow %s: %w", id, err)
	}
	return &wf, nil
}

// Delete removes the workflow and its index entry. Missing ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete workflow %s: %w", id, err)
	}
	return nil
}

// List returns the ids of all stored workflows, most recently updated last.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	return ids, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(id string) string {
	return s.prefix + "workflow:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "workflows"
}
