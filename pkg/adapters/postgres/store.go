// Package postgres provides a PostgreSQL-backed ports.WorkflowStore using
// pgx. Nodes and edges live in their own tables with a cascade from the
// workflow row, so deleting a workflow removes the whole graph.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mosaicflow/mosaic/pkg/domain"
)

// Store implements ports.WorkflowStore on PostgreSQL via pgx.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Connect opens a pool from a connection string and wraps it.
func Connect(ctx context.Context, connString string) (*Store, error) {
	db, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewStore(db), nil
}

// Save replaces the workflow and its graph in a single transaction.
func (s *Store) Save(ctx context.Context, wf domain.Workflow) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workflows (id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = $2, updated_at = $4`,
		wf.ID, wf.Name, wf.CreatedAt, wf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert workflow %s: %w", wf.ID, err)
	}

	// Rewrite the graph wholesale; edges go first via the node cascade.
	if _, err := tx.Exec(ctx,
		`DELETE FROM workflow_nodes WHERE workflow_id = $1`, wf.ID); err != nil {
		return fmt.Errorf("clear workflow %s: %w", wf.ID, err)
	}

	for i, n := range wf.Nodes {
		data, err := json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("encode node %s: %w", n.ID, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO workflow_nodes (id, workflow_id, kind, pos_x, pos_y, data, ordinal)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			n.ID, wf.ID, string(n.Kind), n.Position.X, n.Position.Y, data, i,
		)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
	}

	for i, e := range wf.Edges {
		_, err = tx.Exec(ctx,
			`INSERT INTO workflow_edges (id, workflow_id, source, target, source_handle, target_handle, ordinal)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ID, wf.ID, e.Source, e.Target, e.SourceHandle, e.TargetHandle, i,
		)
		if err != nil {
			return fmt.Errorf("insert edge %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit workflow %s: %w", wf.ID, err)
	}
	return nil
}

// Load retrieves a workflow with its nodes and edges in graph order.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workflow, error) {
	var wf domain.Workflow
	err := s.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM workflows WHERE id = $1`, id,
	).Scan(&wf.ID, &wf.Name, &wf.CreatedAt, &wf.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("load workflow %s: %w", id, err)
	}

	if wf.Nodes, err = s.loadNodes(ctx, id); err != nil {
		return nil, err
	}
	if wf.Edges, err = s.loadEdges(ctx, id); err != nil {
		return nil, err
	}
	return &wf, nil
}

func (s *Store) loadNodes(ctx context.Context, id string) ([]domain.Node, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, kind, pos_x, pos_y, data
		 FROM workflow_nodes WHERE workflow_id = $1 ORDER BY ordinal`, id)
	if err != nil {
		return nil, fmt.Errorf("load nodes for %s: %w", id, err)
	}
	defer rows.Close()

	nodes := []domain.Node{}
	for rows.Next() {
		var n domain.Node
		var kind string
		var data []byte
		if err := rows.Scan(&n.ID, &kind, &n.Position.X, &n.Position.Y, &data); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n.Kind = domain.NodeKind(kind)
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("decode node %s: %w", n.ID, err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes for %s: %w", id, err)
	}
	return nodes, nil
}

func (s *Store) loadEdges(ctx context.Context, id string) ([]domain.Edge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, source, target, source_handle, target_handle
		 FROM workflow_edges WHERE workflow_id = $1 ORDER BY ordinal`, id)
	if err != nil {
		return nil, fmt.Errorf("load edges for %s: %w", id, err)
	}
	defer rows.Close()

	edges := []domain.Edge{}
	for rows.Next() {
		var e domain.Edge
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.SourceHandle, &e.TargetHandle); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges for %s: %w", id, err)
	}
	return edges, nil
}

// Delete removes the workflow; nodes and edges cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete workflow %s: %w", id, err)
	}
	return nil
}

// List returns the ids of all stored workflows, oldest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM workflows ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan workflow id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflows: %w", err)
	}
	return ids, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.db.Close()
}
