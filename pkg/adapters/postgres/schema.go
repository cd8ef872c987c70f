package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workflows (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS workflow_nodes (
    id          TEXT NOT NULL,
    workflow_id TEXT NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
    kind        TEXT NOT NULL,
    pos_x       DOUBLE PRECISION NOT NULL DEFAULT 0,
    pos_y       DOUBLE PRECISION NOT NULL DEFAULT 0,
    data        JSONB NOT NULL DEFAULT '{}',
    ordinal     INT NOT NULL,
    PRIMARY KEY (workflow_id, id)
);

CREATE TABLE IF NOT EXISTS workflow_edges (
    id            TEXT NOT NULL,
    workflow_id   TEXT NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
    source        TEXT NOT NULL,
    target        TEXT NOT NULL,
    source_handle TEXT NOT NULL DEFAULT '',
    target_handle TEXT NOT NULL DEFAULT '',
    ordinal       INT NOT NULL,
    PRIMARY KEY (workflow_id, id),
    FOREIGN KEY (workflow_id, source) REFERENCES workflow_nodes(workflow_id, id) ON DELETE CASCADE,
    FOREIGN KEY (workflow_id, target) REFERENCES workflow_nodes(workflow_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_workflow_nodes_wf ON workflow_nodes(workflow_id);
CREATE INDEX IF NOT EXISTS idx_workflow_edges_wf ON workflow_edges(workflow_id);
`

// CreateSchema creates the workflow tables if they do not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the workflow tables.
func (s *Store) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS workflow_edges, workflow_nodes, workflows CASCADE;`)
	return err
}
