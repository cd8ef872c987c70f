package ports

import (
	"context"

	"github.com/mosaicflow/mosaic/pkg/domain"
)

// WorkflowStore persists named workflows. The engine only produces and
// consumes (Nodes, Edges) pairs and is agnostic to where they live.
type WorkflowStore interface {
	// Save persists the workflow under its ID, overwriting any previous version.
	Save(ctx context.Context, wf domain.Workflow) error

	// Load retrieves a workflow by ID.
	// Returns domain.ErrWorkflowNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Workflow, error)

	// Delete removes the workflow. Deleting a missing workflow is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored workflows.
	List(ctx context.Context) ([]string, error)
}
