package domain

import "errors"

// ErrWorkflowNotFound is returned when a workflow ID cannot be found in the store.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrNodeNotFound is returned when a node ID is not present in the graph.
var ErrNodeNotFound = errors.New("node not found")

// ErrNoGenerator is returned when execution is requested but no generation
// collaborator was configured.
var ErrNoGenerator = errors.New("no generator configured")
