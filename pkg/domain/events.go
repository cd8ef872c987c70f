package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart   EventType = "run_start"
	EventRunFinish  EventType = "run_finish"
	EventNodeStart  EventType = "node_start"
	EventNodeFinish EventType = "node_finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent marks the dispatch or settlement of a single node.
type NodeEvent struct {
	EventBase
	NodeID  string   `json:"node_id"`
	Kind    NodeKind `json:"kind"`
	Success bool     `json:"success,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// RunEvent marks the start or end of a whole-graph run.
type RunEvent struct {
	EventBase
	Total     int  `json:"total"`
	Completed int  `json:"completed,omitempty"`
	Failed    int  `json:"failed,omitempty"`
	Stopped   bool `json:"stopped,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. Nil hooks are
// skipped.
type LifecycleHooks struct {
	OnRunStart   func(context.Context, *RunEvent)
	OnRunFinish  func(context.Context, *RunEvent)
	OnNodeStart  func(context.Context, *NodeEvent)
	OnNodeFinish func(context.Context, *NodeEvent)
}
