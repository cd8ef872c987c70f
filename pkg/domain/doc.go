// Package domain holds the shared data model of the engine: nodes, edges,
// handle typing, workflow records, execution results and lifecycle events.
// It has no dependencies on the engine internals so adapters and hosts can
// consume it freely.
package domain
