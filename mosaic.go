package mosaic

import (
	"context"
	"log/slog"
	"time"

	"github.com/mosaicflow/mosaic/internal/logging"
	"github.com/mosaicflow/mosaic/internal/runtime"
	"github.com/mosaicflow/mosaic/pkg/clipboard"
	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/mosaicflow/mosaic/pkg/graph"
	"github.com/mosaicflow/mosaic/pkg/history"
	"github.com/mosaicflow/mosaic/pkg/ports"
)

// Version is the library version, set at build time for releases.
var Version = "dev"

// Engine is the high-level entry point for the Mosaic library. It owns the
// editable graph, its undo history, a clipboard and the execution scheduler,
// and exposes a simplified API for hosts (CLI, HTTP server, embedded UI).
type Engine struct {
	store     *graph.Store
	hist      *history.Manager
	clip      *clipboard.Manager
	scheduler *runtime.Scheduler

	gen      ports.Generator
	media    ports.MediaResolver
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	debounce time.Duration
	delay    time.Duration
	onSelect func(nodeID string)
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithGenerator injects the media generation collaborator. Without one,
// executing any node fails with a structured error.
func WithGenerator(gen ports.Generator) Option {
	return func(e *Engine) { e.gen = gen }
}

// WithMediaResolver injects the resolver used to inline locally-hosted media
// before it is handed to the generator.
func WithMediaResolver(m ports.MediaResolver) Option {
	return func(e *Engine) { e.media = m }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithHistoryDebounce overrides the window for coalescing rapid position
// changes into a single undo step.
func WithHistoryDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithDispatchDelay overrides the settle pause before each node launch.
// Mostly useful to zero out in tests.
func WithDispatchDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// WithSelectionNotifier registers a callback fired when node selection
// changes. An empty id means nothing is selected.
func WithSelectionNotifier(fn func(nodeID string)) Option {
	return func(e *Engine) { e.onSelect = fn }
}

// New initializes a Mosaic Engine with an empty graph.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   logging.NewNop(),
		debounce: graph.DefaultDebounce,
		delay:    -1,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.hist = history.New()
	storeOpts := []graph.Option{
		graph.WithLogger(e.logger),
		graph.WithDebounce(e.debounce),
	}
	if e.onSelect != nil {
		storeOpts = append(storeOpts, graph.WithSelectionNotifier(e.onSelect))
	}
	e.store = graph.New(e.hist, storeOpts...)
	e.clip = clipboard.New(e.store.NewID)

	schedOpts := []runtime.Option{
		runtime.WithGenerator(e.gen),
		runtime.WithMediaResolver(e.media),
		runtime.WithHooks(e.hooks),
		runtime.WithLogger(e.logger),
	}
	if e.delay >= 0 {
		schedOpts = append(schedOpts, runtime.WithDispatchDelay(e.delay))
	}
	e.scheduler = runtime.NewScheduler(e.store, schedOpts...)
	return e
}

// Nodes returns a snapshot of the current nodes.
func (e *Engine) Nodes() []domain.Node { return e.store.Nodes() }

// Edges returns a snapshot of the current edges.
func (e *Engine) Edges() []domain.Edge { return e.store.Edges() }

// Node looks up a single node by id.
func (e *Engine) Node(id string) (domain.Node, bool) { return e.store.Node(id) }

// AddNode places a new node of the given kind on the canvas and returns it.
func (e *Engine) AddNode(kind domain.NodeKind, pos domain.Position, data domain.NodeData) domain.Node {
	n := domain.Node{
		ID:       e.store.NewID(),
		Kind:     kind,
		Position: pos,
		Data:     data,
	}
	e.store.ApplyNodeChanges([]graph.NodeChange{{Type: graph.ChangeAdd, Node: n}})
	return n
}

// ApplyNodeChanges applies a batch of node changes and returns the resulting
// node list.
func (e *Engine) ApplyNodeChanges(changes []graph.NodeChange) []domain.Node {
	return e.store.ApplyNodeChanges(changes)
}

// ApplyEdgeChanges applies a batch of edge changes and returns the resulting
// edge list.
func (e *Engine) ApplyEdgeChanges(changes []graph.EdgeChange) []domain.Edge {
	return e.store.ApplyEdgeChanges(changes)
}

// Connect attempts to add an edge. Incompatible or dangling connections are
// rejected silently; the second return value reports whether the edge landed.
func (e *Engine) Connect(edge domain.Edge) ([]domain.Edge, bool) {
	return e.store.Connect(edge)
}

// DeleteNode removes a node and every edge touching it.
func (e *Engine) DeleteNode(id string) { e.store.DeleteNode(id) }

// UpdateNodeData merges a partial data patch into a node's payload.
func (e *Engine) UpdateNodeData(id string, patch map[string]any) error {
	return e.store.UpdateNodeData(id, patch)
}

// SelectOnly marks a single node as selected and deselects the rest.
func (e *Engine) SelectOnly(id string) { e.store.SelectOnly(id) }

// SelectedIDs returns the ids of currently selected nodes.
func (e *Engine) SelectedIDs() []string { return e.store.SelectedIDs() }

// Undo steps the graph back one snapshot. It reports whether a step was
// available.
func (e *Engine) Undo() bool {
	snap, ok := e.hist.Undo()
	if !ok {
		return false
	}
	e.store.Restore(snap)
	return true
}

// Redo reapplies the next snapshot after an undo.
func (e *Engine) Redo() bool {
	snap, ok := e.hist.Redo()
	if !ok {
		return false
	}
	e.store.Restore(snap)
	return true
}

// CanUndo reports whether an undo step is available.
func (e *Engine) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether a redo step is available.
func (e *Engine) CanRedo() bool { return e.hist.CanRedo() }

// Copy captures the currently selected nodes, and the edges running between
// them, into the clipboard. Edges crossing the selection boundary are left
// behind.
func (e *Engine) Copy() {
	selected := make(map[string]bool)
	for _, id := range e.store.SelectedIDs() {
		selected[id] = true
	}
	e.clip.Copy(e.store.Nodes(), e.store.Edges(), selected)
}

// Paste materializes the clipboard contents with fresh ids and offset
// positions, selects the new nodes, and returns them. Pasting twice yields
// two independent copies. The whole paste is one undo step.
func (e *Engine) Paste() ([]domain.Node, []domain.Edge) {
	nodes, edges := e.clip.Paste()
	if len(nodes) == 0 {
		return nil, nil
	}
	e.store.Insert(nodes, edges, true)
	return nodes, edges
}

// CanExecute reports whether a node has the inputs it needs to run, with a
// user-facing reason when it does not.
func (e *Engine) CanExecute(id string) (bool, string) {
	return e.scheduler.CanExecute(id)
}

// ExecuteNode runs a single node to completion.
func (e *Engine) ExecuteNode(ctx context.Context, id string) domain.ExecResult {
	return e.scheduler.ExecuteNode(ctx, id)
}

// ExecuteAll runs every executable node in dependency order, dispatching
// independent branches concurrently.
func (e *Engine) ExecuteAll(ctx context.Context) domain.RunReport {
	return e.scheduler.ExecuteAll(ctx)
}

// Stop requests cooperative cancellation of a running ExecuteAll.
func (e *Engine) Stop() { e.scheduler.Stop() }

// Export packages the current graph as a named workflow for persistence.
func (e *Engine) Export(id, name string) domain.Workflow {
	now := time.Now().UTC()
	return domain.Workflow{
		ID:        id,
		Name:      name,
		Nodes:     domain.CloneNodes(e.store.Nodes()),
		Edges:     domain.CloneEdges(e.store.Edges()),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Load replaces the current graph with a stored workflow. The load becomes a
// single undo step.
func (e *Engine) Load(wf domain.Workflow) {
	e.store.SetGraph(domain.CloneNodes(wf.Nodes), domain.CloneEdges(wf.Edges))
}
