// Package runtime contains the execution core: dependency resolution, input
// extraction, the per-kind node adapters and the wave scheduler that runs a
// graph to completion.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mosaicflow/mosaic/internal/logging"
	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/mosaicflow/mosaic/pkg/graph"
	"github.com/mosaicflow/mosaic/pkg/ports"
)

// deadlockReason marks nodes stranded by an unsatisfiable dependency.
const deadlockReason = "dependencies could not be satisfied"

// Scheduler orchestrates single-node and whole-graph execution against a
// graph store.
type Scheduler struct {
	store  *graph.Store
	gen    ports.Generator
	media  ports.MediaResolver
	hooks  domain.LifecycleHooks
	logger *slog.Logger

	// dispatchDelay is a short pause before each node launch, letting prior
	// state writes settle before they are read again.
	dispatchDelay time.Duration

	stopped atomic.Bool
}

// Option configures the scheduler.
type Option func(*Scheduler)

// WithGenerator sets the generation collaborator.
func WithGenerator(gen ports.Generator) Option {
	return func(s *Scheduler) { s.gen = gen }
}

// WithMediaResolver sets the media reference resolution collaborator.
func WithMediaResolver(m ports.MediaResolver) Option {
	return func(s *Scheduler) { s.media = m }
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Scheduler) { s.hooks = hooks }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// WithDispatchDelay overrides the pre-dispatch settle delay.
func WithDispatchDelay(d time.Duration) Option {
	return func(s *Scheduler) { s.dispatchDelay = d }
}

// NewScheduler creates a scheduler bound to the given store.
func NewScheduler(store *graph.Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:         store,
		logger:        logging.NewNop(),
		dispatchDelay: 10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stop requests cooperative cancellation: in-flight calls are not forcibly
// aborted, but no new nodes launch and the run returns a stopped report.
func (s *Scheduler) Stop() {
	s.stopped.Store(true)
}

// CanExecute answers whether a node's currently-connected inputs are
// sufficient to run it, with a user-facing reason when they are not.
func (s *Scheduler) CanExecute(id string) (bool, string) {
	node, ok := s.store.Node(id)
	if !ok {
		return false, "node not found"
	}
	ad, ok := adapters[node.Kind]
	if !ok {
		return false, fmt.Sprintf("node kind %q does not support execution", node.Kind)
	}
	return ad.canExecute(s.index(), node)
}

// ExecuteNode runs a single node: resolve inputs, dispatch to the kind's
// adapter, commit the result. It never panics past its own boundary; the
// caller always gets a structured outcome. The in-flight flag is cleared on
// every exit path.
func (s *Scheduler) ExecuteNode(ctx context.Context, id string) domain.ExecResult {
	node, ok := s.store.Node(id)
	if !ok {
		return fail(id, fmt.Sprintf("node %s not found", id))
	}
	ad, ok := adapters[node.Kind]
	if !ok {
		return fail(id, fmt.Sprintf("node kind %q does not support execution", node.Kind))
	}
	if s.gen == nil {
		return fail(id, domain.ErrNoGenerator.Error())
	}

	s.emitNodeStart(ctx, node)
	s.logger.Debug("executing node", "node", id, "kind", node.Kind)

	patch, err := ad.run(ctx, s, node, s.index())
	if err != nil {
		errPatch := map[string]any{"error": err.Error()}
		// A validation failure happens before the in-flight flag is ever
		// set; everything else must clear it.
		var verr *validationError
		if !errors.As(err, &verr) {
			errPatch["isGenerating"] = false
		}
		if uerr := s.store.UpdateNodeData(id, errPatch); uerr != nil {
			s.logger.Warn("failed to record node error", "node", id, "err", uerr)
		}
		s.logger.Debug("node failed", "node", id, "err", err)
		s.emitNodeFinish(ctx, node, false, err.Error())
		return fail(id, err.Error())
	}

	patch["isGenerating"] = false
	patch["error"] = ""
	if err := s.store.UpdateNodeData(id, patch); err != nil {
		s.emitNodeFinish(ctx, node, false, err.Error())
		return fail(id, err.Error())
	}
	s.propagateAspect(id, patch)

	s.logger.Debug("node completed", "node", id)
	s.emitNodeFinish(ctx, node, true, "")
	return domain.ExecResult{NodeID: id, Success: true}
}

// ExecuteAll runs every executable node in dependency order, dispatching
// independent branches concurrently in waves. Dependencies are resolved once
// per pass up front; a node is never executed twice in one pass.
func (s *Scheduler) ExecuteAll(ctx context.Context) domain.RunReport {
	s.stopped.Store(false)

	g := s.index()
	executables := g.executables()
	deps := make(map[string]map[string]bool, len(executables))
	for _, id := range executables {
		deps[id] = g.upstreamExecutable(id)
	}

	total := len(executables)
	completed := make(map[string]bool)
	failed := make(map[string]bool)
	executing := make(map[string]bool)
	var errs []domain.NodeError
	results := make(chan domain.ExecResult, total)

	s.emitRunStart(ctx, total)
	s.logger.Info("run started", "executable", total)

	settle := func(res domain.ExecResult) {
		delete(executing, res.NodeID)
		if res.Success {
			completed[res.NodeID] = true
			return
		}
		failed[res.NodeID] = true
		errs = append(errs, domain.NodeError{NodeID: res.NodeID, Message: res.Error})
	}

	stopped := false
	for len(completed)+len(failed) < total {
		if s.cancelled(ctx) {
			stopped = true
			break
		}

		var ready []string
		for _, id := range executables {
			if completed[id] || failed[id] || executing[id] {
				continue
			}
			ok := true
			for dep := range deps[id] {
				if !completed[dep] {
					ok = false
					break
				}
			}
			if ok {
				ready = append(ready, id)
			}
		}

		// No node is ready and none is in flight: the remaining nodes wait
		// on dependencies that can never complete.
		if len(ready) == 0 && len(executing) == 0 {
			for _, id := range executables {
				if !completed[id] && !failed[id] {
					failed[id] = true
					errs = append(errs, domain.NodeError{NodeID: id, Message: deadlockReason})
					s.logger.Warn("node stranded", "node", id)
				}
			}
			break
		}

		for _, id := range ready {
			if s.cancelled(ctx) {
				stopped = true
				break
			}
			executing[id] = true
			if s.dispatchDelay > 0 {
				time.Sleep(s.dispatchDelay)
			}
			go func(nodeID string) {
				results <- s.ExecuteNode(ctx, nodeID)
			}(id)
		}
		if stopped {
			break
		}
		if len(executing) == 0 {
			continue
		}

		// Block until something settles, then drain whatever else finished.
		settle(<-results)
	drain:
		for {
			select {
			case res := <-results:
				settle(res)
			default:
				break drain
			}
		}
		if s.cancelled(ctx) {
			stopped = true
			break
		}
	}

	if stopped {
		// No forced aborts, but nothing new starts and no node may stay
		// flagged as in flight.
		s.store.ResetGenerating()
		s.logger.Info("run stopped", "completed", len(completed), "failed", len(failed))
	}

	report := domain.RunReport{
		Success:   !stopped && len(failed) == 0,
		Stopped:   stopped,
		Completed: sortedKeys(completed, executables),
		Failed:    sortedKeys(failed, executables),
		Errors:    errs,
	}
	s.emitRunFinish(ctx, report, total)
	s.logger.Info("run finished",
		"completed", len(report.Completed), "failed", len(report.Failed), "stopped", stopped)
	return report
}

func (s *Scheduler) cancelled(ctx context.Context) bool {
	return s.stopped.Load() || ctx.Err() != nil
}

// generate flips the in-flight flag and invokes the collaborator. The flag is
// cleared by the caller on every exit path; collaborator errors propagate
// verbatim.
func (s *Scheduler) generate(ctx context.Context, node domain.Node, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if err := s.store.UpdateNodeData(node.ID, map[string]any{"isGenerating": true}); err != nil {
		return nil, err
	}
	return s.gen.Generate(ctx, req)
}

// propagateAspect pushes a freshly written aspect ratio to immediate
// downstream nodes that have not chosen one themselves. Event-driven: it runs
// exactly when an adapter commits output, never on a poll.
func (s *Scheduler) propagateAspect(id string, patch map[string]any) {
	ratio, _ := patch["aspectRatio"].(string)
	if ratio == "" {
		return
	}
	g := s.index()
	for _, e := range g.outgoing[id] {
		target, ok := g.nodes[e.Target]
		if !ok || !target.Kind.Executable() {
			continue
		}
		if target.Data.AspectRatio != "" {
			continue
		}
		if err := s.store.UpdateNodeData(target.ID, map[string]any{"aspectRatio": ratio}); err != nil {
			s.logger.Warn("aspect propagation failed", "node", target.ID, "err", err)
		}
	}
}

func (s *Scheduler) index() *graphIndex {
	return indexGraph(s.store.Nodes(), s.store.Edges())
}

func (s *Scheduler) emitRunStart(ctx context.Context, total int) {
	if s.hooks.OnRunStart == nil {
		return
	}
	s.hooks.OnRunStart(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunStart},
		Total:     total,
	})
}

func (s *Scheduler) emitRunFinish(ctx context.Context, report domain.RunReport, total int) {
	if s.hooks.OnRunFinish == nil {
		return
	}
	s.hooks.OnRunFinish(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunFinish},
		Total:     total,
		Completed: len(report.Completed),
		Failed:    len(report.Failed),
		Stopped:   report.Stopped,
	})
}

func (s *Scheduler) emitNodeStart(ctx context.Context, node domain.Node) {
	if s.hooks.OnNodeStart == nil {
		return
	}
	s.hooks.OnNodeStart(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeStart},
		NodeID:    node.ID,
		Kind:      node.Kind,
	})
}

func (s *Scheduler) emitNodeFinish(ctx context.Context, node domain.Node, success bool, msg string) {
	if s.hooks.OnNodeFinish == nil {
		return
	}
	s.hooks.OnNodeFinish(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeFinish},
		NodeID:    node.ID,
		Kind:      node.Kind,
		Success:   success,
		Error:     msg,
	})
}

func fail(id, msg string) domain.ExecResult {
	return domain.ExecResult{NodeID: id, Success: false, Error: msg}
}

// sortedKeys filters order to the members of set, preserving graph order in
// reports.
func sortedKeys(set map[string]bool, order []string) []string {
	out := make([]string, 0, len(set))
	for _, id := range order {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}
