package stategraph

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finagent-ai/finagent/pkg/stategraph/checkpoint"
	"github.com/finagent-ai/finagent/pkg/stategraph/event"
	"github.com/finagent-ai/finagent/pkg/stategraph/observability"
	"go.opentelemetry.io/otel/trace"
)

// ErrRunExists indicates Start was called with a run ID that already has a
// checkpoint.
var ErrRunExists = errors.New("run already exists")

// Engine drives runs of a compiled graph against a checkpoint store.
//
// A single Engine handles any number of concurrent runs; each run owns its
// own state and checkpoint, so runs never contend beyond the store itself.
// Within one run the step loop is strictly sequential: a node completes
// fully, its update is merged and committed, and only then is the next node
// chosen. Same-run operations (Resume, Cancel) are serialized per run ID.
type Engine struct {
	graph *CompiledGraph
	store checkpoint.Store
	cfg   engineConfig

	locks sync.Map // runID -> *sync.Mutex
}

// NewEngine creates an engine for the given graph and checkpoint store.
func NewEngine(graph *CompiledGraph, store checkpoint.Store, opts ...EngineOption) *Engine {
	if graph == nil {
		panic("stategraph: graph cannot be nil")
	}
	if store == nil {
		panic("stategraph: checkpoint store cannot be nil")
	}

	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Engine{graph: graph, store: store, cfg: cfg}
}

// Start creates a new run positioned at the entry node and executes the step
// loop synchronously. The returned snapshot's Status tells the caller how
// the segment ended: Completed (reached END), Suspended (stopped at an
// interrupt-before node, waiting for Resume), or Failed (a node or routing
// failure, recorded in the errors field).
//
// Node failures do not produce a Go error; only infrastructure faults
// (checkpoint persistence, serialization) do.
func (e *Engine) Start(ctx context.Context, initial State, opts ...StartOption) (*Run, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	cfg := startConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	runID := cfg.runID
	if runID == "" {
		runID = uuid.New().String()
	}

	mu := e.lockRun(runID)
	mu.Lock()
	defer mu.Unlock()

	if _, err := e.store.Load(ctx, runID); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunExists, runID)
	} else if !errors.Is(err, checkpoint.ErrNotFound) {
		return nil, &CheckpointError{RunID: runID, Op: "load", Err: err}
	}

	rec := &runRecord{
		id:     runID,
		status: StatusRunning,
		node:   e.graph.entryPoint,
		state:  initial.Clone(),
	}

	observability.LogRunStart(e.cfg.logger, runID)

	if err := e.persist(ctx, rec); err != nil {
		return nil, err
	}
	e.publish(ctx, event.Event{Type: event.TypeRunStarted, RunID: runID, Node: rec.node})

	return e.loop(ctx, rec)
}

// Resume continues a Suspended run. The external decision (e.g., an approval
// flag) is merged into the run's state through the reducer registry, the run
// is marked resumed past its current interrupt point, and the step loop
// re-enters at the suspended node.
//
// Resume on a run in any other state is rejected with a ResumeError and the
// run is left unchanged. Concurrent resumes of the same run serialize; the
// loser observes a non-Suspended status and is rejected.
func (e *Engine) Resume(ctx context.Context, runID string, decision State) (*Run, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	mu := e.lockRun(runID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := e.load(ctx, runID)
	if err != nil {
		return nil, err
	}

	if rec.status != StatusSuspended {
		return nil, &ResumeError{RunID: runID, Status: rec.status, Err: ErrNotSuspended}
	}

	if len(decision) > 0 {
		rec.state = e.graph.reducers.Merge(rec.state, decision)
	}
	rec.resumed = true
	rec.status = StatusRunning
	rec.sequence++

	if err := e.persist(ctx, rec); err != nil {
		return nil, err
	}

	observability.LogRunResumed(e.cfg.logger, runID, rec.node)
	e.publish(ctx, event.Event{Type: event.TypeRunResumed, RunID: runID, Node: rec.node})

	return e.loop(ctx, rec)
}

// Status returns a snapshot of the run's persisted checkpoint: status,
// position, state, and invocation history.
func (e *Engine) Status(ctx context.Context, runID string) (*Run, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	rec, err := e.load(ctx, runID)
	if err != nil {
		return nil, err
	}
	return rec.snapshot(), nil
}

// Cancel discards a Suspended run without resuming it. The run transitions
// to the terminal Cancelled status; a later Resume is rejected. Cancelling a
// run in any other state is rejected with a ResumeError.
func (e *Engine) Cancel(ctx context.Context, runID string) error {
	if ctx == nil {
		return ErrNilContext
	}

	mu := e.lockRun(runID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := e.load(ctx, runID)
	if err != nil {
		return err
	}

	if rec.status != StatusSuspended {
		return &ResumeError{RunID: runID, Status: rec.status, Err: ErrNotSuspended}
	}

	rec.status = StatusCancelled
	rec.sequence++
	if err := e.persist(ctx, rec); err != nil {
		return err
	}

	observability.LogRunCancelled(e.cfg.logger, runID)
	e.publish(ctx, event.Event{Type: event.TypeRunCancelled, RunID: runID, Node: rec.node})
	return nil
}

// publish emits a lifecycle event when an event publisher is configured.
// Delivery failures never affect the run.
func (e *Engine) publish(ctx context.Context, evt event.Event) {
	if e.cfg.events == nil {
		return
	}
	evt.Timestamp = time.Now().UTC()
	_ = e.cfg.events.Publish(ctx, evt)
}

// Graph returns the compiled graph this engine executes.
func (e *Engine) Graph() *CompiledGraph {
	return e.graph
}

// Store returns the checkpoint store backing this engine.
func (e *Engine) Store() checkpoint.Store {
	return e.store
}

// lockRun returns the mutex serializing operations on a run ID.
func (e *Engine) lockRun(runID string) *sync.Mutex {
	actual, _ := e.locks.LoadOrStore(runID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// load reads and decodes a run's checkpoint into a working record.
func (e *Engine) load(ctx context.Context, runID string) (*runRecord, error) {
	data, err := e.store.Load(ctx, runID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, &CheckpointError{RunID: runID, Op: "load", Err: err}
	}

	cp, err := checkpoint.Unmarshal(data)
	if err != nil {
		return nil, &CheckpointError{RunID: runID, Op: "unmarshal", Err: err}
	}
	if cp.Version != checkpoint.Version {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrCheckpointVersion, cp.Version, checkpoint.Version)
	}

	rec, err := recordFromCheckpoint(cp)
	if err != nil {
		return nil, &CheckpointError{RunID: runID, Op: "unmarshal", Err: err}
	}
	return rec, nil
}

// persist commits the working record back to the checkpoint store.
func (e *Engine) persist(ctx context.Context, rec *runRecord) error {
	cp, err := rec.toCheckpoint()
	if err != nil {
		return &CheckpointError{RunID: rec.id, Op: "marshal", Err: err}
	}

	data, err := cp.Marshal()
	if err != nil {
		return &CheckpointError{RunID: rec.id, Op: "marshal", Err: err}
	}

	if err := e.store.Save(ctx, rec.id, data); err != nil {
		return &CheckpointError{RunID: rec.id, Op: "save", Err: err}
	}

	observability.LogCheckpoint(e.cfg.logger, rec.id, len(data))
	e.cfg.metrics.RecordCheckpoint(ctx, rec.id, int64(len(data)))
	return nil
}

// loop is the step loop. At each iteration it suspends if the current node
// is an un-resumed interrupt point, otherwise invokes the node, merges its
// update, persists the checkpoint, and routes to the next node. The loop
// ends on END, suspension, or failure.
func (e *Engine) loop(ctx context.Context, rec *runRecord) (result *Run, loopErr error) {
	startTime := time.Now()

	tracingCtx := ctx
	var runSpan trace.Span
	if e.cfg.tracingEnabled {
		tracingCtx, runSpan = e.cfg.spans.StartRunSpan(ctx, "stategraph", rec.id)
		defer func() {
			e.cfg.spans.EndSpanWithError(runSpan, loopErr)
		}()
	}

	fgCtx := &executionContext{Context: ctx, logger: e.cfg.logger, runID: rec.id}

	steps := 0
	for {
		if rec.node == END {
			rec.status = StatusCompleted
			if err := e.persist(ctx, rec); err != nil {
				return nil, err
			}
			duration := time.Since(startTime)
			e.cfg.metrics.RecordRun(ctx, true, duration)
			observability.LogRunComplete(e.cfg.logger, rec.id, float64(duration.Milliseconds()), steps)
			e.publish(ctx, event.Event{Type: event.TypeRunCompleted, RunID: rec.id, Node: rec.node})
			return rec.snapshot(), nil
		}

		if e.graph.interruptBefore[rec.node] {
			if rec.resumed {
				// Consume the resume token so a later visit to this (or
				// another) interrupt point suspends again.
				rec.resumed = false
			} else {
				rec.status = StatusSuspended
				if err := e.persist(ctx, rec); err != nil {
					return nil, err
				}
				observability.LogRunSuspended(e.cfg.logger, rec.id, rec.node)
				e.publish(ctx, event.Event{Type: event.TypeRunSuspended, RunID: rec.id, Node: rec.node})
				return rec.snapshot(), nil
			}
		}

		steps++
		if steps > e.cfg.maxSteps {
			return e.failRun(ctx, rec, startTime, &MaxStepsError{Max: e.cfg.maxSteps, NodeID: rec.node})
		}

		select {
		case <-ctx.Done():
			return e.failRun(ctx, rec, startTime, fmt.Errorf("cancelled before node %s: %w", rec.node, ctx.Err()))
		default:
		}

		observability.LogNodeStart(e.cfg.logger, rec.node)
		e.publish(ctx, event.Event{Type: event.TypeNodeStarted, RunID: rec.id, Node: rec.node})

		nodeTracingCtx := tracingCtx
		var nodeSpan trace.Span
		if e.cfg.tracingEnabled {
			nodeTracingCtx, nodeSpan = e.cfg.spans.StartNodeSpan(tracingCtx, rec.node)
		}

		nodeStart := time.Now()
		update, nodeErr := e.executeNode(fgCtx, rec.node, rec.state)
		nodeDuration := time.Since(nodeStart)

		e.cfg.metrics.RecordNodeExecution(nodeTracingCtx, rec.node, nodeDuration, nodeErr)
		if e.cfg.tracingEnabled {
			e.cfg.spans.EndSpanWithError(nodeSpan, nodeErr)
		}

		if nodeErr != nil {
			observability.LogNodeError(e.cfg.logger, rec.node, nodeErr)
			e.publish(ctx, event.Event{Type: event.TypeNodeFailed, RunID: rec.id, Node: rec.node, Err: nodeErr.Error()})
			return e.failRun(ctx, rec, startTime, nodeErr)
		}
		observability.LogNodeComplete(e.cfg.logger, rec.node, float64(nodeDuration.Milliseconds()))
		e.publish(ctx, event.Event{Type: event.TypeNodeCompleted, RunID: rec.id, Node: rec.node})

		rec.state = e.graph.reducers.Merge(rec.state, update)
		rec.history = append(rec.history, rec.node)

		next, routeErr := e.nextNode(fgCtx, rec.state, rec.node)
		if routeErr != nil {
			return e.failRun(ctx, rec, startTime, routeErr)
		}

		rec.node = next
		rec.sequence++
		if err := e.persist(ctx, rec); err != nil {
			return nil, err
		}
	}
}

// failRun records a failure into the accumulating errors field, persists the
// Failed checkpoint, and returns the terminal snapshot. The failure is a
// value in the run state, not a Go error from the loop.
func (e *Engine) failRun(ctx context.Context, rec *runRecord, startTime time.Time, cause error) (*Run, error) {
	rec.state = e.graph.reducers.Merge(rec.state, State{ErrorsField: []any{cause.Error()}})
	rec.status = StatusFailed
	rec.sequence++
	if err := e.persist(ctx, rec); err != nil {
		return nil, err
	}

	duration := time.Since(startTime)
	e.cfg.metrics.RecordRun(ctx, false, duration)
	observability.LogRunFailed(e.cfg.logger, rec.id, cause, rec.node)
	e.publish(ctx, event.Event{Type: event.TypeRunFailed, RunID: rec.id, Node: rec.node, Err: cause.Error()})
	return rec.snapshot(), nil
}

// executeNode executes a single node with panic recovery. The returned
// update is the node's partial state diff.
func (e *Engine) executeNode(ctx *executionContext, nodeID string, state State) (update State, err error) {
	fn, exists := e.graph.getNode(nodeID)
	if !exists {
		// Unreachable after a successful Compile.
		return nil, &NodeError{
			NodeID: nodeID,
			Op:     "lookup",
			Err:    fmt.Errorf("node not found: %s", nodeID),
		}
	}

	nodeCtx := ctx.withNodeID(nodeID)

	defer func() {
		if r := recover(); r != nil {
			update = nil
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	update, err = fn(nodeCtx, state)
	if err != nil {
		return nil, &NodeError{
			NodeID: nodeID,
			Op:     "execute",
			Err:    err,
		}
	}

	return update, nil
}

// nextNode asks the router for the node following current. Conditional edges
// evaluate their selector and map the returned label through the route
// table; an unregistered label is a RouterError.
func (e *Engine) nextNode(ctx *executionContext, state State, current string) (string, error) {
	if cond, exists := e.graph.conditionalEdges[current]; exists {
		label := cond.selector(ctx.withNodeID(current), state)
		dest, ok := cond.routes[label]
		if !ok {
			return "", &RouterError{FromNode: current, Label: label}
		}
		return dest, nil
	}

	next, exists := e.graph.edges[current]
	if !exists {
		// Unreachable after a successful Compile.
		return "", &NodeError{
			NodeID: current,
			Op:     "routing",
			Err:    fmt.Errorf("no outgoing edge from node %s", current),
		}
	}
	return next, nil
}
