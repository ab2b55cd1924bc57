package stategraph

import (
	"encoding/json"

	"github.com/finagent-ai/finagent/pkg/stategraph/checkpoint"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run lifecycle states.
const (
	// StatusPending means the run has been created but not yet stepped.
	StatusPending RunStatus = "pending"
	// StatusRunning means the step loop is advancing.
	StatusRunning RunStatus = "running"
	// StatusSuspended means the run stopped at an interrupt-before node and
	// is waiting for an external decision via Resume.
	StatusSuspended RunStatus = "suspended"
	// StatusCompleted means the run reached END.
	StatusCompleted RunStatus = "completed"
	// StatusFailed means a node or routing failure halted the run.
	StatusFailed RunStatus = "failed"
	// StatusCancelled means a suspended run was discarded without resuming.
	StatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Run is a point-in-time snapshot of a run: its identity, position, status,
// state, and the nodes invoked so far. Snapshots are detached from the
// engine; mutating one has no effect on the persisted run.
type Run struct {
	// ID is the unique run identifier.
	ID string
	// Status is the run's lifecycle state at snapshot time.
	Status RunStatus
	// Node is the node the run is positioned at: the next node to execute
	// for live runs, or the position at halt for terminal runs.
	Node string
	// State is the full state snapshot.
	State State
	// History lists every node invoked, in execution order.
	History []string
}

// Errors returns the run's accumulated error log from the errors field.
func (r *Run) Errors() []string {
	list := r.State.List(ErrorsField)
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// runRecord is the engine's in-memory working copy of a run during a step.
// The checkpoint store owns the persisted form; the engine commits the
// record back after every step.
type runRecord struct {
	id       string
	status   RunStatus
	node     string
	state    State
	history  []string
	sequence int
	resumed  bool
	created  bool // checkpoint exists in the store
}

// snapshot converts the working record into a caller-facing Run.
func (rec *runRecord) snapshot() *Run {
	history := make([]string, len(rec.history))
	copy(history, rec.history)
	return &Run{
		ID:      rec.id,
		Status:  rec.status,
		Node:    rec.node,
		State:   rec.state.Clone(),
		History: history,
	}
}

// toCheckpoint serializes the record into a checkpoint envelope.
func (rec *runRecord) toCheckpoint() (*checkpoint.Checkpoint, error) {
	stateBytes, err := json.Marshal(rec.state)
	if err != nil {
		return nil, err
	}
	cp := checkpoint.New(rec.id, rec.node, string(rec.status), stateBytes)
	cp.Sequence = rec.sequence
	cp.Resumed = rec.resumed
	cp.History = append([]string(nil), rec.history...)
	return cp, nil
}

// recordFromCheckpoint deserializes a checkpoint into a working record.
func recordFromCheckpoint(cp *checkpoint.Checkpoint) (*runRecord, error) {
	var state State
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return nil, err
	}
	return &runRecord{
		id:       cp.RunID,
		status:   RunStatus(cp.Status),
		node:     cp.Node,
		state:    state,
		history:  append([]string(nil), cp.History...),
		sequence: cp.Sequence,
		resumed:  cp.Resumed,
		created:  true,
	}, nil
}
