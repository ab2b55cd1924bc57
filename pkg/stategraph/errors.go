package stategraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph building and compilation.
var (
	// ErrNoEntryPoint indicates SetEntry was not called before Compile.
	ErrNoEntryPoint = errors.New("entry point not set")

	// ErrEntryNotFound indicates the entry point references a non-existent node.
	ErrEntryNotFound = errors.New("entry point node not found")

	// ErrNodeNotFound indicates an edge or route references a non-existent node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeFromEnd indicates an outgoing edge was declared on END.
	ErrEdgeFromEnd = errors.New("END cannot have outgoing edges")

	// ErrConflictingEdges indicates a node has both unconditional and
	// conditional edges.
	ErrConflictingEdges = errors.New("node mixes unconditional and conditional edges")

	// ErrAmbiguousEdges indicates a node has more than one unconditional edge.
	ErrAmbiguousEdges = errors.New("node has multiple unconditional edges")

	// ErrNoOutgoingEdge indicates a node has no way to leave.
	ErrNoOutgoingEdge = errors.New("node has no outgoing edge")

	// ErrUnreachableNode indicates a node cannot be reached from the entry point.
	ErrUnreachableNode = errors.New("node unreachable from entry")

	// ErrNoPathToEnd indicates no path exists from the entry point to END.
	ErrNoPathToEnd = errors.New("no path to END from entry")
)

// Sentinel errors for execution and run control.
var (
	// ErrNilContext indicates Start or Resume was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrMaxSteps indicates the step loop exceeded the configured limit.
	ErrMaxSteps = errors.New("exceeded maximum steps")

	// ErrUnknownLabel indicates a selector returned a label with no entry in
	// the route table.
	ErrUnknownLabel = errors.New("selector returned unregistered label")

	// ErrRunNotFound indicates no checkpoint exists for the run ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrNotSuspended indicates Resume or Cancel was called on a run that is
	// not in the Suspended state.
	ErrNotSuspended = errors.New("run is not suspended")

	// ErrCheckpointVersion indicates the persisted checkpoint format is
	// incompatible with this engine.
	ErrCheckpointVersion = errors.New("checkpoint version mismatch")
)

// NodeError wraps an error with the identity of the failing node. Node
// failures surface in the run's error log, not as errors from Start.
type NodeError struct {
	// NodeID is the identifier of the node that failed.
	NodeID string
	// Op is the operation that failed (e.g., "execute").
	Op string
	// Err is the underlying error from the node.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from node execution, including the
// stack trace for debugging.
type PanicError struct {
	// NodeID is the identifier of the node that panicked.
	NodeID string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}

// RouterError reports a conditional routing failure: the selector returned a
// label with no registered destination. Treated as an execution failure with
// a distinguishing reason.
type RouterError struct {
	// FromNode is the node with the conditional edge.
	FromNode string
	// Label is the label the selector returned.
	Label string
}

// Error implements the error interface.
func (e *RouterError) Error() string {
	return fmt.Sprintf("router from %s: label %q not in route table", e.FromNode, e.Label)
}

// Unwrap returns ErrUnknownLabel for errors.Is support.
func (e *RouterError) Unwrap() error {
	return ErrUnknownLabel
}

// ResumeError reports a rejected resume or cancel: the run was not in the
// state the operation requires. The run is left unchanged.
type ResumeError struct {
	// RunID is the run the operation targeted.
	RunID string
	// Status is the run's actual status.
	Status RunStatus
	// Err is the underlying sentinel (ErrNotSuspended or ErrRunNotFound).
	Err error
}

// Error implements the error interface.
func (e *ResumeError) Error() string {
	return fmt.Sprintf("run %s (%s): %v", e.RunID, e.Status, e.Err)
}

// Unwrap returns the underlying sentinel for errors.Is support.
func (e *ResumeError) Unwrap() error {
	return e.Err
}

// CheckpointError wraps failures of the checkpoint persistence layer. These
// are infrastructure faults and are returned as Go errors, unlike node
// failures which are recorded into the run state.
type CheckpointError struct {
	// RunID is the run whose checkpoint operation failed.
	RunID string
	// Op is the operation that failed ("save", "load", "marshal").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint %s for run %s: %v", e.Op, e.RunID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CheckpointError) Unwrap() error {
	return e.Err
}

// MaxStepsError provides context when the step-loop safety limit trips. The
// bounded-iteration convention (explicit counters on cycles) should make
// this unreachable in a well-formed graph.
type MaxStepsError struct {
	// Max is the configured step limit.
	Max int
	// NodeID is the node that would have executed next.
	NodeID string
}

// Error implements the error interface.
func (e *MaxStepsError) Error() string {
	return fmt.Sprintf("exceeded maximum steps (%d) at node %s", e.Max, e.NodeID)
}

// Unwrap returns ErrMaxSteps for errors.Is support.
func (e *MaxStepsError) Unwrap() error {
	return ErrMaxSteps
}
