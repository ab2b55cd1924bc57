package event

import (
	"context"
	"time"
)

// Lifecycle event types.
const (
	TypeRunStarted   = "run.started"
	TypeRunCompleted = "run.completed"
	TypeRunFailed    = "run.failed"
	TypeRunSuspended = "run.suspended"
	TypeRunResumed   = "run.resumed"
	TypeRunCancelled = "run.cancelled"

	TypeNodeStarted   = "node.started"
	TypeNodeCompleted = "node.completed"
	TypeNodeFailed    = "node.failed"
)

// Event is one lifecycle notification.
type Event struct {
	// Type is one of the Type* constants.
	Type string
	// RunID identifies the run.
	RunID string
	// Node is the node the event concerns. For run-level events it is the
	// run's position at the time of the event.
	Node string
	// Err carries the failure message for failed events.
	Err string
	// Timestamp is when the event was published.
	Timestamp time.Time
}

// Handler processes one event. Handlers run on the subscription's delivery
// goroutine; blocking in a handler delays only that subscription.
type Handler func(Event)

// Publisher is the engine-facing side of the bus.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
