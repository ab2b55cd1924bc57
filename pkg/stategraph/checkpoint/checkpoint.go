package checkpoint

import (
	"encoding/json"
	"time"
)

// Version is the current checkpoint format version.
// Increment when making breaking changes to the checkpoint structure.
const Version = 1

// Checkpoint is the persisted snapshot of a run: its identity, position,
// status, and full state. It contains everything needed to resume execution,
// including in a different process.
type Checkpoint struct {
	// Metadata
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	Sequence  int       `json:"sequence"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Position and lifecycle
	Node   string `json:"node"`
	Status string `json:"status"`

	// Resumed is set when the caller has resumed the run past its current
	// interrupt point; the engine consumes it when the flagged node executes.
	Resumed bool `json:"resumed,omitempty"`

	// History records every node invoked, in execution order.
	History []string `json:"history"`

	// State is the full state snapshot, already JSON-serialized.
	State json.RawMessage `json:"state"`
}

// New creates a checkpoint positioned at a node with the given status.
// State must already be JSON-serialized.
func New(runID, node, status string, state []byte) *Checkpoint {
	now := time.Now().UTC()
	return &Checkpoint{
		Version:   Version,
		RunID:     runID,
		Node:      node,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
		State:     state,
	}
}

// Marshal serializes the checkpoint to JSON.
func (c *Checkpoint) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal deserializes a checkpoint from JSON.
func Unmarshal(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
