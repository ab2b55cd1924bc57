// Package checkpoint provides durable snapshots of run state and position,
// enabling suspend/resume across process boundaries.
package checkpoint

import (
	"context"
	"errors"
	"time"
)

// Store persists one checkpoint per run. The engine overwrites the
// checkpoint after every step, so the stored snapshot always reflects the
// run's latest committed position.
//
// Implementations must be safe for concurrent use across distinct runs.
// Writes to the same run ID must be totally ordered; the engine additionally
// serializes same-run operations, so stores never see concurrent writes for
// one run.
type Store interface {
	// Save stores the checkpoint for a run, overwriting any previous one.
	Save(ctx context.Context, runID string, data []byte) error

	// Load retrieves the checkpoint for a run.
	// Returns ErrNotFound if the run has never been saved.
	Load(ctx context.Context, runID string) ([]byte, error)

	// Delete removes a run's checkpoint. Returns nil if it doesn't exist.
	Delete(ctx context.Context, runID string) error

	// List returns metadata for all stored runs, ordered by update time.
	List(ctx context.Context) ([]Info, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides run metadata without loading the full snapshot.
type Info struct {
	RunID     string
	UpdatedAt time.Time
	Size      int64
}

// Sentinel errors for checkpoint operations.
var (
	// ErrNotFound indicates no checkpoint exists for the run.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
