package stategraph

import (
	"context"
	"log/slog"
)

// Context provides execution context to nodes and selectors. It extends
// context.Context with run metadata and a structured logger.
//
// Context is immutable; the engine derives a fresh context per node with the
// node ID set and the logger enriched.
type Context interface {
	context.Context

	// Logger returns the configured logger, enriched with run and node
	// context. Never returns nil; defaults to slog.Default().
	Logger() *slog.Logger

	// RunID returns the unique identifier for this execution run.
	RunID() string

	// NodeID returns the node currently executing, or "" outside a node.
	NodeID() string
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	logger *slog.Logger
	runID  string
	nodeID string
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

// RunID returns the run identifier.
func (c *executionContext) RunID() string {
	return c.runID
}

// NodeID returns the current node identifier.
func (c *executionContext) NodeID() string {
	return c.nodeID
}

// NewContext wraps a standard context as a stategraph Context. The engine
// builds these internally; the constructor is exported so node logic can be
// unit-tested without an engine.
func NewContext(ctx context.Context, runID string, logger *slog.Logger) Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &executionContext{
		Context: ctx,
		logger:  logger,
		runID:   runID,
	}
}

// withNodeID returns a derived context with the node ID set and the logger
// enriched for that node.
func (c *executionContext) withNodeID(nodeID string) *executionContext {
	return &executionContext{
		Context: c.Context,
		logger:  c.logger.With("run_id", c.runID, "node_id", nodeID),
		runID:   c.runID,
		nodeID:  nodeID,
	}
}
