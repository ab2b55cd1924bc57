package stategraph

import (
	"log/slog"

	"github.com/finagent-ai/finagent/pkg/stategraph/event"
	"github.com/finagent-ai/finagent/pkg/stategraph/observability"
)

// engineConfig holds Engine configuration.
type engineConfig struct {
	maxSteps       int
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	events         event.Publisher
}

// defaultEngineConfig returns the default engine configuration: a generous
// step limit, the process-default logger, and observability disabled.
func defaultEngineConfig() engineConfig {
	return engineConfig{
		maxSteps: 1000,
		logger:   slog.Default(),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

// WithMaxSteps sets the maximum number of node executions per run segment.
// Default: 1000. This is a safety net behind the bounded-cycle convention;
// exceeding it fails the run.
func WithMaxSteps(n int) EngineOption {
	return func(c *engineConfig) {
		if n > 0 {
			c.maxSteps = n
		}
	}
}

// WithLogger sets the structured logger used for run and node events. The
// logger is enriched with run_id and node_id per step.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Use
// observability.NewMetricsRecorder() for OpenTelemetry metrics.
func WithMetrics(m observability.MetricsRecorder) EngineOption {
	return func(c *engineConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans for runs and node executions using
// the given span manager. Pass observability.NewSpanManager() for the global
// tracer provider.
func WithTracing(spans observability.SpanManager) EngineOption {
	return func(c *engineConfig) {
		if spans != nil {
			c.spans = spans
			c.tracingEnabled = true
		}
	}
}

// WithEvents publishes run and node lifecycle events to the given publisher,
// typically an event.Bus. Publish errors are ignored; event delivery never
// fails a run.
func WithEvents(publisher event.Publisher) EngineOption {
	return func(c *engineConfig) {
		if publisher != nil {
			c.events = publisher
		}
	}
}

// startConfig holds per-run configuration for Start.
type startConfig struct {
	runID string
}

// StartOption configures a single run.
type StartOption func(*startConfig)

// WithRunID sets the run identifier instead of generating a UUID. Useful
// when the caller correlates runs with external requests.
func WithRunID(id string) StartOption {
	return func(c *startConfig) {
		c.runID = id
	}
}
