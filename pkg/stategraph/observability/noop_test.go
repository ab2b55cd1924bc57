package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics_DoesNothing(t *testing.T) {
	m := NoopMetrics{}
	assert.NotPanics(t, func() {
		m.RecordNodeExecution(context.Background(), "n", time.Second, errors.New("x"))
		m.RecordRun(context.Background(), true, time.Second)
		m.RecordCheckpoint(context.Background(), "r", 100)
	})
}

func TestNoopSpanManager_ReturnsUsableSpans(t *testing.T) {
	sm := NoopSpanManager{}

	ctx, span := sm.StartRunSpan(context.Background(), "g", "r")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)

	ctx, span = sm.StartNodeSpan(ctx, "n")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)

	assert.NotPanics(t, func() {
		sm.EndSpanWithError(span, errors.New("x"))
		sm.AddSpanEvent(ctx, "event")
	})
}
