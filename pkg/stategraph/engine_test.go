package stategraph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_LinearFlow(t *testing.T) {
	var tracker []string
	engine, err := newTestEngine(linearGraph(&tracker))
	require.NoError(t, err)

	run, err := engine.Start(context.Background(), State{"input": "x"})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, []string{"a", "b", "c"}, tracker)
	assert.Equal(t, []string{"a", "b", "c"}, run.History)
	assert.Equal(t, "c", run.State.String("last"))
	assert.Equal(t, "x", run.State.String("input")) // initial state carried through
	assert.Empty(t, run.Errors())
}

func TestStart_GeneratesRunID(t *testing.T) {
	var tracker []string
	engine, err := newTestEngine(linearGraph(&tracker))
	require.NoError(t, err)

	run, err := engine.Start(context.Background(), State{})

	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
}

func TestStart_ExplicitRunID(t *testing.T) {
	var tracker []string
	engine, err := newTestEngine(linearGraph(&tracker))
	require.NoError(t, err)

	run, err := engine.Start(context.Background(), State{}, WithRunID("run-42"))

	require.NoError(t, err)
	assert.Equal(t, "run-42", run.ID)
}

func TestStart_RejectsDuplicateRunID(t *testing.T) {
	var tracker []string
	engine, err := newTestEngine(linearGraph(&tracker))
	require.NoError(t, err)

	_, err = engine.Start(context.Background(), State{}, WithRunID("dup"))
	require.NoError(t, err)

	_, err = engine.Start(context.Background(), State{}, WithRunID("dup"))
	assert.ErrorIs(t, err, ErrRunExists)
}

func TestStart_NilContext(t *testing.T) {
	var tracker []string
	engine, err := newTestEngine(linearGraph(&tracker))
	require.NoError(t, err)

	//nolint:staticcheck // deliberately nil
	_, err = engine.Start(nil, State{})
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestStart_DoesNotMutateInitialState(t *testing.T) {
	g := NewGraph().
		AddNode("a", incrementNode).
		AddEdge("a", END).
		SetEntry("a")
	engine, err := newTestEngine(g)
	require.NoError(t, err)

	initial := State{"count": 0}
	run, err := engine.Start(context.Background(), initial)

	require.NoError(t, err)
	assert.Equal(t, 0, initial.Int("count"))
	assert.Equal(t, 1, run.State.Int("count"))
}

func TestStart_ConditionalRouting(t *testing.T) {
	var tracker []string
	selector := func(_ Context, s State) string {
		if s.Bool("short") {
			return "skip"
		}
		return "full"
	}
	g := NewGraph().
		AddNode("entry", makeTrackingNode("entry", &tracker)).
		AddNode("long", makeTrackingNode("long", &tracker)).
		AddNode("quick", makeTrackingNode("quick", &tracker)).
		AddConditionalEdge("entry", selector, map[string]string{
			"full": "long",
			"skip": "quick",
		}).
		AddEdge("long", END).
		AddEdge("quick", END).
		SetEntry("entry")
	engine, err := newTestEngine(g)
	require.NoError(t, err)

	run, err := engine.Start(context.Background(), State{"short": true})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, []string{"entry", "quick"}, run.History)
	assert.Equal(t, []string{"entry", "quick"}, tracker)
}

// A classification that routes to the short-circuit node completes with
// exactly two node invocations: the classifier and the short-circuit itself.
// Nothing downstream of the full pipeline runs.
func TestStart_ShortCircuitSkipsPipeline(t *testing.T) {
	var tracker []string
	classify := func(_ Context, s State) (State, error) {
		tracker = append(tracker, "classify")
		if len(s.String("query")) < 12 {
			return State{"complexity": "simple"}, nil
		}
		return State{"complexity": "complex"}, nil
	}
	selector := func(_ Context, s State) string {
		return s.String("complexity")
	}
	g := NewGraph().
		AddNode("classify", classify).
		AddNode("research", makeTrackingNode("research", &tracker)).
		AddNode("draft", makeTrackingNode("draft", &tracker)).
		AddNode("quick", makeTrackingNode("quick", &tracker)).
		AddConditionalEdge("classify", selector, map[string]string{
			"simple":  "quick",
			"complex": "research",
		}).
		AddEdge("research", "draft").
		AddEdge("draft", END).
		AddEdge("quick", END).
		SetEntry("classify")
	engine, err := newTestEngine(g)
	require.NoError(t, err)

	run, err := engine.Start(context.Background(), State{"query": "price of X"})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, "simple", run.State.String("complexity"))
	assert.Equal(t, []string{"classify", "quick"}, run.History)
	assert.Equal(t, []string{"classify", "quick"}, tracker)
}

func TestStart_NodeFailureIsAValue(t *testing.T) {
	boom := errors.New("upstream unavailable")
	g := NewGraph().
		AddNode("a", passthrough).
		AddNode("b", makeFailingNode(boom)).
		AddEdge("a", "b").
		AddEdge("b", END).
		SetEntry("a")
	engine, err := newTestEngine(g)
	require.NoError(t, err)

	run, err := engine.Start(context.Background(), State{})

	require.NoError(t, err) // node failure is not an infrastructure error
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, "b", run.Node)
	require.Len(t, run.Errors(), 1)
	assert.Contains(t, run.Errors()[0], "upstream unavailable")
	assert.Equal(t, []string{"a"}, run.History) // the failing node never completed
}

func TestStart_FailureAccumulatesWithPriorErrors(t *testing.T) {
	warn := func(ctx Context, s State) (State, error) {
		return State{ErrorsField: []any{"soft warning"}}, nil
	}
	g := NewGraph().
		AddNode("warn", warn).
		AddNode("fail", makeFailingNode(errors.New("hard failure"))).
		AddEdge("warn", "fail").
		AddEdge("fail", END).
		SetEntry("warn")
	engine, err := newTestEngine(g)
	require.NoError(t, err)

	run, err := engine.Start(context.Background(), State{})
	require.NoError(t, err)

	require.Len(t, run.Errors(), 2)
	assert.Equal(t, "soft warning", run.Errors()[0])
	assert.Contains(t, run.Errors()[1], "hard failure")
}

func TestStart_PanicRecovered(t *testing.T) {
	g := NewGraph().
		AddNode("a", makePanicNode("kaboom")).
		AddEdge("a", END).
		SetEntry("a")
	engine, err := newTestEngine(g)
	require.NoError(t, err)

	run, err := engine.Start(context.Background(), State{})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	require.Len(t, run.Errors(), 1)
	assert.Contains(t, run.Errors()[0], "kaboom")
}

func TestStart_UnknownLabelFailsRun(t *testing.T) {
	selector := func(Context, State) string { return "nonsense" }
	g := NewGraph().
		AddNode("a", passthrough).
		AddNode("b", passthrough).
		AddConditionalEdge("a", selector, map[string]string{"ok": "b"}).
		AddEdge("b", END).
		SetEntry("a")
	engine, err := newTestEngine(g)
	require.NoError(t, err)

	run, err := engine.Start(context.Background(), State{})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	require.Len(t, run.Errors(), 1)
	assert.Contains(t, run.Errors()[0], "nonsense")
}

func TestStart_MaxStepsExceeded(t *testing.T) {
	// A legal cycle whose selector never exits within the step budget.
	selector := func(_ Context, s State) string {
		return "again"
	}
	g := NewGraph().
		AddNode("spin", incrementNode).
		AddConditionalEdge("spin", selector, map[string]string{
			"again": "spin",
			"done":  END,
		}).
		SetEntry("spin")
	engine, err := newTestEngine(g, WithMaxSteps(5))
	require.NoError(t, err)

	run, err := engine.Start(context.Background(), State{})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, 5, run.State.Int("count"))
	require.Len(t, run.Errors(), 1)
	assert.Contains(t, run.Errors()[0], "maximum steps")
}

// Bounded revision cycle: with a maximum of 2 revisions and a verdict that
// always fails, the writer executes exactly 3 times (initial + 2 revisions)
// before the route is forced forward.
func TestStart_BoundedRevisionCycle(t *testing.T) {
	const maxRevisions = 2
	writerRuns := 0

	writer := func(_ Context, s State) (State, error) {
		writerRuns++
		if s.Map("review") != nil {
			// Re-entering the cycle: this node owns the counter.
			return State{"revisions": s.Int("revisions") + 1}, nil
		}
		return nil, nil
	}
	check := func(_ Context, s State) (State, error) {
		return State{"review": map[string]any{"passed": false}}, nil
	}
	selector := func(_ Context, s State) string {
		if s.Int("revisions") >= maxRevisions {
			return "approve"
		}
		if review := s.Map("review"); review != nil {
			if passed, _ := review["passed"].(bool); passed {
				return "approve"
			}
		}
		return "revise"
	}

	g := NewGraph().
		AddNode("writer", writer).
		AddNode("check", check).
		AddEdge("writer", "check").
		AddConditionalEdge("check", selector, map[string]string{
			"approve": END,
			"revise":  "writer",
		}).
		SetEntry("writer")
	engine, err := newTestEngine(g)
	require.NoError(t, err)

	run, err := engine.Start(context.Background(), State{"revisions": 0})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, maxRevisions+1, writerRuns)
	assert.Equal(t, maxRevisions, run.State.Int("revisions"))
}

func TestStart_ContextCancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	g := NewGraph().
		AddNode("first", func(Context, State) (State, error) {
			cancel() // cancel while the run is in flight
			return nil, nil
		}).
		AddNode("second", passthrough).
		AddEdge("first", "second").
		AddEdge("second", END).
		SetEntry("first")
	engine, err := newTestEngine(g)
	require.NoError(t, err)

	run, err := engine.Start(ctx, State{})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, []string{"first"}, run.History)
	require.Len(t, run.Errors(), 1)
	assert.Contains(t, run.Errors()[0], "second")
}

func TestStatus_ReturnsPersistedSnapshot(t *testing.T) {
	var tracker []string
	engine, err := newTestEngine(linearGraph(&tracker))
	require.NoError(t, err)

	started, err := engine.Start(context.Background(), State{}, WithRunID("r1"))
	require.NoError(t, err)

	got, err := engine.Status(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, started.Status, got.Status)
	assert.Equal(t, started.History, got.History)
	assert.Equal(t, started.State, got.State)
}

func TestStatus_UnknownRun(t *testing.T) {
	var tracker []string
	engine, err := newTestEngine(linearGraph(&tracker))
	require.NoError(t, err)

	_, err = engine.Status(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.False(t, StatusSuspended.Terminal())
}

func TestNewEngine_PanicsOnNilArguments(t *testing.T) {
	var tracker []string
	compiled, err := linearGraph(&tracker).Compile()
	require.NoError(t, err)

	assert.Panics(t, func() { NewEngine(nil, nil) })
	assert.Panics(t, func() { NewEngine(compiled, nil) })
}
