package stategraph

import (
	"context"
	"log/slog"

	"github.com/finagent-ai/finagent/pkg/stategraph/checkpoint"
)

// Helper nodes and graphs shared across tests.

// makeTrackingNode creates a node that records its execution order and tags
// the state with its name.
func makeTrackingNode(name string, tracker *[]string) NodeFunc {
	return func(ctx Context, s State) (State, error) {
		*tracker = append(*tracker, name)
		return State{"last": name}, nil
	}
}

// incrementNode bumps the "count" field by one.
func incrementNode(ctx Context, s State) (State, error) {
	return State{"count": s.Int("count") + 1}, nil
}

// passthrough returns an empty update.
func passthrough(ctx Context, s State) (State, error) {
	return nil, nil
}

// makeFailingNode creates a node that returns the given error.
func makeFailingNode(err error) NodeFunc {
	return func(ctx Context, s State) (State, error) {
		return nil, err
	}
}

// makePanicNode creates a node that panics with the given value.
func makePanicNode(value any) NodeFunc {
	return func(ctx Context, s State) (State, error) {
		panic(value)
	}
}

// linearGraph builds a three-node a -> b -> c -> END graph with tracking.
func linearGraph(tracker *[]string) *Graph {
	return NewGraph().
		AddNode("a", makeTrackingNode("a", tracker)).
		AddNode("b", makeTrackingNode("b", tracker)).
		AddNode("c", makeTrackingNode("c", tracker)).
		AddEdge("a", "b").
		AddEdge("b", "c").
		AddEdge("c", END).
		SetEntry("a")
}

// newTestEngine compiles the graph and wires it to an in-memory store.
func newTestEngine(g *Graph, opts ...EngineOption) (*Engine, error) {
	compiled, err := g.Compile()
	if err != nil {
		return nil, err
	}
	return NewEngine(compiled, checkpoint.NewMemoryStore(), opts...), nil
}

// testCtx creates an execution context for exercising nodes directly.
func testCtx() Context {
	return NewContext(context.Background(), "test-run", slog.Default())
}
