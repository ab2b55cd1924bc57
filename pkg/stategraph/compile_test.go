package stategraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopSelector(Context, State) string { return "go" }

func TestCompile_NoEntryPoint(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddEdge("a", END).
		Compile()

	assert.ErrorIs(t, err, ErrNoEntryPoint)
}

func TestCompile_EntryNotFound(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddEdge("a", END).
		SetEntry("missing").
		Compile()

	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestCompile_EdgeFromEnd(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddEdge("a", END).
		AddEdge(END, "a").
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrEdgeFromEnd)
}

func TestCompile_EdgeSourceMissing(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddEdge("a", END).
		AddEdge("ghost", "a").
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestCompile_EdgeTargetMissing(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddEdge("a", "ghost").
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestCompile_ConflictingEdges(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddNode("b", passthrough).
		AddEdge("a", "b").
		AddConditionalEdge("a", noopSelector, map[string]string{"go": "b"}).
		AddEdge("b", END).
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrConflictingEdges)
}

func TestCompile_AmbiguousEdges(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddNode("b", passthrough).
		AddEdge("a", "b").
		AddEdge("a", END).
		AddEdge("b", END).
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrAmbiguousEdges)
}

func TestCompile_RouteDestinationMissing(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddConditionalEdge("a", noopSelector, map[string]string{"go": "ghost"}).
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestCompile_NoOutgoingEdge(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddNode("sink", passthrough).
		AddEdge("a", "sink").
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrNoOutgoingEdge)
}

func TestCompile_UnreachableNode(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddNode("island", passthrough).
		AddEdge("a", END).
		AddEdge("island", END).
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrUnreachableNode)
}

// A node reachable only through a conditional route destination is reachable;
// route tables are known at compile time.
func TestCompile_ReachableViaRouteTable(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddNode("b", passthrough).
		AddConditionalEdge("a", noopSelector, map[string]string{"go": "b", "stop": END}).
		AddEdge("b", END).
		SetEntry("a").
		Compile()

	assert.NoError(t, err)
}

func TestCompile_NoPathToEnd(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddNode("b", passthrough).
		AddEdge("a", "b").
		AddEdge("b", "a").
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrNoPathToEnd)
}

// A cycle is legal as long as some route out of it reaches END.
func TestCompile_CycleWithExit(t *testing.T) {
	_, err := NewGraph().
		AddNode("work", passthrough).
		AddNode("check", passthrough).
		AddEdge("work", "check").
		AddConditionalEdge("check", noopSelector, map[string]string{
			"redo": "work",
			"done": END,
		}).
		SetEntry("work").
		Compile()

	assert.NoError(t, err)
}

func TestCompile_InterruptNodeMissing(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddEdge("a", END).
		SetEntry("a").
		Compile(WithInterruptBefore("ghost"))

	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestCompile_InterruptFlagsRecorded(t *testing.T) {
	compiled, err := NewGraph().
		AddNode("a", passthrough).
		AddNode("gate", passthrough).
		AddEdge("a", "gate").
		AddEdge("gate", END).
		SetEntry("a").
		Compile(WithInterruptBefore("gate"))

	require.NoError(t, err)
	assert.True(t, compiled.IsInterrupt("gate"))
	assert.False(t, compiled.IsInterrupt("a"))
}

func TestCompile_JoinsMultipleErrors(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", passthrough).
		AddEdge("a", "ghost").
		Compile()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEntryPoint)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
