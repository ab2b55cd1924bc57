package stategraph

// END is the terminal marker. Use it as an edge target or conditional route
// destination to indicate the run is complete.
const END = "__end__"

// NodeFunc is the signature for all node functions. A node receives the
// execution context and a read-only view of the current state, and returns a
// partial update containing only the fields it changes.
//
// Nodes must not mutate the state they are given; the engine merges the
// returned update through the reducer registry. Returning a nil update is
// valid and leaves the state unchanged.
//
// Example:
//
//	func classify(ctx stategraph.Context, s stategraph.State) (stategraph.State, error) {
//	    return stategraph.State{"complexity": "simple"}, nil
//	}
type NodeFunc func(ctx Context, state State) (State, error)

// SelectorFunc decides the branch taken by a conditional edge. It inspects
// the current state and returns one of the labels registered in the edge's
// route table. Selectors must be pure: no side effects, no state mutation.
//
// Returning a label that is not in the route table is a routing failure; the
// run is marked Failed and the failure is recorded in the errors field.
type SelectorFunc func(ctx Context, state State) string

// conditionalEdge pairs a selector with its label-to-destination table.
type conditionalEdge struct {
	selector SelectorFunc
	routes   map[string]string
}
