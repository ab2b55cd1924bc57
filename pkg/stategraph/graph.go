package stategraph

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a mutable builder for execution graphs. Chain AddNode, AddEdge,
// AddConditionalEdge, and SetEntry calls to define the workflow, then call
// Compile to produce an immutable CompiledGraph.
//
// Graph is NOT thread-safe during building; construct it from a single
// goroutine. The compiled result is safe to share across runs.
//
// Example:
//
//	graph := stategraph.NewGraph().
//	    AddNode("plan", planNode).
//	    AddNode("fetch", fetchNode).
//	    AddEdge("plan", "fetch").
//	    AddEdge("fetch", stategraph.END).
//	    SetEntry("plan")
//
//	compiled, err := graph.Compile()
type Graph struct {
	mu               sync.RWMutex
	nodes            map[string]NodeFunc
	edges            map[string][]string
	conditionalEdges map[string]conditionalEdge
	entryPoint       string
	reducers         *Reducers
}

// NewGraph creates a new graph builder with a default reducer registry
// (every field replace-on-write except the errors field).
func NewGraph() *Graph {
	return &Graph{
		nodes:            make(map[string]NodeFunc),
		edges:            make(map[string][]string),
		conditionalEdges: make(map[string]conditionalEdge),
		reducers:         NewReducers(),
	}
}

// AddNode adds a named node to the graph.
// Returns the graph for method chaining.
//
// Panics if:
//   - id is empty
//   - id is the reserved word "END" or "__end__" (case-insensitive)
//   - id contains whitespace
//   - fn is nil
//   - id already exists in the graph
func (g *Graph) AddNode(id string, fn NodeFunc) *Graph {
	if id == "" {
		panic("stategraph: node ID cannot be empty")
	}

	idLower := strings.ToLower(id)
	if idLower == "end" || idLower == "__end__" {
		panic("stategraph: node ID cannot be reserved word 'END'")
	}

	if strings.ContainsAny(id, " \t\n\r") {
		panic("stategraph: node ID cannot contain whitespace")
	}

	if fn == nil {
		panic("stategraph: node function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		panic(fmt.Sprintf("stategraph: duplicate node ID: %s", id))
	}

	g.nodes[id] = fn
	return g
}

// AddEdge adds an unconditional edge from one node to another. The target
// can be a node ID or stategraph.END. Returns the graph for method chaining.
//
// Edge validation happens at Compile time, not here, so edges may be added
// in any order.
func (g *Graph) AddEdge(from, to string) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdge adds a conditional edge group: at runtime the selector
// inspects the state and returns a label, which the router maps to a
// destination through the routes table. Destinations may be node IDs or
// stategraph.END. Returns the graph for method chaining.
//
// A node may have at most one conditional edge group, and unconditional and
// conditional edges from the same node are mutually exclusive; violations
// are rejected at Compile time.
func (g *Graph) AddConditionalEdge(from string, selector SelectorFunc, routes map[string]string) *Graph {
	if selector == nil {
		panic("stategraph: selector function cannot be nil")
	}
	if len(routes) == 0 {
		panic("stategraph: conditional edge requires a route table")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	copied := make(map[string]string, len(routes))
	for label, dest := range routes {
		copied[label] = dest
	}
	g.conditionalEdges[from] = conditionalEdge{selector: selector, routes: copied}
	return g
}

// SetEntry designates the entry point node. This must be called before
// Compile. Returns the graph for method chaining.
func (g *Graph) SetEntry(id string) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entryPoint = id
	return g
}

// Accumulate marks state fields as append-on-write in the graph's reducer
// registry. Returns the graph for method chaining.
func (g *Graph) Accumulate(fields ...string) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reducers.Accumulate(fields...)
	return g
}

// WithReducers replaces the graph's reducer registry. Use when the registry
// is shared with code that merges state outside the engine.
func (g *Graph) WithReducers(r *Reducers) *Graph {
	if r == nil {
		panic("stategraph: reducers cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.reducers = r
	return g
}
