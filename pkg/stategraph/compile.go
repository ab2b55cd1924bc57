package stategraph

import (
	"errors"
	"fmt"
	"sort"
)

// CompileOption configures graph compilation.
type CompileOption func(*compileConfig)

type compileConfig struct {
	interruptBefore []string
}

// WithInterruptBefore flags nodes as suspension points. When the step loop
// reaches a flagged node that has not been resumed past, the engine persists
// a Suspended checkpoint and returns control to the caller instead of
// invoking the node.
func WithInterruptBefore(nodes ...string) CompileOption {
	return func(c *compileConfig) {
		c.interruptBefore = append(c.interruptBefore, nodes...)
	}
}

// Compile validates the graph and creates an executable CompiledGraph.
// Returns an error if validation fails; multiple errors are joined.
//
// Validation checks:
//  1. Entry point is set and references an existing node
//  2. Every edge source and target references an existing node (or END)
//  3. END has no outgoing edges
//  4. No node mixes unconditional and conditional edges, and no node has
//     more than one unconditional edge
//  5. Every conditional route destination references an existing node or END
//  6. Every node has an outgoing edge
//  7. Every node is reachable from the entry point
//  8. A path from the entry point to END exists
//  9. Every interrupt-before node exists
func (g *Graph) Compile(opts ...CompileOption) (*CompiledGraph, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cfg := compileConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var errs []error

	if g.entryPoint == "" {
		errs = append(errs, ErrNoEntryPoint)
	} else if _, exists := g.nodes[g.entryPoint]; !exists {
		errs = append(errs, fmt.Errorf("%w: %s", ErrEntryNotFound, g.entryPoint))
	}

	if edges, exists := g.edges[END]; exists && len(edges) > 0 {
		errs = append(errs, ErrEdgeFromEnd)
	}
	if _, exists := g.conditionalEdges[END]; exists {
		errs = append(errs, ErrEdgeFromEnd)
	}

	for from, targets := range g.edges {
		if from == END {
			continue
		}
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: edge source '%s' does not exist", ErrNodeNotFound, from))
		}
		if _, hasConditional := g.conditionalEdges[from]; hasConditional {
			errs = append(errs, fmt.Errorf("%w: node '%s'", ErrConflictingEdges, from))
		}
		if len(targets) > 1 {
			errs = append(errs, fmt.Errorf("%w: node '%s' has %d unconditional edges", ErrAmbiguousEdges, from, len(targets)))
		}
		for _, to := range targets {
			if to != END {
				if _, exists := g.nodes[to]; !exists {
					errs = append(errs, fmt.Errorf("%w: edge target '%s' does not exist", ErrNodeNotFound, to))
				}
			}
		}
	}

	for from, cond := range g.conditionalEdges {
		if from == END {
			continue
		}
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: conditional edge source '%s' does not exist", ErrNodeNotFound, from))
		}
		for label, dest := range cond.routes {
			if dest != END {
				if _, exists := g.nodes[dest]; !exists {
					errs = append(errs, fmt.Errorf("%w: route %q -> '%s' from node '%s'", ErrNodeNotFound, label, dest, from))
				}
			}
		}
	}

	for id := range g.nodes {
		if len(g.edges[id]) == 0 {
			if _, hasConditional := g.conditionalEdges[id]; !hasConditional {
				errs = append(errs, fmt.Errorf("%w: node '%s'", ErrNoOutgoingEdge, id))
			}
		}
	}

	// Structural checks only make sense once the basic references hold.
	if len(errs) == 0 {
		reachable := g.findReachableNodes()
		var unreachable []string
		for id := range g.nodes {
			if !reachable[id] {
				unreachable = append(unreachable, id)
			}
		}
		sort.Strings(unreachable)
		for _, id := range unreachable {
			errs = append(errs, fmt.Errorf("%w: node '%s'", ErrUnreachableNode, id))
		}

		if !g.hasPathToEnd() {
			errs = append(errs, ErrNoPathToEnd)
		}
	}

	for _, id := range cfg.interruptBefore {
		if _, exists := g.nodes[id]; !exists {
			errs = append(errs, fmt.Errorf("%w: interrupt-before node '%s' does not exist", ErrNodeNotFound, id))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return g.buildCompiledGraph(cfg), nil
}

// successorsOf returns all static successors of a node: the unconditional
// edge target plus every conditional route destination.
func (g *Graph) successorsOf(id string) []string {
	targets := append([]string(nil), g.edges[id]...)
	if cond, ok := g.conditionalEdges[id]; ok {
		for _, dest := range cond.routes {
			targets = append(targets, dest)
		}
	}
	return targets
}

// hasPathToEnd checks that END is reachable from the entry point. Unlike a
// router returning arbitrary IDs, route tables make conditional destinations
// known at compile time, so the analysis is exact.
func (g *Graph) hasPathToEnd() bool {
	canReachEnd := map[string]bool{END: true}

	changed := true
	for changed {
		changed = false
		for id := range g.nodes {
			if canReachEnd[id] {
				continue
			}
			for _, to := range g.successorsOf(id) {
				if canReachEnd[to] {
					canReachEnd[id] = true
					changed = true
					break
				}
			}
		}
	}

	return canReachEnd[g.entryPoint]
}

// findReachableNodes returns the set of nodes reachable from the entry point
// following both unconditional edges and conditional route destinations.
func (g *Graph) findReachableNodes() map[string]bool {
	reachable := make(map[string]bool)
	if g.entryPoint == "" {
		return reachable
	}

	queue := []string{g.entryPoint}
	reachable[g.entryPoint] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, target := range g.successorsOf(current) {
			if target != END && !reachable[target] {
				reachable[target] = true
				queue = append(queue, target)
			}
		}
	}

	return reachable
}

// buildCompiledGraph creates the immutable CompiledGraph from the builder.
func (g *Graph) buildCompiledGraph(cfg compileConfig) *CompiledGraph {
	nodes := make(map[string]NodeFunc, len(g.nodes))
	for id, fn := range g.nodes {
		nodes[id] = fn
	}

	edges := make(map[string]string, len(g.edges))
	for from, targets := range g.edges {
		if len(targets) > 0 {
			edges[from] = targets[0]
		}
	}

	conditionalEdges := make(map[string]conditionalEdge, len(g.conditionalEdges))
	for from, cond := range g.conditionalEdges {
		routes := make(map[string]string, len(cond.routes))
		for label, dest := range cond.routes {
			routes[label] = dest
		}
		conditionalEdges[from] = conditionalEdge{selector: cond.selector, routes: routes}
	}

	interruptBefore := make(map[string]bool, len(cfg.interruptBefore))
	for _, id := range cfg.interruptBefore {
		interruptBefore[id] = true
	}

	return &CompiledGraph{
		nodes:            nodes,
		edges:            edges,
		conditionalEdges: conditionalEdges,
		entryPoint:       g.entryPoint,
		interruptBefore:  interruptBefore,
		reducers:         g.reducers,
	}
}
