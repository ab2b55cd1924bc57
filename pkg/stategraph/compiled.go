package stategraph

import "sort"

// CompiledGraph is an immutable, executable graph produced by Compile.
//
// CompiledGraph is safe to share: an Engine can drive any number of
// concurrent runs against the same compiled graph. The structure cannot be
// modified after compilation; rebuild the Graph to change it.
type CompiledGraph struct {
	nodes            map[string]NodeFunc
	edges            map[string]string
	conditionalEdges map[string]conditionalEdge
	entryPoint       string
	interruptBefore  map[string]bool
	reducers         *Reducers
}

// EntryPoint returns the entry node ID.
func (cg *CompiledGraph) EntryPoint() string {
	return cg.entryPoint
}

// NodeIDs returns all node identifiers in the graph, sorted.
func (cg *CompiledGraph) NodeIDs() []string {
	ids := make([]string, 0, len(cg.nodes))
	for id := range cg.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasNode checks if a node exists in the graph.
func (cg *CompiledGraph) HasNode(id string) bool {
	_, exists := cg.nodes[id]
	return exists
}

// IsConditional returns true if the node routes through a conditional edge.
func (cg *CompiledGraph) IsConditional(id string) bool {
	_, exists := cg.conditionalEdges[id]
	return exists
}

// IsInterrupt returns true if the node is flagged as an interrupt-before
// suspension point.
func (cg *CompiledGraph) IsInterrupt(id string) bool {
	return cg.interruptBefore[id]
}

// Routes returns the label-to-destination table for a conditional node, or
// nil if the node routes unconditionally. The returned map is a copy.
func (cg *CompiledGraph) Routes(id string) map[string]string {
	cond, exists := cg.conditionalEdges[id]
	if !exists {
		return nil
	}
	out := make(map[string]string, len(cond.routes))
	for label, dest := range cond.routes {
		out[label] = dest
	}
	return out
}

// Reducers returns the reducer registry the engine merges updates through.
func (cg *CompiledGraph) Reducers() *Reducers {
	return cg.reducers
}

// getNode returns the node function for the given ID.
func (cg *CompiledGraph) getNode(id string) (NodeFunc, bool) {
	fn, exists := cg.nodes[id]
	return fn, exists
}
