// Package stategraph is a graph execution engine for stateful, resumable
// workflows. A workflow is a directed graph of named nodes threaded by a
// shared State; each node returns a partial update that is merged into the
// state by a per-field reducer registry (replace or append semantics).
//
// Graphs are built with the Graph builder and frozen with Compile, which
// validates the structure (entry point, edge endpoints, conditional route
// tables, reachability, path to END). The Engine drives the step loop: it
// invokes the current node, merges its update, persists a checkpoint, asks
// the router for the next node, and repeats until END.
//
// Runs can suspend. A node compiled with WithInterruptBefore causes the
// engine to persist a Suspended checkpoint and return control to the caller
// before that node executes. Resume merges an external decision into the
// state and re-enters the loop at the suspended node. Because the full run
// position lives in the checkpoint store, a suspended run can be resumed
// from a different process days later.
//
// Node failures are values, not panics across the run boundary: the engine
// appends the failure to the accumulating "errors" state field, persists a
// Failed checkpoint, and returns the failed Run snapshot.
package stategraph
