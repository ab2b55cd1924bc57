// Package pipeline implements the financial research workflow on top of the
// stategraph engine: a planner classifies the query, a researcher gathers
// market data, an analyst produces a SWOT assessment, a writer drafts the
// report, a quality checker scores it and may send it back for revision, and
// a human approval gate suspends the run until an operator resumes it.
// Approved reports pick up a risk assessment before finalization.
//
// Simple lookup queries short-circuit past the analysis stages and answer
// with a quick data table.
package pipeline
