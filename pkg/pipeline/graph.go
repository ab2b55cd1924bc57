package pipeline

import (
	"github.com/finagent-ai/finagent/pkg/stategraph"
)

// Node IDs in the research graph.
const (
	NodePlanner        = "planner"
	NodeResearcher     = "researcher"
	NodeAnalyst        = "analyst"
	NodeWriter         = "writer"
	NodeQualityChecker = "quality_checker"
	NodeHumanApproval  = "human_approval"
	NodeRiskAssessor   = "risk_assessor"
	NodeFinalizeReport = "finalize_report"
	NodeSimpleResponse = "simple_response"
)

// Pipeline owns the research workflow: its market data source and tuning.
type Pipeline struct {
	provider MarketData
	opts     Options
}

// New creates a pipeline over the given market data provider.
func New(provider MarketData, opts ...Option) *Pipeline {
	if provider == nil {
		panic("pipeline: provider cannot be nil")
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Pipeline{provider: provider, opts: o}
}

// Options returns the pipeline's effective tuning.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Graph compiles the research workflow. With interactive true the run
// suspends before the human approval gate and waits for Resume; otherwise
// the gate auto-approves and the run completes in one segment.
//
// Topology:
//
//	planner -> researcher -> {analyst | simple_response}
//	analyst -> writer -> quality_checker -> {human_approval | writer}
//	human_approval -> risk_assessor -> finalize_report -> END
//	simple_response -> END
//
// Both complexity labels route the planner to the researcher: even simple
// lookups need data. The simple path splits off after research.
func (p *Pipeline) Graph(interactive bool) (*stategraph.CompiledGraph, error) {
	g := stategraph.NewGraph().
		WithReducers(Reducers()).
		AddNode(NodePlanner, p.plannerNode).
		AddNode(NodeResearcher, p.researcherNode).
		AddNode(NodeAnalyst, p.analystNode).
		AddNode(NodeWriter, p.writerNode).
		AddNode(NodeQualityChecker, p.qualityCheckerNode).
		AddNode(NodeHumanApproval, p.humanApprovalNode).
		AddNode(NodeRiskAssessor, p.riskAssessorNode).
		AddNode(NodeFinalizeReport, p.finalizeReportNode).
		AddNode(NodeSimpleResponse, p.simpleResponseNode).
		SetEntry(NodePlanner).
		AddConditionalEdge(NodePlanner, p.RouteByComplexity, map[string]string{
			ComplexityComplex: NodeResearcher,
			ComplexitySimple:  NodeResearcher,
		}).
		AddConditionalEdge(NodeResearcher, p.RouteAfterResearch, map[string]string{
			NodeAnalyst:        NodeAnalyst,
			NodeSimpleResponse: NodeSimpleResponse,
		}).
		AddEdge(NodeSimpleResponse, stategraph.END).
		AddEdge(NodeAnalyst, NodeWriter).
		AddEdge(NodeWriter, NodeQualityChecker).
		AddConditionalEdge(NodeQualityChecker, p.RouteAfterQuality, map[string]string{
			LabelApprove: NodeHumanApproval,
			LabelRevise:  NodeWriter,
		}).
		AddEdge(NodeHumanApproval, NodeRiskAssessor).
		AddEdge(NodeRiskAssessor, NodeFinalizeReport).
		AddEdge(NodeFinalizeReport, stategraph.END)

	if interactive {
		return g.Compile(stategraph.WithInterruptBefore(NodeHumanApproval))
	}
	return g.Compile()
}

// RouteByComplexity reads the planner's classification. Both labels lead to
// the researcher today; the label is still recorded so the post-research
// route and any observer can see the decision.
func (p *Pipeline) RouteByComplexity(_ stategraph.Context, state stategraph.State) string {
	if state.String(FieldQueryComplexity) == ComplexitySimple {
		return ComplexitySimple
	}
	return ComplexityComplex
}

// RouteAfterResearch splits simple lookups off to the quick-answer node and
// sends everything else into full analysis.
func (p *Pipeline) RouteAfterResearch(_ stategraph.Context, state stategraph.State) string {
	if state.String(FieldQueryComplexity) == ComplexitySimple {
		return NodeSimpleResponse
	}
	return NodeAnalyst
}
