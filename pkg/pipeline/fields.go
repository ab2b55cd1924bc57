package pipeline

import "github.com/finagent-ai/finagent/pkg/stategraph"

// State field names shared by the pipeline nodes. Each field is written by
// one stage and read downstream; only FieldRawFindings and the engine's
// errors field accumulate across node executions.
const (
	// FieldQuery is the user's research question, set once at start.
	FieldQuery = "query"

	// Planner outputs.
	FieldCompany         = "company"
	FieldQueryComplexity = "query_complexity"
	FieldResearchPlan    = "research_plan"

	// Researcher outputs. FieldRawFindings accumulates.
	FieldRawFindings   = "raw_findings"
	FieldFinancialData = "financial_data"

	// Analyst, writer, quality checker, and risk assessor outputs.
	FieldAnalysis       = "analysis"
	FieldReportDraft    = "report_draft"
	FieldQualityReview  = "quality_review"
	FieldRiskAssessment = "risk_assessment"

	// Control flow.
	FieldRevisionCount = "revision_count"
	FieldHumanApproved = "human_approved"
	FieldCurrentAgent  = "current_agent"

	// Final output.
	FieldFinalReport = "final_report"
)

// Complexity labels written by the planner.
const (
	ComplexitySimple  = "simple"
	ComplexityComplex = "complex"
)

// Routing labels returned by the quality selector.
const (
	LabelApprove = "approve"
	LabelRevise  = "revise"
)

// Reducers returns the merge registry for pipeline state: raw findings and
// errors accumulate, everything else is replace-on-write.
func Reducers() *stategraph.Reducers {
	return stategraph.NewReducers().Accumulate(FieldRawFindings)
}

// InitialState builds the starting state for a research run.
func InitialState(query string) stategraph.State {
	return stategraph.State{
		FieldQuery:           query,
		FieldQueryComplexity: ComplexityComplex,
		FieldRevisionCount:   0,
		FieldCurrentAgent:    "starting",
	}
}
