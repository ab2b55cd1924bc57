package pipeline

import (
	"fmt"
	"strings"

	"github.com/finagent-ai/finagent/pkg/stategraph"
)

// humanApprovalNode is the human-in-the-loop gate. The engine suspends the
// run before this node; by the time it executes, a Resume has merged the
// operator's decision into state. Rejection never reaches here — rejected
// runs are cancelled instead of resumed.
//
// Reads: human_approved. Writes: human_approved, current_agent.
func (p *Pipeline) humanApprovalNode(ctx stategraph.Context, state stategraph.State) (stategraph.State, error) {
	update := stategraph.State{FieldCurrentAgent: "human_approval_complete"}
	if _, present := state[FieldHumanApproved]; !present {
		// Non-interactive runs (interrupt disabled) auto-approve.
		update[FieldHumanApproved] = true
	}
	ctx.Logger().Info("approval gate passed")
	return update, nil
}

// simpleResponseNode answers lookup queries with a quick data table,
// bypassing analysis, drafting, and review.
//
// Reads: query, company, financial_data. Writes: final_report,
// current_agent, errors.
func (p *Pipeline) simpleResponseNode(ctx stategraph.Context, state stategraph.State) (stategraph.State, error) {
	data := state.Map(FieldFinancialData)
	company := state.String(FieldCompany)
	if data == nil {
		return stategraph.State{
			FieldFinalReport:       fmt.Sprintf("Could not retrieve data for %s.", company),
			FieldCurrentAgent:      "simple_response_failed",
			stategraph.ErrorsField: []any{"simple_response: financial data lookup failed"},
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Quick Lookup\n\n", asString(data["company_name"]))
	fmt.Fprintf(&b, "**Query:** %s\n\n", state.String(FieldQuery))
	b.WriteString("## Key Data Points\n\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Current Price | $%.2f |\n", asFloat(data["current_price"]))
	fmt.Fprintf(&b, "| Market Cap | $%.0fB |\n", asFloat(data["market_cap"])/1e9)
	fmt.Fprintf(&b, "| P/E Ratio | %.1f |\n", asFloat(data["pe_ratio"]))
	fmt.Fprintf(&b, "| Dividend Yield | %.1f%% |\n", asFloat(data["dividend_yield"])*100)
	fmt.Fprintf(&b, "| Sector | %s |\n", asString(data["sector"]))
	fmt.Fprintf(&b, "| Industry | %s |\n\n", asString(data["industry"]))
	b.WriteString("*Quick lookup only. Ask a more specific question for detailed analysis.*\n")

	ctx.Logger().Info("simple response rendered", "company", company)

	return stategraph.State{
		FieldFinalReport:  b.String(),
		FieldCurrentAgent: "simple_response_complete",
	}, nil
}

// finalizeReportNode appends the risk assessment to the approved draft and
// publishes the final report.
//
// Reads: report_draft, risk_assessment. Writes: final_report, current_agent.
func (p *Pipeline) finalizeReportNode(ctx stategraph.Context, state stategraph.State) (stategraph.State, error) {
	draft := state.String(FieldReportDraft)
	risk := state.Map(FieldRiskAssessment)

	final := draft
	if overall := asString(risk["overall_risk_level"]); overall != "" {
		var b strings.Builder
		b.WriteString(draft)
		b.WriteString("\n\n---\n\n## Detailed Risk Assessment\n\n")
		fmt.Fprintf(&b, "**Overall Risk Level: %s**\n\n", strings.ToUpper(overall))
		b.WriteString("| Category | Level | Assessment |\n|----------|-------|------------|\n")
		for _, cat := range []struct{ label, key string }{
			{"Market Risk", "market_risk"},
			{"Credit Risk", "credit_risk"},
			{"Regulatory Risk", "regulatory_risk"},
			{"Operational Risk", "operational_risk"},
			{"Competitive Risk", "competitive_risk"},
		} {
			c, _ := risk[cat.key].(map[string]any)
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				cat.label, strings.ToUpper(asString(c["level"])), asString(c["assessment"]))
		}
		b.WriteString("\n### Key Risk Factors\n\n")
		for _, f := range asAnyList(risk["key_risk_factors"]) {
			fmt.Fprintf(&b, "- %s\n", asString(f))
		}
		fmt.Fprintf(&b, "\n### Risk Summary\n\n%s\n", asString(risk["risk_summary"]))
		final = b.String()
	}

	ctx.Logger().Info("report finalized", "bytes", len(final))

	return stategraph.State{
		FieldFinalReport:  final,
		FieldCurrentAgent: "finalize_complete",
	}, nil
}
