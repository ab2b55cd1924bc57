package pipeline

import (
	"fmt"
	"strings"

	"github.com/finagent-ai/finagent/pkg/stategraph"
)

// requiredSections are the headings every report draft must carry; the
// quality checker scores their presence.
var requiredSections = []string{
	"Executive Summary",
	"Company Overview",
	"Financial Analysis",
	"SWOT Analysis",
	"Key Findings",
	"Outlook",
	"Risk Factors",
	"Conclusion",
}

// writerNode renders the analysis into a markdown report draft. When it
// re-enters the revision cycle (a failed quality review is present) it
// increments revision_count and folds the reviewer's instructions into the
// draft; the counter lives here because the re-entering node owns it, not
// the router.
//
// Reads: query, company, financial_data, analysis, quality_review,
// revision_count. Writes: report_draft, revision_count, current_agent,
// errors.
func (p *Pipeline) writerNode(ctx stategraph.Context, state stategraph.State) (stategraph.State, error) {
	revision := state.Int(FieldRevisionCount)
	review := state.Map(FieldQualityReview)
	revising := false
	if passed, ok := review["passed"].(bool); ok && !passed {
		revising = true
		revision++
		ctx.Logger().Info("revising report draft", "revision", revision)
	}

	analysis := state.Map(FieldAnalysis)
	data := state.Map(FieldFinancialData)
	if analysis == nil || data == nil {
		// The failure still counts against the revision budget, otherwise a
		// run with no data would cycle through review until the step limit.
		update := stategraph.State{
			FieldCurrentAgent:      "writer_failed",
			stategraph.ErrorsField: []any{"writer: missing analysis or financial data"},
		}
		if revising {
			update[FieldRevisionCount] = revision
		}
		return update, nil
	}

	name := asString(data["company_name"])
	ticker := asString(data["ticker"])
	outlook := asString(analysis["outlook"])
	health := asString(analysis["financial_health_score"])

	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s) Research Report\n\n", name, ticker)
	fmt.Fprintf(&b, "**Query:** %s\n\n", state.String(FieldQuery))
	fmt.Fprintf(&b, "**Rating:** %s | **Financial Health:** %s\n\n", title(outlook), title(health))

	fmt.Fprintf(&b, "## Executive Summary\n\n%s\n\n", asString(analysis["summary"]))

	fmt.Fprintf(&b, "## Company Overview\n\n%s operates in the %s sector (%s).\n\n",
		name, asString(data["sector"]), asString(data["industry"]))

	b.WriteString("## Financial Analysis\n\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Current Price | $%.2f |\n", asFloat(data["current_price"]))
	fmt.Fprintf(&b, "| Market Cap | $%.0fB |\n", asFloat(data["market_cap"])/1e9)
	fmt.Fprintf(&b, "| P/E Ratio | %.1f |\n", asFloat(data["pe_ratio"]))
	fmt.Fprintf(&b, "| Profit Margin | %.0f%% |\n", asFloat(data["profit_margin"])*100)
	fmt.Fprintf(&b, "| Revenue Growth | %.0f%% |\n", asFloat(data["revenue_growth"])*100)
	fmt.Fprintf(&b, "| Debt/Equity | %.1f |\n", asFloat(data["debt_to_equity"]))
	fmt.Fprintf(&b, "| ROE | %.0f%% |\n\n", asFloat(data["roe"])*100)

	b.WriteString("## SWOT Analysis\n\n")
	writeList(&b, "Strengths", analysis["strengths"])
	writeList(&b, "Weaknesses", analysis["weaknesses"])
	writeList(&b, "Opportunities", analysis["opportunities"])
	writeList(&b, "Threats", analysis["threats"])

	b.WriteString("## Key Findings\n\n")
	for i, f := range asAnyList(analysis["key_findings"]) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, asString(f))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Outlook\n\n%s outlook. %s\n\n", title(outlook), outlookNarrative(outlook, health))

	b.WriteString("## Risk Factors\n\n")
	for _, t := range asAnyList(analysis["threats"]) {
		fmt.Fprintf(&b, "- %s\n", asString(t))
	}
	for _, w := range asAnyList(analysis["weaknesses"]) {
		fmt.Fprintf(&b, "- %s\n", asString(w))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Conclusion\n\n%s presents a %s profile; the %s outlook reflects the balance of the findings above.\n",
		name, health, outlook)

	if revising {
		if instructions := asString(review["revision_instructions"]); instructions != "" {
			fmt.Fprintf(&b, "\n## Revision Notes\n\nRevision %d addressed: %s\n", revision, instructions)
		}
	}

	update := stategraph.State{
		FieldReportDraft:  b.String(),
		FieldCurrentAgent: "writer_complete",
	}
	if revising {
		update[FieldRevisionCount] = revision
	}
	return update, nil
}

func writeList(b *strings.Builder, heading string, items any) {
	fmt.Fprintf(b, "### %s\n\n", heading)
	list := asAnyList(items)
	if len(list) == 0 {
		b.WriteString("- None identified\n\n")
		return
	}
	for _, item := range list {
		fmt.Fprintf(b, "- %s\n", asString(item))
	}
	b.WriteString("\n")
}

func outlookNarrative(outlook, health string) string {
	switch outlook {
	case "bullish":
		return "Positive catalysts outweigh the identified risks."
	case "bearish":
		return "Risks outweigh the opportunities at current levels."
	default:
		return fmt.Sprintf("Balanced risk and reward given %s financial health.", health)
	}
}

func asAnyList(v any) []any {
	switch list := v.(type) {
	case []any:
		return list
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	}
	return nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
