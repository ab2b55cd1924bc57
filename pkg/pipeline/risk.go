package pipeline

import (
	"fmt"

	"github.com/finagent-ai/finagent/pkg/stategraph"
)

// riskAssessorNode grades risk by category from the fundamentals and the
// analyst's threat list. It runs only on the approved path, after the human
// gate.
//
// Reads: company, analysis, financial_data. Writes: risk_assessment,
// current_agent, errors.
func (p *Pipeline) riskAssessorNode(ctx stategraph.Context, state stategraph.State) (stategraph.State, error) {
	data := state.Map(FieldFinancialData)
	analysis := state.Map(FieldAnalysis)
	if data == nil {
		return stategraph.State{
			FieldRiskAssessment: map[string]any{
				"overall_risk_level": "moderate",
				"risk_summary":       "Risk assessment ran without financial data.",
			},
			FieldCurrentAgent:      "risk_assessor_failed",
			stategraph.ErrorsField: []any{"risk_assessor: no financial data"},
		}, nil
	}

	name := asString(data["company_name"])
	sector := asString(data["sector"])
	leverage := asFloat(data["debt_to_equity"])
	margin := asFloat(data["profit_margin"])
	growth := asFloat(data["revenue_growth"])
	pe := asFloat(data["pe_ratio"])

	market := riskCategory(
		levelFor(pe > 40 || growth < 0, pe > 60),
		fmt.Sprintf("Valuation at %.1fx earnings with %.0f%% revenue growth.", pe, growth*100),
	)
	credit := riskCategory(
		levelFor(leverage > 1.5, leverage > 3),
		fmt.Sprintf("Debt-to-equity of %.1f against %.0f%% margins.", leverage, margin*100),
	)
	regulatory := riskCategory(
		levelFor(sector == "Financial Services", false),
		fmt.Sprintf("Sector: %s.", sector),
	)
	operational := riskCategory(
		levelFor(margin < 0.10, margin < 0.03),
		fmt.Sprintf("Operating cushion at %.0f%% profit margin.", margin*100),
	)
	competitive := riskCategory(
		levelFor(cyclicality(sector) == "high", false),
		fmt.Sprintf("%s cyclicality in %s.", title(cyclicality(sector)), sector),
	)

	overall := overallRisk(market, credit, operational)

	factors := asAnyList(analysis["threats"])
	factors = append(factors, asAnyList(analysis["weaknesses"])...)
	if len(factors) == 0 {
		factors = []any{"No material risk factors identified"}
	}

	assessment := map[string]any{
		"overall_risk_level": overall,
		"market_risk":        market,
		"credit_risk":        credit,
		"regulatory_risk":    regulatory,
		"operational_risk":   operational,
		"competitive_risk":   competitive,
		"key_risk_factors":   factors,
		"risk_summary": fmt.Sprintf("%s carries %s overall risk, dominated by %s considerations.",
			name, overall, dominantCategory(market, credit, operational)),
	}

	ctx.Logger().Info("risk assessment complete", "overall", overall)

	return stategraph.State{
		FieldRiskAssessment: assessment,
		FieldCurrentAgent:   "risk_assessor_complete",
	}, nil
}

func riskCategory(level, assessment string) map[string]any {
	return map[string]any{"level": level, "assessment": assessment}
}

func levelFor(elevated, critical bool) string {
	switch {
	case critical:
		return "high"
	case elevated:
		return "moderate"
	default:
		return "low"
	}
}

// overallRisk takes the worst of the weight-bearing categories.
func overallRisk(categories ...map[string]any) string {
	rank := map[string]int{"low": 0, "moderate": 1, "high": 2, "critical": 3}
	worst := "low"
	for _, c := range categories {
		if rank[asString(c["level"])] > rank[worst] {
			worst = asString(c["level"])
		}
	}
	return worst
}

func dominantCategory(market, credit, operational map[string]any) string {
	rank := map[string]int{"low": 0, "moderate": 1, "high": 2, "critical": 3}
	names := []string{"market", "credit", "operational"}
	cats := []map[string]any{market, credit, operational}
	best := 0
	for i := 1; i < len(cats); i++ {
		if rank[asString(cats[i]["level"])] > rank[asString(cats[best]["level"])] {
			best = i
		}
	}
	return names[best]
}
