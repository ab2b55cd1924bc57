package pipeline

import (
	"fmt"

	"github.com/finagent-ai/finagent/pkg/stategraph"
)

// analystNode turns findings and fundamentals into a structured SWOT
// assessment with a health score and outlook.
//
// Reads: company, raw_findings, financial_data. Writes: analysis,
// current_agent, errors.
func (p *Pipeline) analystNode(ctx stategraph.Context, state stategraph.State) (stategraph.State, error) {
	data := state.Map(FieldFinancialData)
	if data == nil {
		return stategraph.State{
			FieldCurrentAgent:      "analyst_failed",
			stategraph.ErrorsField: []any{"analyst: no financial data to analyze"},
		}, nil
	}

	name := asString(data["company_name"])
	margin := asFloat(data["profit_margin"])
	growth := asFloat(data["revenue_growth"])
	leverage := asFloat(data["debt_to_equity"])
	roe := asFloat(data["roe"])
	pe := asFloat(data["pe_ratio"])

	var strengths, weaknesses, opportunities, threats []any

	if margin >= 0.20 {
		strengths = append(strengths, fmt.Sprintf("Strong profitability with a %.0f%% profit margin", margin*100))
	}
	if roe >= 0.15 {
		strengths = append(strengths, fmt.Sprintf("High return on equity at %.0f%%", roe*100))
	}
	if leverage > 0 && leverage <= 0.5 {
		strengths = append(strengths, fmt.Sprintf("Conservative balance sheet with debt-to-equity of %.1f", leverage))
	}

	if leverage > 1.5 {
		weaknesses = append(weaknesses, fmt.Sprintf("Elevated leverage with debt-to-equity of %.1f", leverage))
	}
	if margin < 0.10 {
		weaknesses = append(weaknesses, fmt.Sprintf("Thin profit margin of %.0f%%", margin*100))
	}
	if pe > 40 {
		weaknesses = append(weaknesses, fmt.Sprintf("Rich valuation at a P/E of %.1f", pe))
	}

	if growth >= 0.10 {
		opportunities = append(opportunities, fmt.Sprintf("Revenue growing %.0f%% year over year", growth*100))
	} else if growth > 0 {
		opportunities = append(opportunities, fmt.Sprintf("Modest revenue growth of %.0f%%", growth*100))
	}

	if growth < 0 {
		threats = append(threats, fmt.Sprintf("Revenue contracting %.0f%% year over year", -growth*100))
	}
	if leverage > 1.5 {
		threats = append(threats, "Refinancing exposure in a rising-rate environment")
	}
	if len(threats) == 0 {
		threats = append(threats, "Macro-level demand sensitivity")
	}
	if len(opportunities) == 0 {
		opportunities = append(opportunities, "Operating leverage if revenue trends recover")
	}

	health := healthScore(margin, growth, leverage)
	outlook := outlookLabel(margin, growth)

	keyFindings := []any{
		fmt.Sprintf("%s posts a %.0f%% profit margin on %.0f%% revenue growth", name, margin*100, growth*100),
		fmt.Sprintf("Leverage (debt-to-equity %.1f) frames the risk profile", leverage),
		fmt.Sprintf("Valuation at %.1fx earnings against %.0f%% ROE", pe, roe*100),
	}

	analysis := map[string]any{
		"key_findings":           keyFindings,
		"strengths":              strengths,
		"weaknesses":             weaknesses,
		"opportunities":          opportunities,
		"threats":                threats,
		"financial_health_score": health,
		"outlook":                outlook,
		"summary": fmt.Sprintf(
			"%s shows %s financial health with a %s outlook: %.0f%% margins, %.0f%% revenue growth, and debt-to-equity of %.1f.",
			name, health, outlook, margin*100, growth*100, leverage),
	}

	ctx.Logger().Info("analysis complete", "health", health, "outlook", outlook)

	return stategraph.State{
		FieldAnalysis:     analysis,
		FieldCurrentAgent: "analyst_complete",
	}, nil
}

// healthScore maps fundamentals to strong/moderate/weak/critical.
func healthScore(margin, growth, leverage float64) string {
	score := 0
	if margin >= 0.20 {
		score += 2
	} else if margin >= 0.10 {
		score++
	}
	if growth > 0 {
		score++
	}
	if leverage <= 1.0 {
		score++
	}

	switch {
	case score >= 3:
		return "strong"
	case score == 2:
		return "moderate"
	case score == 1:
		return "weak"
	default:
		return "critical"
	}
}

// outlookLabel maps fundamentals to bullish/neutral/bearish.
func outlookLabel(margin, growth float64) string {
	switch {
	case margin >= 0.15 && growth > 0:
		return "bullish"
	case margin < 0.05 || growth < 0:
		return "bearish"
	default:
		return "neutral"
	}
}

func asFloat(v any) float64 {
	switch f := v.(type) {
	case float64:
		return f
	case int:
		return float64(f)
	case int64:
		return float64(f)
	}
	return 0
}
