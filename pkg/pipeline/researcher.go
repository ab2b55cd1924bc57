package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/finagent-ai/finagent/pkg/stategraph"
)

// researcherNode executes the research plan against the market data
// provider. Each subtask yields a finding appended to raw_findings; the
// financial_data task additionally stores the structured metrics.
//
// Reads: query, company, research_plan. Writes: raw_findings (append),
// financial_data, current_agent, errors.
func (p *Pipeline) researcherNode(ctx stategraph.Context, state stategraph.State) (stategraph.State, error) {
	company := state.String(FieldCompany)
	if company == "" {
		return stategraph.State{
			FieldCurrentAgent:      "researcher_failed",
			stategraph.ErrorsField: []any{"researcher: no company specified"},
		}, nil
	}

	plan := state.List(FieldResearchPlan)
	if len(plan) == 0 {
		return stategraph.State{
			FieldCurrentAgent:      "researcher_failed",
			stategraph.ErrorsField: []any{"researcher: no research plan provided"},
		}, nil
	}

	metrics, err := p.provider.Metrics(ctx, company)
	if errors.Is(err, ErrUnknownSymbol) {
		return stategraph.State{
			FieldCurrentAgent:      "researcher_failed",
			stategraph.ErrorsField: []any{fmt.Sprintf("researcher: %v", err)},
		}, nil
	}
	if err != nil {
		// Provider infrastructure faults abort the node.
		return nil, fmt.Errorf("market data for %s: %w", company, err)
	}

	findings := make([]any, 0, len(plan))
	var financialData map[string]any

	for _, raw := range sortByPriority(plan) {
		task, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		switch task["task_type"] {
		case TaskFinancialData:
			financialData = metrics.asState()
			findings = append(findings, finding(
				"financial_metrics",
				fmt.Sprintf("%s key metrics", metrics.CompanyName),
				fmt.Sprintf("%s (%s) trades at $%.2f with a market cap of $%d, P/E %.1f, profit margin %.0f%%.",
					metrics.CompanyName, metrics.Ticker, metrics.CurrentPrice,
					metrics.MarketCap, metrics.PERatio, metrics.ProfitMargin*100),
				"market data", "high",
			))
		case TaskWebSearch:
			findings = append(findings, searchFinding(metrics, task))
		case TaskAnalysis:
			findings = append(findings, finding(
				"risk_factor",
				fmt.Sprintf("Leverage profile of %s", metrics.CompanyName),
				fmt.Sprintf("Debt-to-equity stands at %.1f; the %s sector carries %s cyclicality.",
					metrics.DebtToEquity, metrics.Sector, cyclicality(metrics.Sector)),
				"derived", "medium",
			))
		}
	}

	ctx.Logger().Info("research complete", "company", metrics.Ticker, "findings", len(findings))

	return stategraph.State{
		FieldRawFindings:   findings,
		FieldFinancialData: financialData,
		FieldCurrentAgent:  "researcher_complete",
	}, nil
}

// sortByPriority orders tasks high, medium, low; ties keep plan order.
func sortByPriority(plan []any) []any {
	rank := map[string]int{"high": 0, "medium": 1, "low": 2}
	sorted := make([]any, len(plan))
	copy(sorted, plan)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := 2, 2
		if t, ok := sorted[i].(map[string]any); ok {
			if r, ok := rank[asString(t["priority"])]; ok {
				pi = r
			}
		}
		if t, ok := sorted[j].(map[string]any); ok {
			if r, ok := rank[asString(t["priority"])]; ok {
				pj = r
			}
		}
		return pi < pj
	})
	return sorted
}

func finding(category, title, content, source, relevance string) map[string]any {
	return map[string]any{
		"category":  category,
		"title":     title,
		"content":   content,
		"source":    source,
		"relevance": relevance,
	}
}

// searchFinding derives a news, ratings, or industry finding from the task
// description and the company's fundamentals.
func searchFinding(m Metrics, task map[string]any) map[string]any {
	desc := strings.ToLower(asString(task["description"]))
	switch {
	case containsWord(desc, "news") || containsWord(desc, "developments"):
		trend := "revenue growth of"
		if m.RevenueGrowth < 0 {
			trend = "a revenue decline of"
		}
		return finding(
			"recent_news",
			fmt.Sprintf("%s recent performance", m.CompanyName),
			fmt.Sprintf("Latest reporting shows %s %.0f%% year over year with margins at %.0f%%.",
				trend, abs(m.RevenueGrowth)*100, m.ProfitMargin*100),
			"market data", "high",
		)
	case containsWord(desc, "analyst") || containsWord(desc, "ratings"):
		stance := "hold"
		if m.ProfitMargin >= 0.2 && m.RevenueGrowth > 0 {
			stance = "buy"
		} else if m.ProfitMargin < 0.05 {
			stance = "underweight"
		}
		return finding(
			"analyst_opinion",
			fmt.Sprintf("Consensus stance on %s", m.Ticker),
			fmt.Sprintf("At a P/E of %.1f and ROE of %.0f%%, the fundamentals imply a %s stance.",
				m.PERatio, m.ROE*100, stance),
			"derived", "medium",
		)
	default:
		return finding(
			"industry_context",
			fmt.Sprintf("%s within %s", m.CompanyName, m.Industry),
			fmt.Sprintf("%s operates in %s (%s), a %s-cyclicality segment.",
				m.CompanyName, m.Industry, m.Sector, cyclicality(m.Sector)),
			"derived", "medium",
		)
	}
}

// cyclicality is a coarse sector sensitivity label used in derived findings.
func cyclicality(sector string) string {
	switch sector {
	case "Financial Services", "Consumer Cyclical":
		return "high"
	case "Technology":
		return "moderate"
	default:
		return "low"
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
