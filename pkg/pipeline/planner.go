package pipeline

import (
	"fmt"
	"strings"

	"github.com/finagent-ai/finagent/pkg/stategraph"
)

// Research task types produced by the planner.
const (
	TaskFinancialData = "financial_data"
	TaskWebSearch     = "web_search"
	TaskAnalysis      = "analysis"
)

// lookupTerms mark a query as a simple data lookup.
var lookupTerms = []string{
	"stock price", "share price", "price of",
	"market cap", "p/e", "pe ratio", "dividend yield",
}

// depthTerms force the full research pipeline even when a lookup term is
// also present.
var depthTerms = []string{
	"analyze", "analysis", "compare", "comparison", "should i",
	"risk", "outlook", "health", "invest", "recommend", "why",
}

// plannerNode classifies the query, extracts the target company, and builds
// the research plan.
//
// Reads: query. Writes: company, query_complexity, research_plan,
// current_agent, errors.
func (p *Pipeline) plannerNode(ctx stategraph.Context, state stategraph.State) (stategraph.State, error) {
	query := state.String(FieldQuery)
	if strings.TrimSpace(query) == "" {
		return stategraph.State{
			FieldQueryComplexity: ComplexityComplex,
			FieldResearchPlan:    []any{},
			FieldCurrentAgent:    "planner_failed",
			stategraph.ErrorsField: []any{
				"planner: empty query",
			},
		}, nil
	}

	complexity := classifyQuery(query)

	ticker, err := p.provider.Resolve(ctx, query)
	if err != nil {
		// Unresolvable company defaults to the full pipeline; the
		// researcher reports the gap.
		ctx.Logger().Warn("planner could not resolve company", "query", query)
		return stategraph.State{
			FieldCompany:         "",
			FieldQueryComplexity: ComplexityComplex,
			FieldResearchPlan:    []any{},
			FieldCurrentAgent:    "planner_failed",
			stategraph.ErrorsField: []any{
				fmt.Sprintf("planner: %v", err),
			},
		}, nil
	}

	plan := buildPlan(ticker, complexity)
	ctx.Logger().Info("research plan created",
		"company", ticker,
		"complexity", complexity,
		"tasks", len(plan))

	return stategraph.State{
		FieldCompany:         ticker,
		FieldQueryComplexity: complexity,
		FieldResearchPlan:    plan,
		FieldCurrentAgent:    "planner_complete",
	}, nil
}

// classifyQuery labels a query simple when it reads like a single data
// lookup and complex otherwise. Ambiguous queries default to complex.
func classifyQuery(query string) string {
	lower := strings.ToLower(query)

	for _, term := range depthTerms {
		if strings.Contains(lower, term) {
			return ComplexityComplex
		}
	}
	for _, term := range lookupTerms {
		if strings.Contains(lower, term) {
			return ComplexitySimple
		}
	}
	return ComplexityComplex
}

// buildPlan produces the research subtasks: a single data fetch for simple
// lookups, the full task set for complex research.
func buildPlan(ticker, complexity string) []any {
	task := func(id, desc, taskType, priority string) map[string]any {
		return map[string]any{
			"task_id":     id,
			"description": desc,
			"task_type":   taskType,
			"priority":    priority,
		}
	}

	if complexity == ComplexitySimple {
		return []any{
			task("task_1", fmt.Sprintf("Fetch key metrics for %s", ticker), TaskFinancialData, "high"),
		}
	}

	return []any{
		task("task_1", fmt.Sprintf("Gather financial statements and key metrics for %s", ticker), TaskFinancialData, "high"),
		task("task_2", fmt.Sprintf("Research recent news and developments around %s", ticker), TaskWebSearch, "high"),
		task("task_3", fmt.Sprintf("Collect analyst opinions and ratings for %s", ticker), TaskWebSearch, "medium"),
		task("task_4", fmt.Sprintf("Review industry and competitive context for %s", ticker), TaskWebSearch, "medium"),
		task("task_5", fmt.Sprintf("Identify risk factors facing %s", ticker), TaskAnalysis, "low"),
	}
}
