package pipeline

import (
	"fmt"
	"strings"

	"github.com/finagent-ai/finagent/pkg/stategraph"
)

// qualityCheckerNode scores the report draft out of 10 and records the
// review. The revise/approve decision lives in RouteAfterQuality, and the
// revision counter belongs to the writer: the node that re-enters the cycle
// increments it, never the reviewer or the router.
//
// Reads: report_draft. Writes: quality_review, current_agent, errors.
func (p *Pipeline) qualityCheckerNode(ctx stategraph.Context, state stategraph.State) (stategraph.State, error) {
	draft := state.String(FieldReportDraft)
	if draft == "" {
		return stategraph.State{
			FieldQualityReview: map[string]any{
				"passed":                false,
				"overall_score":         0,
				"summary":               "No report to review",
				"missing_sections":      sectionNames(),
				"revision_instructions": "Generate a report first",
			},
			FieldCurrentAgent:      "quality_checker_failed",
			stategraph.ErrorsField: []any{"quality_checker: no report draft available"},
		}, nil
	}

	score, missing := scoreDraft(draft)
	passed := score >= p.opts.PassScore

	review := map[string]any{
		"passed":           passed,
		"overall_score":    score,
		"missing_sections": missing,
		"summary":          fmt.Sprintf("Draft scored %d/10 against the required structure and data support checks.", score),
	}
	if !passed {
		review["revision_instructions"] = revisionInstructions(missing, score)
	}

	ctx.Logger().Info("quality review",
		"score", score,
		"passed", passed,
		"revision_count", state.Int(FieldRevisionCount))

	return stategraph.State{
		FieldQualityReview: review,
		FieldCurrentAgent:  "quality_checker_complete",
	}, nil
}

// RouteAfterQuality decides whether the draft proceeds to the approval gate
// or returns to the writer. Once revision_count reaches the configured
// maximum the route is forced forward regardless of the review, which bounds
// the revision cycle: with MaxRevisions revisions the writer executes at
// most MaxRevisions+1 times.
func (p *Pipeline) RouteAfterQuality(_ stategraph.Context, state stategraph.State) string {
	review := state.Map(FieldQualityReview)
	if passed, _ := review["passed"].(bool); passed {
		return LabelApprove
	}
	if state.Int(FieldRevisionCount) >= p.opts.MaxRevisions {
		return LabelApprove
	}
	return LabelRevise
}

// scoreDraft grades the draft out of 10: one point per required section,
// one for citing dollar figures, one for citing percentages.
func scoreDraft(draft string) (score int, missing []any) {
	for _, section := range requiredSections {
		if strings.Contains(draft, "## "+section) {
			score++
		} else {
			missing = append(missing, section)
		}
	}
	if strings.Contains(draft, "$") {
		score++
	}
	if strings.Contains(draft, "%") {
		score++
	}
	return score, missing
}

func revisionInstructions(missing []any, score int) string {
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = asString(m)
		}
		return "Add the missing sections: " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("Strengthen data support; the draft scored %d/10", score)
}

func sectionNames() []any {
	names := make([]any, len(requiredSections))
	for i, s := range requiredSections {
		names[i] = s
	}
	return names
}
