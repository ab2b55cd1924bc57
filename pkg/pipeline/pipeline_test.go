package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finagent-ai/finagent/pkg/stategraph"
	"github.com/finagent-ai/finagent/pkg/stategraph/checkpoint"
	"github.com/finagent-ai/finagent/pkg/stategraph/config"
)

// newPipelineEngine compiles the research graph over the default universe and
// wraps it in an engine with an in-memory store.
func newPipelineEngine(t *testing.T, interactive bool, opts ...Option) *stategraph.Engine {
	t.Helper()
	p := New(defaultProvider(), opts...)
	compiled, err := p.Graph(interactive)
	require.NoError(t, err)
	return stategraph.NewEngine(compiled, checkpoint.NewMemoryStore())
}

func TestPipeline_ComplexQueryFullFlow(t *testing.T) {
	engine := newPipelineEngine(t, false)

	run, err := engine.Start(context.Background(),
		InitialState("Analyze Goldman Sachs' financial health"))
	require.NoError(t, err)

	assert.Equal(t, stategraph.StatusCompleted, run.Status)
	assert.Equal(t, []string{
		NodePlanner, NodeResearcher, NodeAnalyst, NodeWriter,
		NodeQualityChecker, NodeHumanApproval, NodeRiskAssessor,
		NodeFinalizeReport,
	}, run.History)

	report := run.State.String(FieldFinalReport)
	require.NotEmpty(t, report)
	assert.Contains(t, report, "## Executive Summary")
	assert.Contains(t, report, "## SWOT Analysis")
	assert.Contains(t, report, "## Detailed Risk Assessment")
	assert.Contains(t, report, "Goldman Sachs")

	assert.Equal(t, true, run.State.Bool(FieldHumanApproved))
	assert.Equal(t, "finalize_complete", run.State.String(FieldCurrentAgent))
	assert.Empty(t, run.Errors())
}

func TestPipeline_SimpleQueryShortCircuits(t *testing.T) {
	engine := newPipelineEngine(t, false)

	run, err := engine.Start(context.Background(),
		InitialState("What is Apple's stock price?"))
	require.NoError(t, err)

	assert.Equal(t, stategraph.StatusCompleted, run.Status)
	assert.Equal(t, []string{NodePlanner, NodeResearcher, NodeSimpleResponse}, run.History)

	report := run.State.String(FieldFinalReport)
	assert.Contains(t, report, "Quick Lookup")
	assert.Contains(t, report, "| Current Price |")
	assert.NotContains(t, report, "## SWOT Analysis")
}

func TestPipeline_UnknownCompanyFailsGracefully(t *testing.T) {
	engine := newPipelineEngine(t, false)

	run, err := engine.Start(context.Background(),
		InitialState("Analyze Acme Corp's financial health"))
	require.NoError(t, err)

	// Planner and researcher record error values, and the run still reaches a
	// terminal state through the graph rather than aborting.
	assert.Equal(t, stategraph.StatusCompleted, run.Status)
	assert.NotEmpty(t, run.Errors())
}

func TestPipeline_InteractiveSuspendsAtApproval(t *testing.T) {
	engine := newPipelineEngine(t, true)

	run, err := engine.Start(context.Background(),
		InitialState("Analyze Goldman Sachs' financial health"))
	require.NoError(t, err)

	assert.Equal(t, stategraph.StatusSuspended, run.Status)
	assert.Equal(t, NodeHumanApproval, run.Node)
	assert.Equal(t, []string{
		NodePlanner, NodeResearcher, NodeAnalyst, NodeWriter, NodeQualityChecker,
	}, run.History)

	// The draft is ready for review but the final report is not published.
	assert.NotEmpty(t, run.State.String(FieldReportDraft))
	assert.Empty(t, run.State.String(FieldFinalReport))
}

func TestPipeline_ResumeWithApproval(t *testing.T) {
	engine := newPipelineEngine(t, true)

	run, err := engine.Start(context.Background(),
		InitialState("Analyze Goldman Sachs' financial health"))
	require.NoError(t, err)
	require.Equal(t, stategraph.StatusSuspended, run.Status)

	resumed, err := engine.Resume(context.Background(), run.ID,
		stategraph.State{FieldHumanApproved: true})
	require.NoError(t, err)

	assert.Equal(t, stategraph.StatusCompleted, resumed.Status)
	assert.Equal(t, true, resumed.State.Bool(FieldHumanApproved))
	assert.Contains(t, resumed.History, NodeHumanApproval)
	assert.Contains(t, resumed.History, NodeRiskAssessor)
	assert.Contains(t, resumed.History, NodeFinalizeReport)
	assert.Contains(t, resumed.State.String(FieldFinalReport), "## Detailed Risk Assessment")
}

func TestPipeline_RejectionCancelsRun(t *testing.T) {
	engine := newPipelineEngine(t, true)

	run, err := engine.Start(context.Background(),
		InitialState("Analyze Goldman Sachs' financial health"))
	require.NoError(t, err)
	require.Equal(t, stategraph.StatusSuspended, run.Status)

	require.NoError(t, engine.Cancel(context.Background(), run.ID))

	status, err := engine.Status(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, stategraph.StatusCancelled, status.Status)
	assert.Empty(t, status.State.String(FieldFinalReport))

	_, err = engine.Resume(context.Background(), run.ID, nil)
	assert.Error(t, err)
}

func TestPipeline_RevisionCycleIsBounded(t *testing.T) {
	// A pass threshold above the maximum score fails every draft, so the
	// cycle runs until the revision budget forces approval.
	engine := newPipelineEngine(t, false, WithPassScore(11), WithMaxRevisions(2))

	run, err := engine.Start(context.Background(),
		InitialState("Analyze Goldman Sachs' financial health"))
	require.NoError(t, err)

	assert.Equal(t, stategraph.StatusCompleted, run.Status)

	writerRuns := 0
	for _, node := range run.History {
		if node == NodeWriter {
			writerRuns++
		}
	}
	assert.Equal(t, 3, writerRuns, "initial draft plus two revisions")

	assert.Equal(t, 2, run.State.Int(FieldRevisionCount))

	review := run.State.Map(FieldQualityReview)
	require.NotNil(t, review)
	assert.Equal(t, false, review["passed"])

	// The forced-forward draft still ships with the risk assessment.
	assert.Contains(t, run.State.String(FieldFinalReport), "## Detailed Risk Assessment")
	assert.Contains(t, run.History, NodeRiskAssessor)
}

func TestPipeline_RevisionNotesAppearInDraft(t *testing.T) {
	engine := newPipelineEngine(t, false, WithPassScore(11))

	run, err := engine.Start(context.Background(),
		InitialState("Analyze Goldman Sachs' financial health"))
	require.NoError(t, err)

	assert.Contains(t, run.State.String(FieldReportDraft), "Revision Notes")
}

func TestPipeline_BearishCompanyGetsBearishOutlook(t *testing.T) {
	engine := newPipelineEngine(t, false)

	run, err := engine.Start(context.Background(),
		InitialState("Analyze Tesla's financial health"))
	require.NoError(t, err)
	require.Equal(t, stategraph.StatusCompleted, run.Status)

	analysis := run.State.Map(FieldAnalysis)
	require.NotNil(t, analysis)
	assert.Equal(t, "bearish", analysis["outlook"])
}

func TestScoreDraft(t *testing.T) {
	var b strings.Builder
	for _, section := range requiredSections {
		b.WriteString("## " + section + "\n\ncontent\n\n")
	}
	full := b.String() + "Revenue of $100 grew 5%.\n"

	tests := []struct {
		name  string
		draft string
		want  int
	}{
		{"empty", "", 0},
		{"sections only", b.String(), 8},
		{"sections with figures", full, 10},
		{"half the sections", "## Executive Summary\n\n## Conclusion\n\n$1 and 2%", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := scoreDraft(tt.draft)
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestRouteAfterQuality(t *testing.T) {
	p := New(defaultProvider(), WithMaxRevisions(2))

	tests := []struct {
		name  string
		state stategraph.State
		want  string
	}{
		{
			"passed review approves",
			stategraph.State{FieldQualityReview: map[string]any{"passed": true}},
			LabelApprove,
		},
		{
			"failed review with budget revises",
			stategraph.State{
				FieldQualityReview: map[string]any{"passed": false},
				FieldRevisionCount: 0,
			},
			LabelRevise,
		},
		{
			"failed review at budget is forced forward",
			stategraph.State{
				FieldQualityReview: map[string]any{"passed": false},
				FieldRevisionCount: 2,
			},
			LabelApprove,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.RouteAfterQuality(nodeCtx(), tt.state))
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.New(map[string]any{
		"pipeline": map[string]any{
			"max_revisions": 3,
			"pass_score":    9,
		},
	})

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, 3, opts.MaxRevisions)
	assert.Equal(t, 9, opts.PassScore)
}
