package evaluation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/researchflow/evaluation"
	"github.com/BaSui01/researchflow/research"
	mocks "github.com/BaSui01/researchflow/testutil/evalmocks"
)

func sampleReport() *research.FinalReport {
	return &research.FinalReport{
		RunID:            "run-1",
		ResearchQuestion: "What are the benefits of renewable energy?",
		Subtopics:        []string{"Costs", "Grid", "Policy"},
		IndividualResearch: []*research.AgentRecord{
			{AgentID: 1, Topic: "Costs", Findings: "Costs have fallen.", Sources: []string{"a.com"}},
			{AgentID: 2, Topic: "Grid", Findings: "Grid integration is maturing.", Sources: []string{"b.org"}},
		},
		FinalSynthesis:  "Renewable energy benefits include falling costs.",
		TotalAgentsUsed: 2,
	}
}

func TestQualityEvaluator_Success(t *testing.T) {
	svc := mocks.NewMockEvalService()
	eval := evaluation.NewQualityEvaluator(svc, evaluation.DefaultConfig(), zap.NewNop())

	summary := eval.Evaluate(context.Background(), sampleReport())

	require.NotNil(t, summary)
	assert.True(t, summary.Success)
	assert.Empty(t, summary.Error)
	assert.Equal(t, 1.0, summary.Scores[evaluation.MetricFaithfulness])
	assert.Equal(t, 1.0, summary.Scores[evaluation.MetricAnswerRelevancy])
	assert.Len(t, summary.Details, 2)
	assert.Equal(t, 1, svc.Requests())
}

func TestQualityEvaluator_ServiceError(t *testing.T) {
	svc := mocks.NewMockEvalService().WithError(errors.New("evaluation backend unavailable"))
	eval := evaluation.NewQualityEvaluator(svc, evaluation.DefaultConfig(), zap.NewNop())

	summary := eval.Evaluate(context.Background(), sampleReport())

	require.NotNil(t, summary)
	assert.False(t, summary.Success)
	assert.Equal(t, "evaluation backend unavailable", summary.Error)
	assert.Empty(t, summary.Scores)
}

func TestQualityEvaluator_FailingMetric(t *testing.T) {
	svc := mocks.NewMockEvalService().WithResults([]evaluation.Result{{
		Success: false,
		Metrics: []evaluation.MetricResult{
			{Name: evaluation.MetricFaithfulness, Score: 0.3, Threshold: 0.7, Success: false},
			{Name: evaluation.MetricAnswerRelevancy, Score: 0.9, Threshold: 0.6, Success: true},
		},
	}})
	eval := evaluation.NewQualityEvaluator(svc, evaluation.DefaultConfig(), zap.NewNop())

	summary := eval.Evaluate(context.Background(), sampleReport())

	assert.False(t, summary.Success)
	assert.Equal(t, 0.3, summary.Scores[evaluation.MetricFaithfulness])
	assert.Equal(t, 0.9, summary.Scores[evaluation.MetricAnswerRelevancy])
}

func TestQualityEvaluator_NilReport(t *testing.T) {
	eval := evaluation.NewQualityEvaluator(mocks.NewMockEvalService(), evaluation.DefaultConfig(), zap.NewNop())

	summary := eval.Evaluate(context.Background(), nil)

	require.NotNil(t, summary)
	assert.False(t, summary.Success)
	assert.Equal(t, "nil report", summary.Error)
}

// 零记录的最小报告依然可评估，不得 panic。
func TestQualityEvaluator_DegenerateReport(t *testing.T) {
	report := &research.FinalReport{
		ResearchQuestion:   "q",
		Subtopics:          []string{"Error occurred"},
		IndividualResearch: []*research.AgentRecord{},
		FinalSynthesis:     "Research could not be completed due to technical issues.",
		TotalAgentsUsed:    0,
	}
	eval := evaluation.NewQualityEvaluator(mocks.NewMockEvalService(), evaluation.DefaultConfig(), zap.NewNop())

	var summary *evaluation.Summary
	require.NotPanics(t, func() {
		summary = eval.Evaluate(context.Background(), report)
	})
	require.NotNil(t, summary)
}

// 降级记录的 findings 原样进入检索上下文，不做过滤。
func TestQualityEvaluator_DegradedFindingsEnterContext(t *testing.T) {
	report := sampleReport()
	report.IndividualResearch = append(report.IndividualResearch, &research.AgentRecord{
		AgentID:  3,
		Topic:    "Policy",
		Findings: "Research failed: provider timeout",
		Sources:  []string{},
	})

	captured := &capturingService{}
	eval := evaluation.NewQualityEvaluator(captured, evaluation.DefaultConfig(), zap.NewNop())
	eval.Evaluate(context.Background(), report)

	require.Len(t, captured.examples, 1)
	assert.Contains(t, captured.examples[0].RetrievalContext, "Research failed: provider timeout")
	assert.Len(t, captured.examples[0].RetrievalContext, 3)
}

type capturingService struct {
	examples []evaluation.Example
}

func (c *capturingService) Evaluate(_ context.Context, examples []evaluation.Example, metrics []evaluation.MetricSpec) ([]evaluation.Result, error) {
	c.examples = examples
	return []evaluation.Result{{Success: true}}, nil
}
