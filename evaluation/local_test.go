package evaluation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalService_FullyGroundedOutput(t *testing.T) {
	svc := NewLocalService(zap.NewNop())

	results, err := svc.Evaluate(context.Background(), []Example{{
		Input:        "What drives renewable energy adoption worldwide?",
		ActualOutput: "Renewable energy adoption worldwide drives policy investment.",
		RetrievalContext: []string{
			"Renewable energy adoption is accelerating worldwide.",
			"Policy incentives and investment drive deployment.",
		},
	}}, []MetricSpec{
		{Name: MetricFaithfulness, Threshold: 0.7},
		{Name: MetricAnswerRelevancy, Threshold: 0.6},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Metrics, 2)
	assert.True(t, results[0].Success)
	for _, mr := range results[0].Metrics {
		assert.GreaterOrEqual(t, mr.Score, 0.0)
		assert.LessOrEqual(t, mr.Score, 1.0)
		assert.True(t, mr.Success, "metric %s score %f", mr.Name, mr.Score)
		assert.NotEmpty(t, mr.Reason)
	}
}

func TestLocalService_UnsupportedOutputFailsFaithfulness(t *testing.T) {
	svc := NewLocalService(zap.NewNop())

	results, err := svc.Evaluate(context.Background(), []Example{{
		Input:            "What about solar?",
		ActualOutput:     "Completely unrelated statement regarding submarine volcanoes erupting.",
		RetrievalContext: []string{"Solar panel costs fell sharply."},
	}}, []MetricSpec{{Name: MetricFaithfulness, Threshold: 0.7}})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Less(t, results[0].Metrics[0].Score, 0.7)
}

func TestLocalService_EmptyContextScoresZeroFaithfulness(t *testing.T) {
	svc := NewLocalService(zap.NewNop())

	results, err := svc.Evaluate(context.Background(), []Example{{
		Input:            "question",
		ActualOutput:     "some output text",
		RetrievalContext: nil,
	}}, []MetricSpec{{Name: MetricFaithfulness, Threshold: 0.7}})

	require.NoError(t, err)
	assert.Equal(t, 0.0, results[0].Metrics[0].Score)
	assert.False(t, results[0].Success)
}

func TestLocalService_NoExamples(t *testing.T) {
	svc := NewLocalService(zap.NewNop())
	_, err := svc.Evaluate(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestLocalService_UnknownMetric(t *testing.T) {
	svc := NewLocalService(zap.NewNop())
	_, err := svc.Evaluate(context.Background(),
		[]Example{{Input: "q", ActualOutput: "a"}},
		[]MetricSpec{{Name: "hallucination", Threshold: 0.5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metric")
}

func TestSignificantTerms(t *testing.T) {
	terms := significantTerms("The quick, brown fox: jumps!")
	assert.Contains(t, terms, "quick")
	assert.Contains(t, terms, "brown")
	assert.Contains(t, terms, "jumps")
	// 长度 <= 3 的词被丢弃
	assert.NotContains(t, terms, "the")
	assert.NotContains(t, terms, "fox")
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(-0.5))
	assert.Equal(t, 1.0, clampScore(1.5))
	assert.Equal(t, 0.5, clampScore(0.5))
}
