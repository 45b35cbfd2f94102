package evaluation

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// LocalService 在进程内用启发式指标评分，无需外部评估服务。
// 指标刻意保守：只衡量词面上的支撑与覆盖，不做语义推断。
type LocalService struct {
	logger *zap.Logger
}

// NewLocalService creates the in-process heuristic evaluation service.
func NewLocalService(logger *zap.Logger) *LocalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalService{logger: logger.With(zap.String("component", "local_eval_service"))}
}

// Evaluate scores each example against each metric.
func (s *LocalService) Evaluate(ctx context.Context, examples []Example, metrics []MetricSpec) ([]Result, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("no examples to evaluate")
	}

	results := make([]Result, 0, len(examples))
	for _, ex := range examples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r := Result{Success: true}
		for _, spec := range metrics {
			score, reason, err := s.computeMetric(spec.Name, ex)
			if err != nil {
				return nil, err
			}
			mr := MetricResult{
				Name:      spec.Name,
				Score:     score,
				Threshold: spec.Threshold,
				Success:   score >= spec.Threshold,
				Reason:    reason,
			}
			if !mr.Success {
				r.Success = false
			}
			r.Metrics = append(r.Metrics, mr)
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *LocalService) computeMetric(name string, ex Example) (float64, string, error) {
	switch name {
	case MetricFaithfulness:
		return faithfulnessScore(ex)
	case MetricAnswerRelevancy:
		return relevancyScore(ex)
	default:
		return 0, "", fmt.Errorf("unknown metric: %s", name)
	}
}

// faithfulnessScore 衡量综合文本在多大程度上由检索上下文支撑：
// 输出中的显著词有多大比例出现在上下文语料中。
func faithfulnessScore(ex Example) (float64, string, error) {
	outputTerms := significantTerms(ex.ActualOutput)
	if len(outputTerms) == 0 {
		return 0, "output contains no significant terms", nil
	}

	corpus := strings.ToLower(strings.Join(ex.RetrievalContext, "\n"))
	if corpus == "" {
		return 0, "empty retrieval context", nil
	}

	supported := 0
	for term := range outputTerms {
		if strings.Contains(corpus, term) {
			supported++
		}
	}
	score := clampScore(float64(supported) / float64(len(outputTerms)))
	reason := fmt.Sprintf("%d/%d output terms grounded in retrieval context", supported, len(outputTerms))
	return score, reason, nil
}

// relevancyScore 衡量综合文本与原问题的词面重合度。
func relevancyScore(ex Example) (float64, string, error) {
	questionTerms := significantTerms(ex.Input)
	if len(questionTerms) == 0 {
		return 0, "question contains no significant terms", nil
	}

	output := strings.ToLower(ex.ActualOutput)
	if output == "" {
		return 0, "empty output", nil
	}

	covered := 0
	for term := range questionTerms {
		if strings.Contains(output, term) {
			covered++
		}
	}
	score := clampScore(float64(covered) / float64(len(questionTerms)))
	reason := fmt.Sprintf("%d/%d question terms addressed by output", covered, len(questionTerms))
	return score, reason, nil
}

// significantTerms 提取小写显著词（长度 > 3，去标点）。
func significantTerms(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?\"'()[]{}")
		if len(word) > 3 {
			terms[word] = struct{}{}
		}
	}
	return terms
}

// clampScore 将分数限制在 [0, 1] 范围内。
func clampScore(score float64) float64 {
	return math.Max(0, math.Min(1, score))
}
