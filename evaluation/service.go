// Package evaluation 对最终报告做事后质量评分：
// 将综合文本与其引用的 findings 打包为评估样例，
// 交给评估服务计算忠实度与答案相关性。
package evaluation

import "context"

// 内建指标名。
const (
	MetricFaithfulness    = "faithfulness"
	MetricAnswerRelevancy = "answer_relevancy"
)

// 默认阈值。
const (
	DefaultFaithfulnessThreshold = 0.7
	DefaultRelevancyThreshold    = 0.6
)

// Example is one evaluation sample.
type Example struct {
	Input            string   `json:"input"`
	ActualOutput     string   `json:"actual_output"`
	RetrievalContext []string `json:"retrieval_context"`
}

// MetricSpec names a metric and its pass threshold.
type MetricSpec struct {
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
}

// MetricResult is the per-metric outcome for one example.
type MetricResult struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
	Success   bool    `json:"success"`
	Reason    string  `json:"reason,omitempty"`
}

// Result is the outcome for one example: overall success plus
// per-metric details.
type Result struct {
	Success bool           `json:"success"`
	Metrics []MetricResult `json:"metrics"`
}

// Service 是不透明的评估后端。实现可以是远程评估服务，
// 也可以是本地启发式指标。
type Service interface {
	// Evaluate scores each example against each metric.
	// The returned slice is parallel to examples.
	Evaluate(ctx context.Context, examples []Example, metrics []MetricSpec) ([]Result, error)
}
