package evaluation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/researchflow/internal/metrics"
	"github.com/BaSui01/researchflow/research"
)

// Summary 是一次质量评估的归一化结果。
// 失败时 Success 为 false 且 Error 携带错误文本，评估器永不抛错。
type Summary struct {
	Success bool               `json:"evaluation_success"`
	Scores  map[string]float64 `json:"scores,omitempty"`
	Details []MetricResult     `json:"details,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Config 配置质量评估器的指标阈值。
type Config struct {
	FaithfulnessThreshold float64 `yaml:"faithfulness_threshold"`
	RelevancyThreshold    float64 `yaml:"relevancy_threshold"`
}

// DefaultConfig 返回默认阈值。
func DefaultConfig() Config {
	return Config{
		FaithfulnessThreshold: DefaultFaithfulnessThreshold,
		RelevancyThreshold:    DefaultRelevancyThreshold,
	}
}

// QualityEvaluator 将最终报告打包为评估样例并提交给评估服务。
type QualityEvaluator struct {
	service Service
	cfg     Config
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *metrics.Collector
}

// NewQualityEvaluator 创建质量评估器。
func NewQualityEvaluator(service Service, cfg Config, logger *zap.Logger) *QualityEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FaithfulnessThreshold <= 0 {
		cfg.FaithfulnessThreshold = DefaultFaithfulnessThreshold
	}
	if cfg.RelevancyThreshold <= 0 {
		cfg.RelevancyThreshold = DefaultRelevancyThreshold
	}
	return &QualityEvaluator{
		service: service,
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "quality_evaluator")),
		tracer:  otel.Tracer("researchflow/evaluation"),
	}
}

// WithMetrics 接入指标收集器。
func (e *QualityEvaluator) WithMetrics(m *metrics.Collector) *QualityEvaluator {
	e.metrics = m
	return e
}

// Evaluate 对最终报告做忠实度与答案相关性评分。
// 检索上下文包含全部 AgentRecord 的 findings，降级记录的占位
// 文本不做过滤。任何失败都归一化为 Success=false 的 Summary。
func (e *QualityEvaluator) Evaluate(ctx context.Context, report *research.FinalReport) (summary *Summary) {
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "evaluation.evaluate")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("evaluation panicked", zap.Any("panic", r))
			summary = &Summary{Success: false, Error: fmt.Sprintf("evaluation panicked: %v", r)}
		}
		span.SetAttributes(attribute.Bool("evaluation.success", summary.Success))
		e.metrics.IncEvaluation(summary.Success)
	}()

	if report == nil {
		return &Summary{Success: false, Error: "nil report"}
	}

	retrievalContext := make([]string, 0, len(report.IndividualResearch))
	for _, rec := range report.IndividualResearch {
		retrievalContext = append(retrievalContext, rec.Findings)
	}

	example := Example{
		Input:            report.ResearchQuestion,
		ActualOutput:     report.FinalSynthesis,
		RetrievalContext: retrievalContext,
	}
	specs := []MetricSpec{
		{Name: MetricFaithfulness, Threshold: e.cfg.FaithfulnessThreshold},
		{Name: MetricAnswerRelevancy, Threshold: e.cfg.RelevancyThreshold},
	}

	results, err := e.service.Evaluate(ctx, []Example{example}, specs)
	if err != nil {
		e.logger.Warn("evaluation service failed", zap.Error(err))
		return &Summary{Success: false, Error: err.Error()}
	}
	if len(results) == 0 {
		return &Summary{Success: false, Error: "evaluation service returned no results"}
	}

	// 批大小为 1：只取首个结果。
	first := results[0]
	scores := make(map[string]float64, len(first.Metrics))
	for _, mr := range first.Metrics {
		scores[mr.Name] = mr.Score
	}

	e.logger.Info("evaluation completed",
		zap.Bool("success", first.Success),
		zap.Any("scores", scores),
		zap.Duration("duration", time.Since(start)),
	)

	return &Summary{
		Success: first.Success,
		Scores:  scores,
		Details: first.Metrics,
	}
}
