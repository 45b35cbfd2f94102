// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器。所有方法对 nil 接收者安全，
// 未接线 metrics 的组件可以直接持有 nil *Collector。
type Collector struct {
	// LLM 指标
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec

	// Worker 指标
	workerExecutionsTotal   *prometheus.CounterVec
	workerExecutionDuration *prometheus.HistogramVec

	// Findings store 指标
	storeAppendsTotal *prometheus.CounterVec

	// 评估指标
	evaluationsTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器并向默认 registry 注册全部指标。
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM completion requests",
		},
		[]string{"operation", "outcome"},
	)

	c.llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM completion request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	c.llmTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens consumed by LLM requests",
		},
		[]string{"operation"},
	)

	c.workerExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_executions_total",
			Help:      "Total number of worker agent executions by outcome",
		},
		[]string{"outcome"},
	)

	c.workerExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "worker_execution_duration_seconds",
			Help:      "Worker agent execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	c.storeAppendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_store_appends_total",
			Help:      "Total number of findings store appends by outcome",
		},
		[]string{"outcome"},
	)

	c.evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total number of quality evaluations by outcome",
		},
		[]string{"outcome"},
	)

	return c
}

// ObserveLLMRequest 记录一次 LLM 请求的结果、耗时与 token 用量。
func (c *Collector) ObserveLLMRequest(operation string, duration time.Duration, tokens int, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.llmRequestsTotal.WithLabelValues(operation, outcome).Inc()
	c.llmRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if tokens > 0 {
		c.llmTokensUsed.WithLabelValues(operation).Add(float64(tokens))
	}
}

// ObserveWorkerExecution 记录一次 Worker 执行。
// outcome: "ok" | "degraded" | "skipped"
func (c *Collector) ObserveWorkerExecution(outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.workerExecutionsTotal.WithLabelValues(outcome).Inc()
	c.workerExecutionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncStoreAppend 记录一次 findings store 追加。
func (c *Collector) IncStoreAppend(err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.storeAppendsTotal.WithLabelValues(outcome).Inc()
}

// IncEvaluation 记录一次质量评估。
func (c *Collector) IncEvaluation(success bool) {
	if c == nil {
		return
	}
	outcome := "ok"
	if !success {
		outcome = "failed"
	}
	c.evaluationsTotal.WithLabelValues(outcome).Inc()
}
