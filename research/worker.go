package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/researchflow/internal/ctxkeys"
	"github.com/BaSui01/researchflow/internal/metrics"
	"github.com/BaSui01/researchflow/llm"
	"github.com/BaSui01/researchflow/search"
	"github.com/BaSui01/researchflow/store"
)

// Researcher 是 Lead 看到的 Worker 抽象，便于测试替换。
type Researcher interface {
	// Research 调查一个子题并返回结构化记录，永不返回错误。
	Research(ctx context.Context, topic string, agentID int) *AgentRecord
}

// WorkerAgent 负责单个子题：检索证据、生成分析、落盘记录。
// 任何失败都被隔离为降级记录，调用方无需重试逻辑。
type WorkerAgent struct {
	provider llm.Provider
	searcher search.Provider
	findings store.FindingsStore
	cfg      Config
	logger   *zap.Logger
	tracer   trace.Tracer
	metrics  *metrics.Collector
}

// NewWorkerAgent 创建 Worker。findings 可为 nil（不持久化）。
func NewWorkerAgent(
	provider llm.Provider,
	searcher search.Provider,
	findings store.FindingsStore,
	cfg Config,
	logger *zap.Logger,
) *WorkerAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerAgent{
		provider: provider,
		searcher: searcher,
		findings: findings,
		cfg:      cfg.normalize(),
		logger:   logger.With(zap.String("component", "worker_agent")),
		tracer:   otel.Tracer("researchflow/research"),
	}
}

// WithMetrics 接入指标收集器。
func (w *WorkerAgent) WithMetrics(m *metrics.Collector) *WorkerAgent {
	w.metrics = m
	return w
}

// Research 按照固定步骤调查子题：检索 → 分析 → 落盘。
// 永不返回错误或 panic；失败路径产出降级记录。
func (w *WorkerAgent) Research(ctx context.Context, topic string, agentID int) (record *AgentRecord) {
	start := time.Now()

	ctx, span := w.tracer.Start(ctx, "research.worker",
		trace.WithAttributes(
			attribute.Int("agent.id", agentID),
			attribute.String("agent.topic", topic),
		))
	defer span.End()

	// 兜底：Provider 实现中的 panic 也转为降级记录。
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker panicked",
				zap.Int("agent_id", agentID),
				zap.String("topic", topic),
				zap.Any("panic", r),
			)
			record = w.degradedRecord(topic, agentID, fmt.Errorf("%v", r))
		}
		outcome := "ok"
		if record.Degraded() {
			outcome = "degraded"
		}
		span.SetAttributes(attribute.String("agent.outcome", outcome))
		w.metrics.ObserveWorkerExecution(outcome, time.Since(start))
	}()

	w.logger.Info("worker researching",
		zap.Int("agent_id", agentID),
		zap.String("topic", topic),
	)

	searchResults, err := w.searchTopic(ctx, topic)
	if err != nil {
		w.logger.Warn("worker search failed",
			zap.Int("agent_id", agentID),
			zap.Error(err),
		)
		return w.degradedRecord(topic, agentID, err)
	}

	findings, err := w.analyze(ctx, topic, searchResults)
	if err != nil {
		w.logger.Warn("worker analysis failed",
			zap.Int("agent_id", agentID),
			zap.Error(err),
		)
		return w.degradedRecord(topic, agentID, err)
	}

	record = &AgentRecord{
		AgentID:     agentID,
		Topic:       topic,
		Findings:    findings,
		Sources:     searchResults.Sources,
		SearchQuery: searchResults.Query,
	}

	w.persist(ctx, record)

	return record
}

// searchTopic 以有界超时执行检索。
func (w *WorkerAgent) searchTopic(ctx context.Context, topic string) (*search.Results, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.cfg.CallTimeout)
	defer cancel()
	return w.searcher.Search(callCtx, topic+searchQuerySuffix)
}

// analyze 将检索结果交给模型生成分析，输出受 token 预算约束。
// 空响应按可恢复条件处理，回退到模板化 findings。
func (w *WorkerAgent) analyze(ctx context.Context, topic string, results *search.Results) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	resp, err := w.provider.Completion(callCtx, &llm.ChatRequest{
		Model: w.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: fmt.Sprintf(workerSystemPromptFmt, topic)},
			{Role: llm.RoleUser, Content: fmt.Sprintf(workerUserPromptFmt, strings.Join(results.Results, "\n"))},
		},
		MaxTokens: w.cfg.WorkerMaxTokens,
	})
	tokens := 0
	if resp != nil {
		tokens = resp.Usage.TotalTokens
	}
	w.metrics.ObserveLLMRequest("worker_analysis", time.Since(start), tokens, err)
	if err != nil {
		return "", err
	}

	findings := llm.ContentOrEmpty(resp)
	if findings == "" {
		findings = fmt.Sprintf(workerFallbackFmt, topic)
	}
	return findings, nil
}

// persist 将记录追加到 Findings Store。
// 尽力而为：失败只记录日志与指标，不影响返回的记录。
func (w *WorkerAgent) persist(ctx context.Context, record *AgentRecord) {
	if w.findings == nil {
		return
	}

	err := w.findings.Append(ctx, &store.Finding{
		RunID:       ctxkeys.RunID(ctx),
		AgentID:     record.AgentID,
		Topic:       record.Topic,
		Findings:    record.Findings,
		Sources:     record.Sources,
		SearchQuery: record.SearchQuery,
	})
	w.metrics.IncStoreAppend(err)
	if err != nil {
		w.logger.Warn("findings store append failed",
			zap.Int("agent_id", record.AgentID),
			zap.Error(err),
		)
		return
	}
	w.logger.Debug("stored research findings",
		zap.Int("agent_id", record.AgentID),
		zap.String("topic", record.Topic),
	)
}

// degradedRecord 构造失败隔离后的记录。
func (w *WorkerAgent) degradedRecord(topic string, agentID int, err error) *AgentRecord {
	return &AgentRecord{
		AgentID:     agentID,
		Topic:       topic,
		Findings:    degradedFindingsPrefix + err.Error(),
		Sources:     []string{},
		SearchQuery: topic,
	}
}
