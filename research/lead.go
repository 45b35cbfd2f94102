package research

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/BaSui01/researchflow/internal/ctxkeys"
	"github.com/BaSui01/researchflow/internal/metrics"
	"github.com/BaSui01/researchflow/llm"
	"github.com/BaSui01/researchflow/llm/tokenizer"
)

// LeadAgent 编排一次完整的研究运行：
// 分解问题 → 并行派发 Worker → 合流收集 → 综合最终报告。
// Run 永不向调用方返回错误：任何逃逸的异常都被转换为最小报告。
type LeadAgent struct {
	provider llm.Provider
	worker   Researcher
	cfg      Config
	logger   *zap.Logger
	tracer   trace.Tracer
	counter  *tokenizer.Counter
	metrics  *metrics.Collector
}

// NewLeadAgent 创建 Lead。依赖全部显式注入，无包级全局状态。
func NewLeadAgent(provider llm.Provider, worker Researcher, cfg Config, logger *zap.Logger) *LeadAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.normalize()
	return &LeadAgent{
		provider: provider,
		worker:   worker,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "lead_agent")),
		tracer:   otel.Tracer("researchflow/research"),
		counter:  tokenizer.NewCounter(cfg.Model),
	}
}

// WithMetrics 接入指标收集器。
func (l *LeadAgent) WithMetrics(m *metrics.Collector) *LeadAgent {
	l.metrics = m
	return l
}

// Decompose 将研究问题分解为至多 MaxSubtopics 个子题。
// 解析是尽力而为的按行启发式；模型失败或解析为空时
// 回退到 DefaultSubtopics，保证分解永不阻塞流水线。
// 无隐藏可变状态：对确定性 Provider 幂等。
func (l *LeadAgent) Decompose(ctx context.Context, question string) []string {
	ctx, span := l.tracer.Start(ctx, "research.decompose")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, l.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	resp, err := l.provider.Completion(callCtx, &llm.ChatRequest{
		Model: l.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: decomposeSystemPrompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf(decomposeUserPromptFmt, question)},
		},
		MaxTokens: l.cfg.DecomposeMaxTokens,
	})
	tokens := 0
	if resp != nil {
		tokens = resp.Usage.TotalTokens
	}
	l.metrics.ObserveLLMRequest("decompose", time.Since(start), tokens, err)

	if err != nil {
		l.logger.Warn("decomposition call failed, using default subtopics", zap.Error(err))
		span.SetAttributes(attribute.Bool("decompose.fallback", true))
		return defaultSubtopics()
	}

	subtopics := parseSubtopics(llm.ContentOrEmpty(resp), l.cfg.MaxSubtopics)
	if len(subtopics) == 0 {
		l.logger.Warn("decomposition yielded no subtopics, using defaults")
		span.SetAttributes(attribute.Bool("decompose.fallback", true))
		return defaultSubtopics()
	}

	span.SetAttributes(attribute.Int("decompose.subtopics", len(subtopics)))
	return subtopics
}

// Run 执行一次完整研究并返回终态报告。
func (l *LeadAgent) Run(ctx context.Context, question string) (report *FinalReport) {
	runID := uuid.New().String()
	ctx = ctxkeys.WithRunID(ctx, runID)
	start := time.Now()

	ctx, span := l.tracer.Start(ctx, "research.run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	// 顶层恢复：编排器永不向调用方传播异常。
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("lead agent failed", zap.Any("panic", r))
			report = &FinalReport{
				RunID:              runID,
				ResearchQuestion:   question,
				Subtopics:          []string{errorSubtopic},
				IndividualResearch: []*AgentRecord{},
				FinalSynthesis:     fmt.Sprintf(errorSynthesisFmt, fmt.Sprint(r)),
				TotalAgentsUsed:    0,
				StartedAt:          start,
				Duration:           time.Since(start),
			}
		}
	}()

	l.logger.Info("lead agent starting research",
		zap.String("run_id", runID),
		zap.String("question", question),
	)

	subtopics := l.Decompose(ctx, question)
	l.logger.Info("research plan ready", zap.Strings("subtopics", subtopics))

	records := l.dispatch(ctx, subtopics)

	synthesis := l.synthesize(ctx, question, records)

	l.logger.Info("research run completed",
		zap.String("run_id", runID),
		zap.Int("agents_used", len(records)),
		zap.Duration("duration", time.Since(start)),
	)

	return &FinalReport{
		RunID:              runID,
		ResearchQuestion:   question,
		Subtopics:          subtopics,
		IndividualResearch: records,
		FinalSynthesis:     synthesis,
		TotalAgentsUsed:    len(records),
		StartedAt:          start,
		Duration:           time.Since(start),
	}
}

// dispatch 并行派发 Worker 并在综合前合流。
//
// 失败域相互独立：一个 Worker 的故障不会取消兄弟任务。
// agent_id 恒等于子题的 1 基位置，与完成顺序无关；
// 结果按位置槽收集，保证综合输入确定有序。
// Worker 级别的致命异常（逃出其隔离边界的 panic）导致该槽为空，
// 子题被跳过而不重新编号。
func (l *LeadAgent) dispatch(ctx context.Context, subtopics []string) []*AgentRecord {
	slots := make([]*AgentRecord, len(subtopics))
	sem := semaphore.NewWeighted(l.cfg.MaxConcurrentWorkers)

	l.fanOut(ctx, subtopics, slots, sem)

	records := make([]*AgentRecord, 0, len(slots))
	for i, rec := range slots {
		if rec == nil {
			l.logger.Warn("subtopic skipped after fatal worker error",
				zap.Int("agent_id", i+1),
				zap.String("topic", subtopics[i]),
			)
			l.metrics.ObserveWorkerExecution("skipped", 0)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// fanOut 以受限并发执行全部 Worker，返回前完成合流。
func (l *LeadAgent) fanOut(ctx context.Context, subtopics []string, slots []*AgentRecord, sem *semaphore.Weighted) {
	var wg sync.WaitGroup
	for i, topic := range subtopics {
		wg.Add(1)
		go func(idx int, topic string) {
			defer wg.Done()
			// Worker 级致命异常只牺牲本子题。
			defer func() {
				if r := recover(); r != nil {
					l.logger.Error("worker invocation panicked",
						zap.Int("agent_id", idx+1),
						zap.Any("panic", r),
					)
				}
			}()

			if err := sem.Acquire(ctx, 1); err != nil {
				l.logger.Warn("worker admission aborted",
					zap.Int("agent_id", idx+1),
					zap.Error(err),
				)
				return
			}
			defer sem.Release(1)

			slots[idx] = l.worker.Research(ctx, topic, idx+1)
		}(i, topic)
	}
	wg.Wait()
}

// synthesize 将全部 findings 拼接后发起一次综合调用。
// 输入受 token 预算截断；模型失败或空响应回退到模板化综合。
func (l *LeadAgent) synthesize(ctx context.Context, question string, records []*AgentRecord) string {
	if len(records) == 0 {
		return failedSynthesis
	}

	ctx, span := l.tracer.Start(ctx, "research.synthesize",
		trace.WithAttributes(attribute.Int("synthesis.records", len(records))))
	defer span.End()

	findings := make([]string, 0, len(records))
	for _, rec := range records {
		findings = append(findings, rec.Findings)
	}
	allFindings := l.counter.Truncate(strings.Join(findings, "\n"), l.cfg.SynthesisInputBudget)

	callCtx, cancel := context.WithTimeout(ctx, l.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	resp, err := l.provider.Completion(callCtx, &llm.ChatRequest{
		Model: l.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: synthesisSystemPrompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf(synthesisUserPromptFmt, question, allFindings)},
		},
		MaxTokens: l.cfg.SynthesisMaxTokens,
	})
	tokens := 0
	if resp != nil {
		tokens = resp.Usage.TotalTokens
	}
	l.metrics.ObserveLLMRequest("synthesize", time.Since(start), tokens, err)

	if err != nil {
		l.logger.Warn("synthesis call failed, using templated synthesis", zap.Error(err))
		return fmt.Sprintf(synthesisFallbackFmt, question, len(records))
	}

	synthesis := llm.ContentOrEmpty(resp)
	if synthesis == "" {
		return fmt.Sprintf(synthesisFallbackFmt, question, len(records))
	}
	return synthesis
}

// parseSubtopics 按行拆分模型输出：去空行、丢弃标题行（# 前缀）、
// 保留前 max 行。
func parseSubtopics(content string, max int) []string {
	var subtopics []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		subtopics = append(subtopics, line)
		if len(subtopics) == max {
			break
		}
	}
	return subtopics
}

// defaultSubtopics 返回降级三元组的副本，避免调用方改写包级变量。
func defaultSubtopics() []string {
	out := make([]string, len(DefaultSubtopics))
	copy(out, DefaultSubtopics)
	return out
}
