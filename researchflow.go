// Package researchflow provides a top-level convenience entry point for
// running the research pipeline with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/researchflow"
//
//	p, err := researchflow.New(config.Default(), logger)
//	report, summary := p.Run(ctx, "What are the risks of quantum computing?")
//
// This wires the configured LLM provider, search backend, findings store
// and evaluation service into a ready-to-run pipeline.
package researchflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/researchflow/config"
	"github.com/BaSui01/researchflow/evaluation"
	"github.com/BaSui01/researchflow/internal/metrics"
	"github.com/BaSui01/researchflow/llm"
	"github.com/BaSui01/researchflow/llm/providers/openai"
	"github.com/BaSui01/researchflow/research"
	"github.com/BaSui01/researchflow/search"
	"github.com/BaSui01/researchflow/store"
)

// Pipeline 将 Lead Agent 与质量评估器组合为一次性研究流水线。
type Pipeline struct {
	Lead      *research.LeadAgent
	Evaluator *evaluation.QualityEvaluator
	Findings  store.FindingsStore

	logger *zap.Logger
}

// New builds a pipeline from configuration. The caller owns Close.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	searcher := buildSearcher(cfg, logger)

	findings, err := store.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("create findings store: %w", err)
	}

	collector := metrics.NewCollector("researchflow", logger)

	worker := research.NewWorkerAgent(provider, searcher, findings, cfg.Research, logger).
		WithMetrics(collector)
	lead := research.NewLeadAgent(provider, worker, cfg.Research, logger).
		WithMetrics(collector)

	evalService := buildEvalService(cfg, logger)
	evaluator := evaluation.NewQualityEvaluator(evalService, evaluation.Config{
		FaithfulnessThreshold: cfg.Evaluation.FaithfulnessThreshold,
		RelevancyThreshold:    cfg.Evaluation.RelevancyThreshold,
	}, logger).WithMetrics(collector)

	return &Pipeline{
		Lead:      lead,
		Evaluator: evaluator,
		Findings:  findings,
		logger:    logger,
	}, nil
}

// Run answers one research question end to end and scores the result.
// Neither return value is ever nil.
func (p *Pipeline) Run(ctx context.Context, question string) (*research.FinalReport, *evaluation.Summary) {
	report := p.Lead.Run(ctx, question)
	summary := p.Evaluator.Evaluate(ctx, report)
	return report, summary
}

// Close releases the findings store.
func (p *Pipeline) Close() error {
	return p.Findings.Close()
}

func buildProvider(cfg *config.Config, logger *zap.Logger) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "openai", "":
		var provider llm.Provider = openai.New(openai.Config{
			APIKey:       cfg.LLM.APIKey,
			BaseURL:      cfg.LLM.BaseURL,
			Organization: cfg.LLM.Organization,
			DefaultModel: cfg.LLM.Model,
			Timeout:      cfg.LLM.Timeout,
		}, logger)
		if cfg.LLM.RateLimitRPS > 0 {
			provider = llm.NewRateLimitedProvider(provider, cfg.LLM.RateLimitRPS, cfg.LLM.RateLimitBurst, logger)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLM.Provider)
	}
}

func buildSearcher(cfg *config.Config, logger *zap.Logger) search.Provider {
	if cfg.Search.Provider == "tavily" {
		return search.NewTavilyProvider(cfg.Search.Tavily, logger)
	}
	return search.NewStaticProvider()
}

func buildEvalService(cfg *config.Config, logger *zap.Logger) evaluation.Service {
	if cfg.Evaluation.Mode == "remote" {
		return evaluation.NewRemoteService(evaluation.RemoteConfig{
			BaseURL: cfg.Evaluation.BaseURL,
			APIKey:  cfg.Evaluation.APIKey,
		}, logger)
	}
	return evaluation.NewLocalService(logger)
}
