// Package research 实现研究流水线的核心：
// 问题分解 → Worker 扇出 → 容错收集 → 综合 → 最终报告。
//
// LeadAgent 编排全程且永不向调用方抛错；WorkerAgent 将自身失败
// 隔离为降级记录。对外部 Provider 的每一次调用都有有界超时，
// 超时与任何其他 Provider 错误同等降级处理。
package research

import (
	"fmt"
	"strings"
	"time"
)

// AgentRecord 是单个 Worker 调用产生的结构化研究记录。
// 失败时 Findings 携带人类可读的错误说明，Sources 为空。
type AgentRecord struct {
	AgentID     int      `json:"agent_id"`
	Topic       string   `json:"topic"`
	Findings    string   `json:"findings"`
	Sources     []string `json:"sources"`
	SearchQuery string   `json:"search_query"`
}

// Degraded reports whether this record was produced by the worker's
// failure isolation instead of a real analysis.
func (r *AgentRecord) Degraded() bool {
	return strings.HasPrefix(r.Findings, degradedFindingsPrefix)
}

// FinalReport 是一次研究运行的终态产物，构造后不可变。
type FinalReport struct {
	RunID              string         `json:"run_id"`
	ResearchQuestion   string         `json:"research_question"`
	Subtopics          []string       `json:"subtopics"`
	IndividualResearch []*AgentRecord `json:"individual_research"`
	FinalSynthesis     string         `json:"final_synthesis"`
	TotalAgentsUsed    int            `json:"total_agents_used"`
	StartedAt          time.Time      `json:"started_at"`
	Duration           time.Duration  `json:"duration"`
}

// Render 将报告格式化为人类可读文本（用于 CLI 输出）。
func (r *FinalReport) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", r.ResearchQuestion)
	fmt.Fprintf(&b, "Agents Used: %d\n", r.TotalAgentsUsed)
	fmt.Fprintf(&b, "Subtopics: %s\n", strings.Join(r.Subtopics, "; "))
	b.WriteString("\nFinal Synthesis:\n")
	b.WriteString(r.FinalSynthesis)
	b.WriteString("\n")
	return b.String()
}

// Config 配置研究流水线。
type Config struct {
	// 默认模型
	Model string `yaml:"model"`
	// 子题数量上限（按约定为 3）
	MaxSubtopics int `yaml:"max_subtopics"`
	// 分解调用的输出 token 预算
	DecomposeMaxTokens int `yaml:"decompose_max_tokens"`
	// 单个 Worker 分析调用的输出 token 预算
	WorkerMaxTokens int `yaml:"worker_max_tokens"`
	// 综合调用的输出 token 预算
	SynthesisMaxTokens int `yaml:"synthesis_max_tokens"`
	// 综合输入（拼接 findings）的 token 预算，超出部分截断
	SynthesisInputBudget int `yaml:"synthesis_input_budget"`
	// 对外部 Provider 的单次调用超时
	CallTimeout time.Duration `yaml:"call_timeout"`
	// 并发 Worker 上限
	MaxConcurrentWorkers int64 `yaml:"max_concurrent_workers"`
}

// DefaultConfig 返回默认流水线配置。
func DefaultConfig() Config {
	return Config{
		Model:                "gpt-3.5-turbo",
		MaxSubtopics:         3,
		DecomposeMaxTokens:   200,
		WorkerMaxTokens:      300,
		SynthesisMaxTokens:   500,
		SynthesisInputBudget: 3000,
		CallTimeout:          30 * time.Second,
		MaxConcurrentWorkers: 3,
	}
}

// normalize 填補零值，保证配置总是可用。
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.MaxSubtopics <= 0 {
		c.MaxSubtopics = def.MaxSubtopics
	}
	if c.DecomposeMaxTokens <= 0 {
		c.DecomposeMaxTokens = def.DecomposeMaxTokens
	}
	if c.WorkerMaxTokens <= 0 {
		c.WorkerMaxTokens = def.WorkerMaxTokens
	}
	if c.SynthesisMaxTokens <= 0 {
		c.SynthesisMaxTokens = def.SynthesisMaxTokens
	}
	if c.SynthesisInputBudget <= 0 {
		c.SynthesisInputBudget = def.SynthesisInputBudget
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = def.CallTimeout
	}
	if c.MaxConcurrentWorkers <= 0 {
		c.MaxConcurrentWorkers = def.MaxConcurrentWorkers
	}
	return c
}
