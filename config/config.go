// =============================================================================
// 📦 ResearchFlow 配置
// =============================================================================
// 统一配置结构，支持 YAML 文件 + 环境变量覆盖
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"time"

	"github.com/BaSui01/researchflow/research"
	"github.com/BaSui01/researchflow/search"
	"github.com/BaSui01/researchflow/store"
)

// Config 是 ResearchFlow 的完整配置结构
type Config struct {
	// LLM 大语言模型配置
	LLM LLMConfig `yaml:"llm"`

	// Search 搜索后端配置
	Search SearchConfig `yaml:"search"`

	// Store Findings 持久层配置
	Store store.Config `yaml:"store"`

	// Research 流水线配置
	Research research.Config `yaml:"research"`

	// Evaluation 质量评估配置
	Evaluation EvaluationConfig `yaml:"evaluation"`

	// Log 日志配置
	Log LogConfig `yaml:"log"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LLMConfig LLM Provider 配置
type LLMConfig struct {
	// Provider 实现（目前仅 openai 兼容端点）
	Provider string `yaml:"provider"`
	// API 密钥
	APIKey string `yaml:"api_key"`
	// 覆盖默认端点（OpenAI 兼容）
	BaseURL string `yaml:"base_url"`
	// 组织 ID（可选）
	Organization string `yaml:"organization"`
	// 默认模型
	Model string `yaml:"model"`
	// 单次请求超时
	Timeout time.Duration `yaml:"timeout"`
	// 本地限流（每秒请求数，0 为不限流）
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
	// 限流桶容量
	RateLimitBurst int `yaml:"rate_limit_burst"`
}

// SearchConfig 搜索后端配置
type SearchConfig struct {
	// Provider: static（离线确定性结果）或 tavily
	Provider string `yaml:"provider"`
	// Tavily 客户端配置
	Tavily search.TavilyConfig `yaml:"tavily"`
}

// EvaluationConfig 质量评估配置
type EvaluationConfig struct {
	// Mode: local（内建启发式指标）或 remote（HTTP 评估服务）
	Mode string `yaml:"mode"`
	// 远程评估服务端点
	BaseURL string `yaml:"base_url"`
	// 远程评估服务密钥
	APIKey string `yaml:"api_key"`
	// 忠实度阈值
	FaithfulnessThreshold float64 `yaml:"faithfulness_threshold"`
	// 答案相关性阈值
	RelevancyThreshold float64 `yaml:"relevancy_threshold"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug/info/warn/error
	Level string `yaml:"level"`
	// 输出格式: json/console
	Format string `yaml:"format"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用 OTel 导出
	Enabled bool `yaml:"enabled"`
	// OTLP gRPC 端点
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	// 服务名
	ServiceName string `yaml:"service_name"`
}

// Default 返回带默认值的配置。
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-3.5-turbo",
			Timeout:        30 * time.Second,
			RateLimitRPS:   0,
			RateLimitBurst: 1,
		},
		Search: SearchConfig{
			Provider: "static",
			Tavily: search.TavilyConfig{
				MaxResults: 3,
				Timeout:    15 * time.Second,
			},
		},
		Store:    store.DefaultConfig(),
		Research: research.DefaultConfig(),
		Evaluation: EvaluationConfig{
			Mode:                  "local",
			FaithfulnessThreshold: 0.7,
			RelevancyThreshold:    0.6,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			ServiceName:  "researchflow",
		},
	}
}
