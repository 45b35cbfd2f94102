package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnvPrefix 是环境变量覆盖使用的前缀。
const EnvPrefix = "RESEARCHFLOW"

// Load 读取配置：默认值 → YAML 文件（path 为空或不存在时跳过）→ 环境变量。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides 应用环境变量覆盖。
// 凭证类字段优先支持环境变量，避免写入配置文件。
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setFloat(&cfg.LLM.RateLimitRPS, "LLM_RATE_LIMIT_RPS")

	setString(&cfg.Search.Provider, "SEARCH_PROVIDER")
	setString(&cfg.Search.Tavily.APIKey, "TAVILY_API_KEY")
	setString(&cfg.Search.Tavily.BaseURL, "TAVILY_BASE_URL")

	setString((*string)(&cfg.Store.Type), "STORE_TYPE")
	setString(&cfg.Store.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Store.Redis.Port, "REDIS_PORT")
	setString(&cfg.Store.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Store.SQLite.Path, "SQLITE_PATH")

	setString(&cfg.Evaluation.Mode, "EVALUATION_MODE")
	setString(&cfg.Evaluation.BaseURL, "EVALUATION_BASE_URL")
	setString(&cfg.Evaluation.APIKey, "EVALUATION_API_KEY")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	setBool(&cfg.Telemetry.Enabled, "TELEMETRY_ENABLED")
	setString(&cfg.Telemetry.OTLPEndpoint, "TELEMETRY_OTLP_ENDPOINT")
}

// Validate 检查配置的一致性。
func (c *Config) Validate() error {
	switch c.Search.Provider {
	case "static", "tavily":
	default:
		return fmt.Errorf("unknown search provider: %s", c.Search.Provider)
	}
	if c.Search.Provider == "tavily" && c.Search.Tavily.APIKey == "" {
		return fmt.Errorf("search provider tavily requires an API key")
	}

	switch c.Evaluation.Mode {
	case "local", "remote":
	default:
		return fmt.Errorf("unknown evaluation mode: %s", c.Evaluation.Mode)
	}
	if c.Evaluation.Mode == "remote" && c.Evaluation.BaseURL == "" {
		return fmt.Errorf("evaluation mode remote requires a base URL")
	}

	if c.Evaluation.FaithfulnessThreshold < 0 || c.Evaluation.FaithfulnessThreshold > 1 {
		return fmt.Errorf("faithfulness threshold must be in [0,1]")
	}
	if c.Evaluation.RelevancyThreshold < 0 || c.Evaluation.RelevancyThreshold > 1 {
		return fmt.Errorf("relevancy threshold must be in [0,1]")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
