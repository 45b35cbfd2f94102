package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/researchflow/store"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, "static", cfg.Search.Provider)
	assert.Equal(t, store.StoreTypeMemory, cfg.Store.Type)
	assert.Equal(t, "local", cfg.Evaluation.Mode)
	assert.Equal(t, 0.7, cfg.Evaluation.FaithfulnessThreshold)
	assert.Equal(t, 0.6, cfg.Evaluation.RelevancyThreshold)
	assert.Equal(t, 3, cfg.Research.MaxSubtopics)
	assert.False(t, cfg.Telemetry.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
llm:
  model: gpt-4o
store:
  type: sqlite
  sqlite:
    path: /tmp/findings.db
research:
  max_subtopics: 2
evaluation:
  faithfulness_threshold: 0.8
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	// 未覆盖的 timeout 保留默认值
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, store.StoreTypeSQLite, cfg.Store.Type)
	assert.Equal(t, "/tmp/findings.db", cfg.Store.SQLite.Path)
	assert.Equal(t, 2, cfg.Research.MaxSubtopics)
	assert.Equal(t, 0.8, cfg.Evaluation.FaithfulnessThreshold)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 未覆盖的字段保留默认值
	assert.Equal(t, "static", cfg.Search.Provider)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: gpt-4\n"), 0o644))

	t.Setenv("RESEARCHFLOW_LLM_MODEL", "gpt-4o-mini")
	t.Setenv("RESEARCHFLOW_LLM_API_KEY", "env-key")
	t.Setenv("RESEARCHFLOW_STORE_TYPE", "sqlite")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, store.StoreTypeSQLite, cfg.Store.Type)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown search provider", func(c *Config) { c.Search.Provider = "bing" }, "unknown search provider"},
		{"tavily without key", func(c *Config) { c.Search.Provider = "tavily" }, "requires an API key"},
		{"unknown evaluation mode", func(c *Config) { c.Evaluation.Mode = "hybrid" }, "unknown evaluation mode"},
		{"remote without base url", func(c *Config) { c.Evaluation.Mode = "remote" }, "requires a base URL"},
		{"threshold too high", func(c *Config) { c.Evaluation.FaithfulnessThreshold = 1.5 }, "must be in [0,1]"},
		{"negative threshold", func(c *Config) { c.Evaluation.RelevancyThreshold = -0.1 }, "must be in [0,1]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
