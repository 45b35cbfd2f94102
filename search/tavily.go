package search

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// TavilyConfig 配置 Tavily 搜索客户端。
type TavilyConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	MaxResults int           `yaml:"max_results"`
	Timeout    time.Duration `yaml:"timeout"`
}

// TavilyProvider 通过 Tavily HTTP API 执行真实网络搜索。
type TavilyProvider struct {
	client *resty.Client
	cfg    TavilyConfig
	logger *zap.Logger
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type tavilyResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []tavilyResult `json:"results"`
}

// NewTavilyProvider creates a Tavily-backed search provider.
func NewTavilyProvider(cfg TavilyConfig, logger *zap.Logger) *TavilyProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTavilyBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &TavilyProvider{
		client: client,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "tavily_search")),
	}
}

func (t *TavilyProvider) Name() string { return "tavily" }

func (t *TavilyProvider) Search(ctx context.Context, query string) (*Results, error) {
	var out tavilyResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(tavilyRequest{
			APIKey:     t.cfg.APIKey,
			Query:      query,
			MaxResults: t.cfg.MaxResults,
		}).
		SetResult(&out).
		Post("/search")
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tavily search: status %d: %s", resp.StatusCode(), resp.String())
	}

	results := &Results{Query: query}
	for _, r := range out.Results {
		results.Results = append(results.Results, r.Content)
		results.Sources = append(results.Sources, r.URL)
	}

	t.logger.Debug("tavily search completed",
		zap.String("query", query),
		zap.Int("results", len(results.Results)),
	)

	return results, nil
}
