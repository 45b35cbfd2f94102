package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RemoteConfig 配置远程评估服务客户端。
type RemoteConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// RemoteService 通过 HTTP 调用外部评估服务（judgment 风格 API）。
type RemoteService struct {
	client *resty.Client
	logger *zap.Logger
}

type remoteRequest struct {
	Examples []Example    `json:"examples"`
	Metrics  []MetricSpec `json:"metrics"`
}

type remoteResponse struct {
	Results []Result `json:"results"`
}

// NewRemoteService creates an HTTP-backed evaluation service client.
func NewRemoteService(cfg RemoteConfig, logger *zap.Logger) *RemoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &RemoteService{
		client: client,
		logger: logger.With(zap.String("component", "remote_eval_service")),
	}
}

// Evaluate 提交评估请求并返回逐样例结果。
func (s *RemoteService) Evaluate(ctx context.Context, examples []Example, metrics []MetricSpec) ([]Result, error) {
	var out remoteResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(remoteRequest{Examples: examples, Metrics: metrics}).
		SetResult(&out).
		Post("/v1/evaluate")
	if err != nil {
		return nil, fmt.Errorf("remote evaluation: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("remote evaluation: status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Results) == 0 {
		return nil, fmt.Errorf("remote evaluation: empty results")
	}

	s.logger.Debug("remote evaluation completed",
		zap.Int("examples", len(examples)),
		zap.Int("results", len(out.Results)),
	)

	return out.Results, nil
}
