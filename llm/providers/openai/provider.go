// Package openai 基于 go-openai SDK 实现 llm.Provider。
package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/BaSui01/researchflow/llm"
)

// Config holds OpenAI provider configuration.
type Config struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Organization string        `yaml:"organization"`
	DefaultModel string        `yaml:"model"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Provider 实现 llm.Provider，支持任何 OpenAI 兼容端点（BaseURL 可覆盖）。
type Provider struct {
	client *openai.Client
	cfg    Config
	logger *zap.Logger
}

// New creates a new OpenAI-backed provider.
func New(cfg Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = openai.GPT3Dot5Turbo
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Organization != "" {
		clientCfg.OrgID = cfg.Organization
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger.With(zap.String("component", "openai_provider")),
	}
}

func (p *Provider) Name() string { return "openai" }

// Completion 发起同步聊天请求。
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.DefaultModel
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, p.mapError(err)
	}

	out := &llm.ChatResponse{
		ID:        resp.ID,
		Provider:  p.Name(),
		Model:     resp.Model,
		CreatedAt: time.Now(),
		Usage: llm.ChatUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, llm.ChatChoice{
			Index:        c.Index,
			FinishReason: string(c.FinishReason),
			Message: llm.Message{
				Role:    llm.Role(c.Message.Role),
				Content: c.Message.Content,
			},
		})
	}

	p.logger.Debug("completion finished",
		zap.String("model", model),
		zap.Int("total_tokens", out.Usage.TotalTokens),
		zap.Duration("latency", time.Since(start)),
	)

	return out, nil
}

// HealthCheck 用 ListModels 作为轻量探活。
func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	start := time.Now()
	_, err := p.client.ListModels(ctx)
	status := &llm.HealthStatus{
		Healthy: err == nil,
		Latency: time.Since(start),
	}
	if err != nil {
		return status, p.mapError(err)
	}
	return status, nil
}

// mapError 将 SDK 错误映射到统一错误码。
func (p *Provider) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := llm.ErrUpstreamError
		retryable := apiErr.HTTPStatusCode >= http.StatusInternalServerError
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			code = llm.ErrUnauthorized
		case http.StatusTooManyRequests:
			code = llm.ErrRateLimited
			retryable = true
		case http.StatusBadRequest:
			code = llm.ErrInvalidRequest
		}
		return &llm.Error{
			Code:       code,
			Message:    apiErr.Message,
			HTTPStatus: apiErr.HTTPStatusCode,
			Retryable:  retryable,
			Provider:   p.Name(),
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &llm.Error{
			Code:      llm.ErrUpstreamTimeout,
			Message:   err.Error(),
			Retryable: true,
			Provider:  p.Name(),
		}
	}
	return &llm.Error{
		Code:      llm.ErrUpstreamError,
		Message:   err.Error(),
		Retryable: true,
		Provider:  p.Name(),
	}
}
