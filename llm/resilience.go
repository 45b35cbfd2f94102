package llm

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitedProvider 以本地令牌桶约束对上游的请求速率。
// Wait 在 ctx 取消或超时时返回错误，映射为 LLM_RATE_LIMITED。
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewRateLimitedProvider wraps inner with a token bucket of rps requests
// per second and the given burst. rps <= 0 disables limiting.
func NewRateLimitedProvider(inner Provider, rps float64, burst int, logger *zap.Logger) *RateLimitedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &RateLimitedProvider{
		inner:   inner,
		limiter: limiter,
		logger:  logger.With(zap.String("component", "rate_limited_provider")),
	}
}

func (p *RateLimitedProvider) Name() string { return p.inner.Name() }

func (p *RateLimitedProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			p.logger.Warn("rate limiter wait aborted", zap.Error(err))
			return nil, &Error{
				Code:       ErrRateLimited,
				Message:    "local rate limit wait aborted: " + err.Error(),
				HTTPStatus: http.StatusTooManyRequests,
				Retryable:  true,
				Provider:   p.inner.Name(),
			}
		}
	}
	return p.inner.Completion(ctx, req)
}

func (p *RateLimitedProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	return p.inner.HealthCheck(ctx)
}

// TimeoutProvider 为每次 Completion 附加有界超时。
// 超时与任何其他 Provider 错误同等对待，由调用方降级处理。
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// NewTimeoutProvider wraps inner with a per-call timeout.
// timeout <= 0 leaves the context untouched.
func NewTimeoutProvider(inner Provider, timeout time.Duration) *TimeoutProvider {
	return &TimeoutProvider{inner: inner, timeout: timeout}
}

func (p *TimeoutProvider) Name() string { return p.inner.Name() }

func (p *TimeoutProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	resp, err := p.inner.Completion(ctx, req)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return nil, &Error{
			Code:      ErrUpstreamTimeout,
			Message:   "completion timed out: " + err.Error(),
			Retryable: true,
			Provider:  p.inner.Name(),
		}
	}
	return resp, err
}

func (p *TimeoutProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.inner.HealthCheck(ctx)
}
