package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider 是测试用最小 Provider 实现。
type stubProvider struct {
	fn func(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return s.fn(ctx, req)
}

func (s *stubProvider) HealthCheck(context.Context) (*HealthStatus, error) {
	return &HealthStatus{Healthy: true}, nil
}

func okStub() *stubProvider {
	return &stubProvider{fn: func(_ context.Context, req *ChatRequest) (*ChatResponse, error) {
		return &ChatResponse{
			Model:   req.Model,
			Choices: []ChatChoice{{Message: Message{Role: RoleAssistant, Content: "ok"}}},
		}, nil
	}}
}

func TestRateLimitedProvider_PassThrough(t *testing.T) {
	p := NewRateLimitedProvider(okStub(), 100, 10, nil)

	resp, err := p.Completion(context.Background(), &ChatRequest{Model: "m"})

	require.NoError(t, err)
	assert.Equal(t, "ok", ContentOrEmpty(resp))
}

func TestRateLimitedProvider_DisabledWhenRPSZero(t *testing.T) {
	p := NewRateLimitedProvider(okStub(), 0, 0, nil)

	for i := 0; i < 50; i++ {
		_, err := p.Completion(context.Background(), &ChatRequest{})
		require.NoError(t, err)
	}
}

func TestRateLimitedProvider_CanceledWaitMapsToRateLimited(t *testing.T) {
	// 低速率、耗尽突发额度后，取消的 ctx 使 Wait 立刻失败。
	p := NewRateLimitedProvider(okStub(), 0.001, 1, nil)
	_, err := p.Completion(context.Background(), &ChatRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Completion(ctx, &ChatRequest{})
	require.Error(t, err)

	var llmErr *Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrRateLimited, llmErr.Code)
	assert.True(t, llmErr.Retryable)
	assert.Equal(t, "stub", llmErr.Provider)
}

func TestTimeoutProvider_MapsDeadlineExceeded(t *testing.T) {
	inner := &stubProvider{fn: func(ctx context.Context, _ *ChatRequest) (*ChatResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	p := NewTimeoutProvider(inner, 10*time.Millisecond)

	_, err := p.Completion(context.Background(), &ChatRequest{})
	require.Error(t, err)

	var llmErr *Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrUpstreamTimeout, llmErr.Code)
	assert.True(t, llmErr.Retryable)
}

func TestTimeoutProvider_PassesThroughOtherErrors(t *testing.T) {
	upstream := errors.New("upstream exploded")
	inner := &stubProvider{fn: func(context.Context, *ChatRequest) (*ChatResponse, error) {
		return nil, upstream
	}}
	p := NewTimeoutProvider(inner, time.Second)

	_, err := p.Completion(context.Background(), &ChatRequest{})
	assert.ErrorIs(t, err, upstream)
}

func TestTimeoutProvider_ZeroTimeoutDisabled(t *testing.T) {
	p := NewTimeoutProvider(okStub(), 0)

	resp, err := p.Completion(context.Background(), &ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", ContentOrEmpty(resp))
}
