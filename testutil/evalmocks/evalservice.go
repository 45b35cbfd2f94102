package evalmocks

import (
	"context"
	"sync"

	"github.com/BaSui01/researchflow/evaluation"
)

// MockEvalService 是 evaluation.Service 的模拟实现。
type MockEvalService struct {
	mu sync.RWMutex

	results []evaluation.Result
	err     error

	requests int
}

// NewMockEvalService 创建默认全部通过的模拟评估服务。
func NewMockEvalService() *MockEvalService {
	return &MockEvalService{}
}

// WithResults 设置固定结果。
func (m *MockEvalService) WithResults(results []evaluation.Result) *MockEvalService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = results
	return m
}

// WithError 设置固定错误。
func (m *MockEvalService) WithError(err error) *MockEvalService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MockEvalService) Evaluate(_ context.Context, examples []evaluation.Example, metrics []evaluation.MetricSpec) ([]evaluation.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests++

	if m.err != nil {
		return nil, m.err
	}
	if m.results != nil {
		return m.results, nil
	}

	// 默认：每个样例对每个指标都以 1.0 通过。
	out := make([]evaluation.Result, 0, len(examples))
	for range examples {
		r := evaluation.Result{Success: true}
		for _, spec := range metrics {
			r.Metrics = append(r.Metrics, evaluation.MetricResult{
				Name:      spec.Name,
				Score:     1.0,
				Threshold: spec.Threshold,
				Success:   true,
			})
		}
		out = append(out, r)
	}
	return out, nil
}

// Requests 返回评估请求次数。
func (m *MockEvalService) Requests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests
}
