package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/researchflow/search"
)

// MockSearcher 是 search.Provider 的模拟实现。
type MockSearcher struct {
	mu sync.RWMutex

	results *search.Results
	err     error
	panicV  any

	queries []string
}

// NewMockSearcher 创建默认返回三条结果的模拟搜索。
func NewMockSearcher() *MockSearcher {
	return &MockSearcher{}
}

// WithResults 设置固定结果。
func (m *MockSearcher) WithResults(r *search.Results) *MockSearcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = r
	return m
}

// WithError 设置固定错误。
func (m *MockSearcher) WithError(err error) *MockSearcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithPanic 使 Search 触发 panic（致命错误路径测试）。
func (m *MockSearcher) WithPanic(v any) *MockSearcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicV = v
	return m
}

func (m *MockSearcher) Name() string { return "mock" }

func (m *MockSearcher) Search(_ context.Context, query string) (*search.Results, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = append(m.queries, query)

	if m.panicV != nil {
		panic(m.panicV)
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.results != nil {
		out := *m.results
		out.Query = query
		return &out, nil
	}

	return &search.Results{
		Query: query,
		Results: []string{
			"mock result 1 for " + query,
			"mock result 2 for " + query,
			"mock result 3 for " + query,
		},
		Sources: []string{"mock1.com", "mock2.org", "mock3.edu"},
	}, nil
}

// Queries 返回收到的查询快照。
func (m *MockSearcher) Queries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}
