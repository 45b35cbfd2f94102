// Package search 定义研究流水线使用的搜索 Provider 抽象。
//
// Results 与 Sources 长度可以不同，但按惯例作为平行列表处理。
package search

import (
	"context"
	"fmt"
)

// Results is the outcome of one search call.
type Results struct {
	Query   string   `json:"query"`
	Results []string `json:"results"`
	Sources []string `json:"sources"`
}

// Provider performs a single search round trip. Implementations may
// return an error; callers apply their own degrade policy.
type Provider interface {
	Search(ctx context.Context, query string) (*Results, error)
	Name() string
}

// StaticProvider 返回确定性的模板结果，用于离线运行与测试。
// 未配置真实搜索后端时作为默认实现。
type StaticProvider struct{}

// NewStaticProvider creates a deterministic offline search provider.
func NewStaticProvider() *StaticProvider { return &StaticProvider{} }

func (s *StaticProvider) Name() string { return "static" }

func (s *StaticProvider) Search(_ context.Context, query string) (*Results, error) {
	return &Results{
		Query: query,
		Results: []string{
			fmt.Sprintf("Research finding about %s from source 1", query),
			fmt.Sprintf("Additional information on %s from source 2", query),
			fmt.Sprintf("Expert analysis of %s from source 3", query),
		},
		Sources: []string{"source1.com", "source2.org", "source3.edu"},
	}, nil
}
