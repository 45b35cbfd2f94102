// Package llm 定义统一的语言模型 Provider 抽象。
//
// 研究流水线中的每一次模型调用（子题分解、子题分析、综合报告）
// 都通过 Provider 接口发起，便于注入、路由与测试。
package llm

import (
	"context"
)

// Provider 定义了统一的 LLM 适配接口。
// 空响应（无 choices 或首选内容为空）不视为传输错误，
// 由调用方通过 ContentOrEmpty 判定并应用模板化降级。
type Provider interface {
	// Completion 发起同步聊天请求，返回完整响应
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// HealthCheck 执行轻量级健康检查，返回延迟与可用性信息。
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// Name 返回 Provider 的唯一标识
	Name() string
}
