package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Message 消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client 聊天补全客户端的统一接口
// DeepSeek 与 Ollama 共用，规划与生成服务不关心底层提供商
type Client interface {
	ChatWithOptions(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error)
	IsConfigured() bool
}

// ChatWithRetry 带重试的聊天请求（指数退避）
// 规划与生成路径的所有 AI 调用统一走这里
func ChatWithRetry(ctx context.Context, c Client, messages []Message, temperature float64, maxTokens int, maxRetries int) (string, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		resp, err := c.ChatWithOptions(ctx, messages, temperature, maxTokens)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// 检查是否是可重试错误（网络错误、5xx 错误）
		if !isRetryableError(err) {
			return "", err
		}
		if i == maxRetries-1 {
			break
		}

		// 指数退避：1s, 2s, 4s...
		backoff := time.Duration(1<<uint(i)) * time.Second
		slog.Warn("API 调用失败，准备重试", "attempt", i+1, "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", fmt.Errorf("达到最大重试次数 (%d): %w", maxRetries, lastErr)
}

// isRetryableError 判断是否是可重试错误
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// 网络错误或 5xx 错误可重试
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}
