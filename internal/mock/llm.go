// Package mock 提供测试用的手写假实现：记录调用，并可注入返回值或错误。
package mock

import (
	"context"
	"sync"
)

// MockLLM 实现 llm.Client。
type MockLLM struct {
	mu       sync.Mutex
	Response string
	Err      error
	// Panic 非空时 Complete 直接 panic。
	Panic   any
	Prompts []string
}

func (m *MockLLM) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	resp, err, p := m.Response, m.Err, m.Panic
	m.mu.Unlock()

	if p != nil {
		panic(p)
	}
	return resp, err
}

// Calls 返回 Complete 被调用的次数。
func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
