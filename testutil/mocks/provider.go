// MockProvider 的 LLM 提供商测试模拟实现。
//
// 按 system 指令路由响应，或对所有调用返回固定错误。
package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/BaSui01/verifyflow/llm"
)

// MockProvider 是 LLM Provider 的模拟实现
type MockProvider struct {
	mu sync.Mutex

	response string
	err      error
	routes   []route

	calls []MockProviderCall
}

// route 按 system 指令前缀选择响应
type route struct {
	prefix   string
	response string
}

// MockProviderCall 记录单次调用
type MockProviderCall struct {
	Request *llm.ChatRequest
	Error   error
}

// System 返回本次调用的 system 指令
func (c MockProviderCall) System() string {
	return messageContent(c.Request, llm.RoleSystem)
}

// Prompt 返回本次调用的用户提示
func (c MockProviderCall) Prompt() string {
	return messageContent(c.Request, llm.RoleUser)
}

func messageContent(req *llm.ChatRequest, role llm.Role) string {
	if req == nil {
		return ""
	}
	for _, m := range req.Messages {
		if m.Role == role {
			return m.Content
		}
	}
	return ""
}

// NewMockProvider 创建默认返回 "{}" 的 MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{response: "{}"}
}

// NewSuccessProvider 创建总是返回 response 的 Provider
func NewSuccessProvider(response string) *MockProvider {
	return NewMockProvider().WithResponse(response)
}

// NewErrorProvider 创建总是失败的 Provider
func NewErrorProvider(err error) *MockProvider {
	return NewMockProvider().WithError(err)
}

// WithResponse 设置默认响应内容
func (m *MockProvider) WithResponse(response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithError 设置返回错误
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// OnSystem 当 system 指令以 prefix 开头时返回 response
func (m *MockProvider) OnSystem(prefix, response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route{prefix: prefix, response: response})
	return m
}

func (m *MockProvider) Name() string { return "mock" }

// Completion 记录请求并返回路由命中的内容
func (m *MockProvider) Completion(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.err
	m.calls = append(m.calls, MockProviderCall{Request: req, Error: err})
	if err != nil {
		return nil, err
	}

	content := m.response
	system := messageContent(req, llm.RoleSystem)
	for _, r := range m.routes {
		if strings.HasPrefix(system, r.prefix) {
			content = r.response
			break
		}
	}

	return &llm.ChatResponse{
		ID:       "mock-response-id",
		Provider: "mock",
		Model:    req.Model,
		Choices: []llm.ChatChoice{{
			FinishReason: "stop",
			Message:      llm.Message{Role: llm.RoleAssistant, Content: content},
		}},
	}, nil
}

// GetCallCount 获取调用次数
func (m *MockProvider) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// CountSystem 统计 system 指令以 prefix 开头的调用次数
func (m *MockProvider) CountSystem(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if strings.HasPrefix(c.System(), prefix) {
			n++
		}
	}
	return n
}

// GetLastCall 获取最后一次调用
func (m *MockProvider) GetLastCall() *MockProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	call := m.calls[len(m.calls)-1]
	return &call
}
