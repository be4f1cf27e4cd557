package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/BaSui01/verifyflow/tools/websearch"
)

// MockSearchProvider 是 websearch.Provider 的模拟实现，
// 记录会话的打开/关闭次数与收到的查询。
type MockSearchProvider struct {
	mu sync.Mutex

	hits    []websearch.Hit
	err     error
	openErr error
	panicOn string

	opened  int
	closed  int
	queries []string
}

// NewMockSearchProvider 创建新的 MockSearchProvider
func NewMockSearchProvider() *MockSearchProvider {
	return &MockSearchProvider{}
}

// WithSnippet 设置单条结果
func (m *MockSearchProvider) WithSnippet(body string) *MockSearchProvider {
	return m.WithHits(websearch.Hit{Title: "result", URL: "https://example.com", Body: body})
}

// WithHits 设置返回结果
func (m *MockSearchProvider) WithHits(hits ...websearch.Hit) *MockSearchProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits = hits
	return m
}

// WithError 设置查询错误
func (m *MockSearchProvider) WithError(err error) *MockSearchProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithOpenError 设置打开会话时的错误
func (m *MockSearchProvider) WithOpenError(err error) *MockSearchProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr = err
	return m
}

// WithPanic 查询 query 时 panic
func (m *MockSearchProvider) WithPanic(query string) *MockSearchProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicOn = query
	return m
}

// Name 返回 Provider 名称
func (m *MockSearchProvider) Name() string { return "mock-search" }

// Open 打开会话
func (m *MockSearchProvider) Open(ctx context.Context) (websearch.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.opened++
	return &mockSession{p: m}, nil
}

// Opened 返回打开的会话数
func (m *MockSearchProvider) Opened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened
}

// Closed 返回关闭的会话数
func (m *MockSearchProvider) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Queries 返回收到的查询
func (m *MockSearchProvider) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

type mockSession struct {
	p      *MockSearchProvider
	closed bool
}

func (s *mockSession) Search(ctx context.Context, query string, opts websearch.Options) ([]websearch.Hit, error) {
	s.p.mu.Lock()
	s.p.queries = append(s.p.queries, query)
	hits, err, panicOn := s.p.hits, s.p.err, s.p.panicOn
	s.p.mu.Unlock()

	if s.closed {
		return nil, errors.New("mock search: session closed")
	}
	if panicOn != "" && panicOn == query {
		panic("mock search: induced panic")
	}
	if err != nil {
		return nil, err
	}
	if opts.MaxResults > 0 && len(hits) > opts.MaxResults {
		hits = hits[:opts.MaxResults]
	}
	return hits, nil
}

func (s *mockSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.p.mu.Lock()
	s.p.closed++
	s.p.mu.Unlock()
	return nil
}
