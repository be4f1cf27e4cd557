package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/verifyflow/types"
)

// RecordingSink 把评估记录保存在内存中，可注入写入失败。
type RecordingSink struct {
	mu sync.Mutex

	records   []types.EvaluationRecord
	failAfter int // 在成功写入 N 条后失败，0 表示不失败
	err       error
	closed    int
}

// NewRecordingSink 创建新的 RecordingSink
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// WithFailAfter 在成功写入 n 条后返回 err
func (s *RecordingSink) WithFailAfter(n int, err error) *RecordingSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter = n
	s.err = err
	return s
}

// Write 追加一条记录
func (s *RecordingSink) Write(ctx context.Context, rec types.EvaluationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil && len(s.records) >= s.failAfter {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

// Close 记录关闭次数
func (s *RecordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// Records 返回已写入的记录
func (s *RecordingSink) Records() []types.EvaluationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.EvaluationRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Closed 返回 Close 被调用的次数
func (s *RecordingSink) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
