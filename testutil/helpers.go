// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
//
// 使用方法:
//
//	ctx := testutil.TestContext(t)
//	testutil.AssertErrorOutput(t, executor.Execute(ctx, task))
//
// =============================================================================
package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/BaSui01/verifyflow/types"
)

// TestContext 返回 30 秒超时的测试上下文
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// AssertJSONEqual 断言两个值的 JSON 表示相等
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual: %s", expectedJSON, actualJSON)
	}
}

// AssertErrorOutput 断言执行器输出带有错误标记
func AssertErrorOutput(t *testing.T, output string) {
	t.Helper()
	if !types.IsErrorOutput(output) {
		t.Errorf("expected %q-marked output, got %q", types.ErrorMarker, output)
	}
}
