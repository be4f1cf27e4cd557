// =============================================================================
// 📦 测试数据工厂 - 各阶段的模型响应
// =============================================================================
// 提供 Planner / Verifier / Self-Verifier 的 JSON 响应与样例记录
// =============================================================================
package fixtures

import (
	"encoding/json"

	"github.com/BaSui01/verifyflow/types"
)

// =============================================================================
// 🎯 模型响应工厂
// =============================================================================

// PlanJSON 返回 Planner 的 JSON 响应
func PlanJSON(task string, checklist ...string) string {
	if checklist == nil {
		checklist = []string{}
	}
	return mustJSON(map[string]any{"task": task, "checklist": checklist})
}

// VerdictJSON 返回 Verifier / Self-Verifier 的 JSON 响应
func VerdictJSON(verified bool, reasoning string) string {
	return mustJSON(map[string]any{"verified": verified, "reasoning": reasoning})
}

// CapitalOfAustraliaPlan 是一个事实性目标的典型计划
func CapitalOfAustraliaPlan() types.Plan {
	return types.Plan{
		Task:      "Search for the capital city of Australia",
		Checklist: []string{"The output names Canberra as the capital of Australia"},
	}
}

// =============================================================================
// 📋 记录工厂
// =============================================================================

// SampleRecord 返回一条完整的评估记录
func SampleRecord(taskID int, strategy string) types.EvaluationRecord {
	return types.NewEvaluationRecord(
		types.BenchmarkTask{ID: taskID, Goal: "What is the capital city of Australia?"},
		strategy,
		CapitalOfAustraliaPlan(),
		"Canberra is the capital city of Australia.",
		types.Verdict{Verified: true, Reasoning: "The output names Canberra."},
	)
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
