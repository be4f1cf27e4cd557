package agent

import (
	"fmt"

	"github.com/BaSui01/verifyflow/types"
)

// PlannerSystemPrompt 是 Planner 的固定 system 指令
const PlannerSystemPrompt = "You are a meticulous planner. Convert the user's goal into a specific task and a JSON list of simple, factual verification strings."

// PlannerPrompt 构造 Planner 的用户提示
func PlannerPrompt(goal types.Goal) string {
	return fmt.Sprintf(`Goal: "%s". Provide your output in a JSON object with two keys: "task" (string) and "checklist" (list of strings).`, goal)
}
