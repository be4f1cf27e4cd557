package agent

import (
	"context"
	"strings"

	"github.com/BaSui01/verifyflow/llm"
	"github.com/BaSui01/verifyflow/types"
	"go.uber.org/zap"
)

// planPayload 是 Planner 期望的模型输出
type planPayload struct {
	Task      string   `json:"task"`
	Checklist []string `json:"checklist"`
}

// Planner 把目标拆成一个任务与一组可独立核查的事实断言。
// 每次 Plan 恰好调用一次网关；任何失败都折叠为哨兵计划。
type Planner struct {
	gateway llm.Invoker
	logger  *zap.Logger
}

// NewPlanner 创建 Planner
func NewPlanner(gateway llm.Invoker, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		gateway: gateway,
		logger:  logger.With(zap.String("component", "planner")),
	}
}

// Plan 返回任务非空且清单非空的计划，或 types.FailedPlan()。
func (p *Planner) Plan(ctx context.Context, goal types.Goal) types.Plan {
	res := p.gateway.Invoke(ctx, PlannerPrompt(goal), PlannerSystemPrompt)
	if !res.OK() {
		p.logger.Warn("planner call failed",
			zap.String("goal", string(goal)),
			zap.String("code", string(res.Code())))
		return types.FailedPlan()
	}

	var payload planPayload
	if err := res.Decode(&payload); err != nil {
		p.logger.Warn("planner response has unexpected shape",
			zap.String("goal", string(goal)),
			zap.Error(err))
		return types.FailedPlan()
	}
	task := strings.TrimSpace(payload.Task)
	if task == "" || task == types.PlannerFailedTask {
		p.logger.Warn("planner returned no task", zap.String("goal", string(goal)))
		return types.FailedPlan()
	}

	// 没有断言的计划无法核查，按失败处理
	checklist := payload.Checklist
	if len(checklist) == 0 {
		p.logger.Warn("planner returned an empty checklist", zap.String("goal", string(goal)))
		return types.FailedPlan()
	}
	p.logger.Debug("plan created",
		zap.String("task", task),
		zap.Int("checklist", len(checklist)))
	return types.Plan{Task: task, Checklist: checklist}
}
