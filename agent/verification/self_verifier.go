package verification

import (
	"context"
	"fmt"

	"github.com/BaSui01/verifyflow/llm"
	"github.com/BaSui01/verifyflow/types"
	"go.uber.org/zap"
)

const (
	// SelfVerifierSystemPrompt 让执行者评估自己的输出
	SelfVerifierSystemPrompt = "You are an executor agent critically evaluating your own work. Respond with a JSON object."

	ReasonSelfPlannerFailed   = "Self-verification skipped because the planner agent failed."
	selfVerifierFailurePrefix = "Self-verification call failed: "
)

// SelfVerifierPrompt 构造自我评估提示
func SelfVerifierPrompt(output string, plan types.Plan) string {
	return fmt.Sprintf("Your original task was: %q\nYour output was: %q\nCritically evaluate if your output successfully and accurately completed the task. Provide your output as a JSON object with two keys: \"verified\" (boolean) and \"reasoning\" (string).",
		plan.Task, output)
}

// SelfVerifier 让产生结果的执行者对照原任务自评，不使用检查清单
type SelfVerifier struct {
	gateway llm.Invoker
	logger  *zap.Logger
}

// NewSelfVerifier 创建 SelfVerifier
func NewSelfVerifier(gateway llm.Invoker, logger *zap.Logger) *SelfVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelfVerifier{gateway: gateway, logger: logger.With(zap.String("component", "self_verifier"))}
}

func (s *SelfVerifier) Kind() Kind { return KindSelfVerifier }

// Verify 计划失败时不调用网关
func (s *SelfVerifier) Verify(ctx context.Context, output string, plan types.Plan) types.Verdict {
	if plan.Failed() {
		return types.Verdict{Verified: false, Reasoning: ReasonSelfPlannerFailed}
	}
	return judge(ctx, s.gateway, s.logger, SelfVerifierPrompt(output, plan), SelfVerifierSystemPrompt, selfVerifierFailurePrefix)
}

func (*SelfVerifier) sealed() {}
