package verification

import (
	"context"
	"fmt"

	"github.com/BaSui01/verifyflow/llm"
	"github.com/BaSui01/verifyflow/types"
	"go.uber.org/zap"
)

const (
	// VerifierSystemPrompt 是独立验证者的 system 指令
	VerifierSystemPrompt = "You are a scrupulous verifier. Check if the 'Executor Output' satisfies ALL conditions in the 'Verification Checklist'. Respond with a JSON object."

	ReasonChecklistUnavailable = "Verification skipped: checklist unavailable because the planner agent failed."
	verifierFailurePrefix      = "Verification call failed: "
)

// VerifierPrompt 构造验证提示，checklist 以 JSON 数组嵌入
func VerifierPrompt(output string, plan types.Plan) string {
	return fmt.Sprintf("Executor Output: %q\nVerification Checklist: %s. Provide your output as a JSON object with two keys: \"verified\" (boolean) and \"reasoning\" (string).",
		output, plan.ChecklistJSON())
}

// Verifier 用独立的检查清单核对执行结果
type Verifier struct {
	gateway llm.Invoker
	logger  *zap.Logger
}

// NewVerifier 创建 Verifier
func NewVerifier(gateway llm.Invoker, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{gateway: gateway, logger: logger.With(zap.String("component", "verifier"))}
}

func (v *Verifier) Kind() Kind { return KindVerifier }

// Verify 清单为空时不调用网关，直接判定失败
func (v *Verifier) Verify(ctx context.Context, output string, plan types.Plan) types.Verdict {
	if len(plan.Checklist) == 0 {
		return types.Verdict{Verified: false, Reasoning: ReasonChecklistUnavailable}
	}
	return judge(ctx, v.gateway, v.logger, VerifierPrompt(output, plan), VerifierSystemPrompt, verifierFailurePrefix)
}

func (*Verifier) sealed() {}
