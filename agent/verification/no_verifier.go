package verification

import (
	"context"

	"github.com/BaSui01/verifyflow/types"
)

// ReasonNoVerifier 是 NoVerifier 的固定理由
const ReasonNoVerifier = "No Verifier present. Assumed success."

// NoVerifier 是朴素基线：只要输出不以错误标记开头就视为成功
type NoVerifier struct{}

// NewNoVerifier 创建 NoVerifier
func NewNoVerifier() NoVerifier { return NoVerifier{} }

func (NoVerifier) Kind() Kind { return KindNoVerifier }

func (NoVerifier) Verify(_ context.Context, output string, _ types.Plan) types.Verdict {
	return types.Verdict{Verified: !types.IsErrorOutput(output), Reasoning: ReasonNoVerifier}
}

func (NoVerifier) sealed() {}
