package verification

import (
	"context"
	"fmt"
	"strings"

	"github.com/BaSui01/verifyflow/llm"
	"github.com/BaSui01/verifyflow/types"
	"go.uber.org/zap"
)

// Kind 标识验证策略
type Kind string

const (
	KindVerifier     Kind = "verifier"
	KindSelfVerifier Kind = "self_verifier"
	KindNoVerifier   Kind = "no_verifier"
)

// Kinds 按声明顺序返回全部策略
func Kinds() []Kind {
	return []Kind{KindVerifier, KindNoVerifier, KindSelfVerifier}
}

// Label 返回交互界面使用的名称
func (k Kind) Label() string {
	switch k {
	case KindVerifier:
		return "Verifier System"
	case KindSelfVerifier:
		return "Self-Verifier Baseline"
	case KindNoVerifier:
		return "No Verifier Baseline"
	default:
		return string(k)
	}
}

// BenchmarkName 返回结果表中 system_type 列使用的名称
func (k Kind) BenchmarkName() string {
	switch k {
	case KindVerifier:
		return "Verifier_System"
	case KindSelfVerifier:
		return "Self_Verifier_Baseline"
	case KindNoVerifier:
		return "No_Verifier_Baseline"
	default:
		return string(k)
	}
}

// ParseKind 接受 Kind 值、界面名称或结果表名称（不区分大小写）
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if norm == string(k) || norm == strings.ToLower(k.Label()) || norm == strings.ToLower(k.BenchmarkName()) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown verification strategy %q", s)
}

// Strategy 根据执行结果与计划给出判定。
// 实现集合是封闭的：Verifier、SelfVerifier、NoVerifier。
type Strategy interface {
	Kind() Kind
	Verify(ctx context.Context, output string, plan types.Plan) types.Verdict
	sealed()
}

// New 按 Kind 创建策略。NoVerifier 不需要网关。
func New(kind Kind, gateway llm.Invoker, logger *zap.Logger) (Strategy, error) {
	switch kind {
	case KindVerifier:
		return NewVerifier(gateway, logger), nil
	case KindSelfVerifier:
		return NewSelfVerifier(gateway, logger), nil
	case KindNoVerifier:
		return NewNoVerifier(), nil
	default:
		return nil, fmt.Errorf("unknown verification strategy %q", kind)
	}
}

// verdictPayload 是模型判定的期望结构；verified 缺失视为调用失败
type verdictPayload struct {
	Verified  *bool  `json:"verified"`
	Reasoning string `json:"reasoning"`
}

// judge 调用网关并解析判定，失败时返回 failPrefix + 错误码
func judge(ctx context.Context, gateway llm.Invoker, logger *zap.Logger, prompt, system, failPrefix string) types.Verdict {
	if gateway == nil {
		return types.Verdict{Reasoning: failPrefix + string(types.ErrTransport)}
	}
	res := gateway.Invoke(ctx, prompt, system)
	if !res.OK() {
		logger.Warn("verification call failed", zap.String("code", string(res.Code())))
		return types.Verdict{Reasoning: failPrefix + string(res.Code())}
	}
	var payload verdictPayload
	if err := res.Decode(&payload); err != nil || payload.Verified == nil {
		logger.Warn("verification response has unexpected shape", zap.Error(err))
		return types.Verdict{Reasoning: failPrefix + string(types.ErrMalformedResponse)}
	}
	return types.Verdict{Verified: *payload.Verified, Reasoning: payload.Reasoning}
}
