package verification

import (
	"context"
	"testing"

	"github.com/BaSui01/verifyflow/llm"
	"github.com/BaSui01/verifyflow/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// stubInvoker 返回预设结果并记录调用
type stubInvoker struct {
	result  llm.Result
	calls   int
	prompts []string
	systems []string
}

func (s *stubInvoker) Invoke(_ context.Context, prompt, system string) llm.Result {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	s.systems = append(s.systems, system)
	return s.result
}

func okResult(raw string) llm.Result { return llm.Result{Raw: []byte(raw)} }

func errResult(code types.ErrorCode) llm.Result {
	return llm.Result{Err: types.NewError(code, "stubbed")}
}

var goodPlan = types.Plan{
	Task:      "Search for the current CEO of Microsoft",
	Checklist: []string{"The output names Satya Nadella", "The output says \"CEO\""},
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"verifier":               KindVerifier,
		"Verifier System":        KindVerifier,
		"Verifier_System":        KindVerifier,
		"self_verifier":          KindSelfVerifier,
		"Self-Verifier Baseline": KindSelfVerifier,
		"self_verifier_baseline": KindSelfVerifier,
		"No Verifier Baseline":   KindNoVerifier,
		" No_Verifier_Baseline ": KindNoVerifier,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("oracle")
	assert.Error(t, err)
}

func TestKinds_DeclarationOrder(t *testing.T) {
	assert.Equal(t, []Kind{KindVerifier, KindNoVerifier, KindSelfVerifier}, Kinds())
	for _, k := range Kinds() {
		back, err := ParseKind(k.Label())
		require.NoError(t, err)
		assert.Equal(t, k, back)
	}
}

func TestNew(t *testing.T) {
	gw := &stubInvoker{}
	for _, k := range Kinds() {
		s, err := New(k, gw, nil)
		require.NoError(t, err)
		assert.Equal(t, k, s.Kind())
	}
	_, err := New("bogus", gw, nil)
	assert.Error(t, err)
}

// =============================================================================
// Verifier
// =============================================================================

func TestVerifier_EmptyChecklistSkipsCall(t *testing.T) {
	gw := &stubInvoker{result: okResult(`{"verified": true, "reasoning": "x"}`)}
	v := NewVerifier(gw, nil)

	for _, plan := range []types.Plan{types.FailedPlan(), {Task: "t", Checklist: nil}, {Task: "t", Checklist: []string{}}} {
		got := v.Verify(context.Background(), "anything", plan)
		assert.False(t, got.Verified)
		assert.Equal(t, ReasonChecklistUnavailable, got.Reasoning)
	}
	assert.Zero(t, gw.calls)
}

func TestVerifier_ReturnsVerdictVerbatim(t *testing.T) {
	gw := &stubInvoker{result: okResult(`{"verified": false, "reasoning": "The output names Bill Gates, not Satya Nadella."}`)}
	got := NewVerifier(gw, nil).Verify(context.Background(), "Bill Gates", goodPlan)

	assert.Equal(t, types.Verdict{Verified: false, Reasoning: "The output names Bill Gates, not Satya Nadella."}, got)
	require.Equal(t, 1, gw.calls)
	assert.Equal(t, VerifierSystemPrompt, gw.systems[0])
	assert.Contains(t, gw.prompts[0], `Executor Output: "Bill Gates"`)
	assert.Contains(t, gw.prompts[0], `["The output names Satya Nadella","The output says \"CEO\""]`)
}

func TestVerifier_Failures(t *testing.T) {
	cases := []struct {
		name   string
		result llm.Result
		want   string
	}{
		{"auth", errResult(types.ErrAuthentication), "Verification call failed: AUTHENTICATION"},
		{"transport", errResult(types.ErrTransport), "Verification call failed: TRANSPORT"},
		{"missing verified", okResult(`{"reasoning": "looks fine"}`), "Verification call failed: MALFORMED_RESPONSE"},
		{"wrong type", okResult(`{"verified": "yes"}`), "Verification call failed: MALFORMED_RESPONSE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewVerifier(&stubInvoker{result: tc.result}, nil).Verify(context.Background(), "out", goodPlan)
			assert.Equal(t, types.Verdict{Verified: false, Reasoning: tc.want}, got)
		})
	}
}

func TestVerifier_NilGateway(t *testing.T) {
	got := NewVerifier(nil, nil).Verify(context.Background(), "out", goodPlan)
	assert.False(t, got.Verified)
	assert.Equal(t, "Verification call failed: TRANSPORT", got.Reasoning)
}

// 清单为空时 Verifier 总是判定失败且不调用网关。
func TestVerifier_EmptyChecklistProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gw := &stubInvoker{result: okResult(`{"verified": true, "reasoning": "x"}`)}
		plan := types.Plan{Task: rapid.String().Draw(t, "task"), Checklist: []string{}}
		got := NewVerifier(gw, nil).Verify(context.Background(), rapid.String().Draw(t, "output"), plan)
		assert.False(t, got.Verified)
		assert.Zero(t, gw.calls)
	})
}

// =============================================================================
// SelfVerifier
// =============================================================================

func TestSelfVerifier_FailedPlanSkipsCall(t *testing.T) {
	gw := &stubInvoker{result: okResult(`{"verified": true, "reasoning": "x"}`)}
	got := NewSelfVerifier(gw, nil).Verify(context.Background(), "Error: Executor received a failed task from the planner.", types.FailedPlan())

	assert.Equal(t, types.Verdict{Verified: false, Reasoning: ReasonSelfPlannerFailed}, got)
	assert.Zero(t, gw.calls)
}

func TestSelfVerifier_UsesTaskNotChecklist(t *testing.T) {
	gw := &stubInvoker{result: okResult(`{"verified": true, "reasoning": "I found the CEO."}`)}
	got := NewSelfVerifier(gw, nil).Verify(context.Background(), "Satya Nadella", goodPlan)

	assert.Equal(t, types.Verdict{Verified: true, Reasoning: "I found the CEO."}, got)
	require.Equal(t, 1, gw.calls)
	assert.Equal(t, SelfVerifierSystemPrompt, gw.systems[0])
	assert.Contains(t, gw.prompts[0], `Your original task was: "Search for the current CEO of Microsoft"`)
	assert.Contains(t, gw.prompts[0], `Your output was: "Satya Nadella"`)
	assert.NotContains(t, gw.prompts[0], "The output names Satya Nadella")
}

func TestSelfVerifier_Failure(t *testing.T) {
	got := NewSelfVerifier(&stubInvoker{result: errResult(types.ErrModelUnavailable)}, nil).
		Verify(context.Background(), "out", goodPlan)
	assert.Equal(t, types.Verdict{Verified: false, Reasoning: "Self-verification call failed: MODEL_UNAVAILABLE"}, got)
}

// =============================================================================
// NoVerifier
// =============================================================================

func TestNoVerifier(t *testing.T) {
	nv := NewNoVerifier()
	assert.Equal(t, types.Verdict{Verified: true, Reasoning: ReasonNoVerifier},
		nv.Verify(context.Background(), "Satya Nadella is the CEO of Microsoft.", goodPlan))
	assert.False(t, nv.Verify(context.Background(), "Error: No search results found.", goodPlan).Verified)
	assert.True(t, nv.Verify(context.Background(), "", goodPlan).Verified)
	assert.True(t, nv.Verify(context.Background(), "Result. Error: mid-string", goodPlan).Verified)
}

// verified 恒等于「输出不以错误标记开头」。
func TestNoVerifier_PrefixProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		output := rapid.OneOf(
			rapid.String(),
			rapid.Map(rapid.String(), func(s string) string { return types.ErrorMarker + s }),
			rapid.Map(rapid.String(), func(s string) string { return s + types.ErrorMarker }),
		).Draw(t, "output")
		got := NewNoVerifier().Verify(context.Background(), output, types.FailedPlan())
		want := len(output) < len(types.ErrorMarker) || output[:len(types.ErrorMarker)] != types.ErrorMarker
		assert.Equal(t, want, got.Verified)
		assert.Equal(t, ReasonNoVerifier, got.Reasoning)
	})
}
