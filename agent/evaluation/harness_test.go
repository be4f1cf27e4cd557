package evaluation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/verifyflow/agent"
	"github.com/BaSui01/verifyflow/agent/verification"
	"github.com/BaSui01/verifyflow/llm"
	"github.com/BaSui01/verifyflow/testutil"
	"github.com/BaSui01/verifyflow/testutil/fixtures"
	"github.com/BaSui01/verifyflow/testutil/mocks"
	"github.com/BaSui01/verifyflow/tools/websearch"
	"github.com/BaSui01/verifyflow/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const snippet = "Canberra is the capital city of Australia."

type harnessFixture struct {
	provider *mocks.MockProvider
	search   *mocks.MockSearchProvider
	gateway  *llm.Gateway
	harness  *Harness
}

func newHarnessFixture(provider *mocks.MockProvider, search *mocks.MockSearchProvider, opts ...HarnessOption) *harnessFixture {
	gw := llm.NewGateway(provider, llm.GatewayConfig{Model: "gpt-4o"}, nil)
	sg := websearch.NewGateway(search, websearch.GatewayConfig{Region: "wt-wt"}, nil)
	h := NewHarness(agent.NewPlanner(gw, nil), agent.NewExecutor(sg, nil), nil, opts...)
	return &harnessFixture{provider: provider, search: search, gateway: gw, harness: h}
}

func (f *harnessFixture) strategies(t *testing.T) []NamedStrategy {
	t.Helper()
	s, err := DefaultStrategies(f.gateway, nil)
	require.NoError(t, err)
	return s
}

func capitalProvider() *mocks.MockProvider {
	plan := fixtures.CapitalOfAustraliaPlan()
	return mocks.NewMockProvider().
		OnSystem(agent.PlannerSystemPrompt, fixtures.PlanJSON(plan.Task, plan.Checklist...)).
		OnSystem(verification.VerifierSystemPrompt, fixtures.VerdictJSON(true, "The output names Canberra.")).
		OnSystem(verification.SelfVerifierSystemPrompt, fixtures.VerdictJSON(true, "My output answers the task."))
}

type recordedRun struct {
	strategy string
	verified bool
}

type fakeRunRecorder struct {
	mu   sync.Mutex
	runs []recordedRun
}

func (r *fakeRunRecorder) RecordRun(strategy string, verified bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, recordedRun{strategy, verified})
}

func TestDefaultStrategies_Order(t *testing.T) {
	f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider())
	s := f.strategies(t)

	require.Len(t, s, 3)
	assert.Equal(t, "Verifier_System", s[0].Name)
	assert.Equal(t, "No_Verifier_Baseline", s[1].Name)
	assert.Equal(t, "Self_Verifier_Baseline", s[2].Name)
	assert.Equal(t, verification.KindVerifier, s[0].Strategy.Kind())
	assert.Equal(t, verification.KindNoVerifier, s[1].Strategy.Kind())
	assert.Equal(t, verification.KindSelfVerifier, s[2].Strategy.Kind())
}

func TestStrategiesFor_Subset(t *testing.T) {
	f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider())
	s, err := StrategiesFor([]verification.Kind{verification.KindSelfVerifier}, f.gateway, nil)
	require.NoError(t, err)
	require.Len(t, s, 1)
	assert.Equal(t, "Self_Verifier_Baseline", s[0].Name)

	_, err = StrategiesFor([]verification.Kind{"oracle"}, f.gateway, nil)
	assert.Error(t, err)
}

func TestHarness_RecordOrder(t *testing.T) {
	f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider().WithSnippet(snippet))
	sink := mocks.NewRecordingSink()
	tasks := []types.BenchmarkTask{
		{ID: 3, Goal: "third"},
		{ID: 1, Goal: "first"},
		{ID: 2, Goal: "second-a"},
		{ID: 2, Goal: "second-b"},
	}

	summary, err := f.harness.Run(testutil.TestContext(t), tasks, f.strategies(t), sink)
	require.NoError(t, err)

	records := sink.Records()
	require.Len(t, records, 12)
	wantGoals := []string{"first", "second-a", "second-b", "third"}
	wantStrategies := []string{"Verifier_System", "No_Verifier_Baseline", "Self_Verifier_Baseline"}
	for i, rec := range records {
		assert.Equal(t, wantGoals[i/3], rec.Goal, "record %d", i)
		assert.Equal(t, wantStrategies[i%3], rec.Strategy, "record %d", i)
	}

	// 输入切片不被修改
	assert.Equal(t, 3, tasks[0].ID)
	assert.Equal(t, 12, summary.Runs())
	assert.Equal(t, f.harness.BatchID(), summary.BatchID)
}

func TestHarness_RecordContents(t *testing.T) {
	f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider().WithSnippet(snippet))
	sink := mocks.NewRecordingSink()
	tasks := []types.BenchmarkTask{{ID: 5, Goal: "What is the capital city of Australia?"}}

	_, err := f.harness.Run(testutil.TestContext(t), tasks, f.strategies(t), sink)
	require.NoError(t, err)

	records := sink.Records()
	require.Len(t, records, 3)
	plan := fixtures.CapitalOfAustraliaPlan()
	for _, rec := range records {
		assert.Equal(t, 5, rec.TaskID)
		assert.Equal(t, plan.Task, rec.PlannerTask)
		assert.Equal(t, plan.ChecklistJSON(), rec.PlannerChecklist)
		assert.Equal(t, snippet, rec.ExecutorOutput)
		assert.True(t, rec.Verified)
	}
	assert.Equal(t, "The output names Canberra.", records[0].Reasoning)
	assert.Equal(t, "No Verifier present. Assumed success.", records[1].Reasoning)
	assert.Equal(t, "My output answers the task.", records[2].Reasoning)

	// 每个策略各调用一次 Planner，No-Verifier 不额外调用模型
	assert.Equal(t, 3, f.provider.CountSystem(agent.PlannerSystemPrompt))
	assert.Equal(t, 5, f.provider.GetCallCount())
}

func TestHarness_SinkErrorAborts(t *testing.T) {
	diskFull := errors.New("disk full")
	f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider().WithSnippet(snippet))
	sink := mocks.NewRecordingSink().WithFailAfter(4, diskFull)
	tasks := DefaultBenchmark()[:3]

	summary, err := f.harness.Run(testutil.TestContext(t), tasks, f.strategies(t), sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "task 2")

	assert.Len(t, sink.Records(), 4)
	assert.Equal(t, 4, summary.Runs())
	// 第 5 次运行已执行但未写入；之后不再有任何运行
	assert.Equal(t, 5, f.provider.CountSystem(agent.PlannerSystemPrompt))
	assert.Len(t, f.search.Queries(), 5)
}

// cancelSink 在第 n 次成功写入后取消上下文
type cancelSink struct {
	*mocks.RecordingSink
	n      int
	cancel context.CancelFunc
}

func (s *cancelSink) Write(ctx context.Context, rec types.EvaluationRecord) error {
	if err := s.RecordingSink.Write(ctx, rec); err != nil {
		return err
	}
	if len(s.Records()) == s.n {
		s.cancel()
	}
	return nil
}

// cancelSearch 在第 n 次打开会话时取消上下文，模拟运行中途的中断
type cancelSearch struct {
	*mocks.MockSearchProvider
	n      int
	opened int
	cancel context.CancelFunc
}

func (s *cancelSearch) Open(ctx context.Context) (websearch.Session, error) {
	s.opened++
	if s.opened == s.n {
		s.cancel()
	}
	return s.MockSearchProvider.Open(ctx)
}

func TestHarness_CancelledBetweenRuns(t *testing.T) {
	f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider().WithSnippet(snippet))
	ctx, cancel := context.WithCancel(testutil.TestContext(t))
	defer cancel()
	sink := &cancelSink{RecordingSink: mocks.NewRecordingSink(), n: 2, cancel: cancel}

	summary, err := f.harness.Run(ctx, DefaultBenchmark()[:3], f.strategies(t), sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "task 1 (Self_Verifier_Baseline)")

	// 取消之后不再产生任何记录，也不再调用模型或搜索
	require.Len(t, sink.Records(), 2)
	for _, rec := range sink.Records() {
		assert.NotEqual(t, types.PlannerFailedTask, rec.PlannerTask)
	}
	assert.Equal(t, 2, summary.Runs())
	assert.Equal(t, 2, f.provider.CountSystem(agent.PlannerSystemPrompt))
	assert.Len(t, f.search.Queries(), 2)
}

func TestHarness_CancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.TestContext(t))
	defer cancel()
	search := &cancelSearch{MockSearchProvider: mocks.NewMockSearchProvider().WithSnippet(snippet), n: 2, cancel: cancel}

	provider := capitalProvider()
	gw := llm.NewGateway(provider, llm.GatewayConfig{Model: "gpt-4o"}, nil)
	sg := websearch.NewGateway(search, websearch.GatewayConfig{Region: "wt-wt"}, nil)
	h := NewHarness(agent.NewPlanner(gw, nil), agent.NewExecutor(sg, nil), nil)
	strategies, err := DefaultStrategies(gw, nil)
	require.NoError(t, err)
	sink := mocks.NewRecordingSink()

	summary, err := h.Run(ctx, DefaultBenchmark()[:2], strategies, sink)
	assert.ErrorIs(t, err, context.Canceled)

	// 被中断的第二次运行不写入
	require.Len(t, sink.Records(), 1)
	assert.Equal(t, "Verifier_System", sink.Records()[0].Strategy)
	assert.Equal(t, 1, summary.Runs())
	assert.Equal(t, 2, provider.CountSystem(agent.PlannerSystemPrompt))
}

func TestHarness_AlreadyCancelled(t *testing.T) {
	f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider().WithSnippet(snippet))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := mocks.NewRecordingSink()

	summary, err := f.harness.Run(ctx, DefaultBenchmark()[:2], f.strategies(t), sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.Records())
	assert.Zero(t, summary.Runs())
	assert.Zero(t, f.provider.GetCallCount())
}

func TestHarness_FailuresDoNotAbort(t *testing.T) {
	provider := mocks.NewErrorProvider(&llm.Error{Code: llm.ErrUnauthorized, Message: "Incorrect API key provided"})
	f := newHarnessFixture(provider, mocks.NewMockSearchProvider().WithSnippet(snippet))
	sink := mocks.NewRecordingSink()

	summary, err := f.harness.Run(testutil.TestContext(t), DefaultBenchmark(), f.strategies(t), sink)
	require.NoError(t, err)

	records := sink.Records()
	require.Len(t, records, 60)
	for _, rec := range records {
		assert.Equal(t, types.PlannerFailedTask, rec.PlannerTask)
		assert.Equal(t, "[]", rec.PlannerChecklist)
		assert.Equal(t, "Error: Executor received a failed task from the planner.", rec.ExecutorOutput)
		assert.False(t, rec.Verified)
	}
	for _, st := range summary.Strategies {
		assert.Equal(t, 20, st.Runs)
		assert.Zero(t, st.Verified)
		assert.Zero(t, st.PassRate())
	}
	assert.Empty(t, f.search.Queries())
}

func TestHarness_SummaryAndRecorder(t *testing.T) {
	rec := &fakeRunRecorder{}
	// 搜索无结果：No-Verifier 判定失败，Verifier 与 Self-Verifier 采用模型结论
	f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider(), WithRunRecorder(rec), WithBatchID("batch-1"))
	tasks := DefaultBenchmark()[:2]

	summary, err := f.harness.Run(testutil.TestContext(t), tasks, f.strategies(t), mocks.NewRecordingSink())
	require.NoError(t, err)

	assert.Equal(t, "batch-1", summary.BatchID)
	require.Len(t, summary.Strategies, 3)
	assert.Equal(t, StrategySummary{Name: "Verifier_System", Runs: 2, Verified: 2}, summary.Strategies[0])
	assert.Equal(t, StrategySummary{Name: "No_Verifier_Baseline", Runs: 2, Verified: 0}, summary.Strategies[1])
	assert.Equal(t, StrategySummary{Name: "Self_Verifier_Baseline", Runs: 2, Verified: 2}, summary.Strategies[2])
	assert.InDelta(t, 1.0, summary.Strategies[0].PassRate(), 1e-9)

	require.Len(t, rec.runs, 6)
	assert.Equal(t, recordedRun{"Verifier_System", true}, rec.runs[0])
	assert.Equal(t, recordedRun{"No_Verifier_Baseline", false}, rec.runs[1])
}

func TestHarness_EmptyInputs(t *testing.T) {
	f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider())
	sink := mocks.NewRecordingSink()

	summary, err := f.harness.Run(testutil.TestContext(t), nil, f.strategies(t), sink)
	require.NoError(t, err)
	assert.Zero(t, summary.Runs())
	assert.Empty(t, sink.Records())
	assert.Zero(t, f.provider.GetCallCount())
}

func TestHarness_Idempotent(t *testing.T) {
	run := func() []types.EvaluationRecord {
		f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider().WithSnippet(snippet))
		sink := mocks.NewRecordingSink()
		_, err := f.harness.Run(testutil.TestContext(t), DefaultBenchmark()[:4], f.strategies(t), sink)
		require.NoError(t, err)
		return sink.Records()
	}
	assert.Equal(t, run(), run())
}

func TestHarness_OrderProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ids := rapid.SliceOfN(rapid.IntRange(1, 50), 0, 12).Draw(rt, "ids")
		tasks := make([]types.BenchmarkTask, len(ids))
		for i, id := range ids {
			tasks[i] = types.BenchmarkTask{ID: id, Goal: types.Goal("goal")}
		}

		f := newHarnessFixture(capitalProvider(), mocks.NewMockSearchProvider().WithSnippet(snippet))
		strategies := f.strategies(t)
		sink := mocks.NewRecordingSink()
		_, err := f.harness.Run(testutil.TestContext(t), tasks, strategies, sink)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}

		records := sink.Records()
		if len(records) != len(tasks)*len(strategies) {
			rt.Fatalf("got %d records, want %d", len(records), len(tasks)*len(strategies))
		}
		for i, rec := range records {
			if i > 0 && rec.TaskID < records[i-1].TaskID {
				rt.Fatalf("record %d: task id %d after %d", i, rec.TaskID, records[i-1].TaskID)
			}
			if rec.Strategy != strategies[i%len(strategies)].Name {
				rt.Fatalf("record %d: strategy %q, want %q", i, rec.Strategy, strategies[i%len(strategies)].Name)
			}
		}
	})
}
