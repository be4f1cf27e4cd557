package evaluation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/BaSui01/verifyflow/agent"
	"github.com/BaSui01/verifyflow/agent/verification"
	"github.com/BaSui01/verifyflow/llm"
	"github.com/BaSui01/verifyflow/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NamedStrategy pairs a strategy with the name written to system_type.
type NamedStrategy struct {
	Name     string
	Strategy verification.Strategy
}

// DefaultStrategies returns the three strategies in benchmark order:
// Verifier, No-Verifier, Self-Verifier.
func DefaultStrategies(gateway llm.Invoker, logger *zap.Logger) ([]NamedStrategy, error) {
	return StrategiesFor(verification.Kinds(), gateway, logger)
}

// StrategiesFor builds named strategies for kinds, preserving their order.
func StrategiesFor(kinds []verification.Kind, gateway llm.Invoker, logger *zap.Logger) ([]NamedStrategy, error) {
	out := make([]NamedStrategy, 0, len(kinds))
	for _, k := range kinds {
		s, err := verification.New(k, gateway, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, NamedStrategy{Name: k.BenchmarkName(), Strategy: s})
	}
	return out, nil
}

// RunRecorder receives one observation per completed run.
type RunRecorder interface {
	RecordRun(strategy string, verified bool, duration time.Duration)
}

// StrategySummary 单个策略的计数
type StrategySummary struct {
	Name     string `json:"name"`
	Runs     int    `json:"runs"`
	Verified int    `json:"verified"`
}

// PassRate is the share of runs the strategy reported as verified.
func (s StrategySummary) PassRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Verified) / float64(s.Runs)
}

// Summary describes a finished (or aborted) batch.
type Summary struct {
	BatchID    string            `json:"batch_id"`
	Strategies []StrategySummary `json:"strategies"`
	Duration   time.Duration     `json:"duration"`
}

// Runs returns the number of records written.
func (s Summary) Runs() int {
	n := 0
	for _, st := range s.Strategies {
		n += st.Runs
	}
	return n
}

// Harness runs a benchmark sequentially. The planner and executor are
// shared by every strategy's pipeline.
type Harness struct {
	planner  *agent.Planner
	executor *agent.Executor

	batchID      string
	pipelineOpts []agent.PipelineOption
	recorder     RunRecorder
	base         *zap.Logger
	logger       *zap.Logger
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithBatchID overrides the generated batch id.
func WithBatchID(id string) HarnessOption {
	return func(h *Harness) { h.batchID = id }
}

// WithRunRecorder attaches a metrics recorder.
func WithRunRecorder(r RunRecorder) HarnessOption {
	return func(h *Harness) { h.recorder = r }
}

// WithPipelineOptions passes options to every pipeline the harness builds.
func WithPipelineOptions(opts ...agent.PipelineOption) HarnessOption {
	return func(h *Harness) { h.pipelineOpts = append(h.pipelineOpts, opts...) }
}

// NewHarness creates a harness.
func NewHarness(planner *agent.Planner, executor *agent.Executor, logger *zap.Logger, opts ...HarnessOption) *Harness {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Harness{
		planner:  planner,
		executor: executor,
		batchID:  uuid.NewString(),
		base:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.base.With(zap.String("component", "harness"), zap.String("batch_id", h.batchID))
	return h
}

// BatchID returns the id tagging this harness's records.
func (h *Harness) BatchID() string { return h.batchID }

// Run executes every (task, strategy) pair and writes each record to sink
// as soon as it is produced. Tasks run in ascending ID order (ties keep
// input order), strategies in the given order. A sink write failure or a
// cancelled ctx stops the batch; the summary then covers the records
// already written. A run interrupted by cancellation is not recorded.
func (h *Harness) Run(ctx context.Context, tasks []types.BenchmarkTask, strategies []NamedStrategy, sink Sink) (Summary, error) {
	ordered := make([]types.BenchmarkTask, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	pipelines := make([]*agent.Pipeline, len(strategies))
	summary := Summary{BatchID: h.batchID, Strategies: make([]StrategySummary, len(strategies))}
	for i, s := range strategies {
		opts := append([]agent.PipelineOption{agent.WithLogger(h.base)}, h.pipelineOpts...)
		pipelines[i] = agent.NewPipeline(h.planner, h.executor, s.Strategy, opts...)
		summary.Strategies[i].Name = s.Name
	}

	h.logger.Info("evaluation started",
		zap.Int("tasks", len(ordered)),
		zap.Int("strategies", len(strategies)))
	batchStart := time.Now()

	for _, task := range ordered {
		for i, s := range strategies {
			if err := ctx.Err(); err != nil {
				return h.interrupted(summary, batchStart, task, s.Name, err)
			}
			h.logger.Info("running task",
				zap.Int("task_id", task.ID),
				zap.String("strategy", s.Name),
				zap.String("goal", string(task.Goal)))

			start := time.Now()
			run := pipelines[i].Run(ctx, task.Goal)
			elapsed := time.Since(start)

			// 运行期间被取消时结果不可信，不写入
			if err := ctx.Err(); err != nil {
				return h.interrupted(summary, batchStart, task, s.Name, err)
			}

			rec := types.NewEvaluationRecord(task, s.Name, run.Plan, run.Output, run.Verdict)
			if err := sink.Write(ctx, rec); err != nil {
				summary.Duration = time.Since(batchStart)
				h.logger.Error("failed to write record",
					zap.Int("task_id", task.ID),
					zap.String("strategy", s.Name),
					zap.Error(err))
				return summary, fmt.Errorf("write record for task %d (%s): %w", task.ID, s.Name, err)
			}

			summary.Strategies[i].Runs++
			if run.Verdict.Verified {
				summary.Strategies[i].Verified++
			}
			if h.recorder != nil {
				h.recorder.RecordRun(s.Name, run.Verdict.Verified, elapsed)
			}
			h.logger.Info("task evaluated",
				zap.Int("task_id", task.ID),
				zap.String("strategy", s.Name),
				zap.Bool("verified", run.Verdict.Verified),
				zap.String("reasoning", run.Verdict.Reasoning),
				zap.Duration("duration", elapsed))
		}
	}

	summary.Duration = time.Since(batchStart)
	for _, st := range summary.Strategies {
		h.logger.Info("strategy summary",
			zap.String("strategy", st.Name),
			zap.Int("runs", st.Runs),
			zap.Int("verified", st.Verified),
			zap.Float64("pass_rate", st.PassRate()))
	}
	h.logger.Info("evaluation complete",
		zap.Int("records", summary.Runs()),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// interrupted 记录取消位置并返回部分汇总
func (h *Harness) interrupted(summary Summary, batchStart time.Time, task types.BenchmarkTask, strategy string, err error) (Summary, error) {
	summary.Duration = time.Since(batchStart)
	h.logger.Warn("evaluation interrupted",
		zap.Int("task_id", task.ID),
		zap.String("strategy", strategy),
		zap.Int("records", summary.Runs()),
		zap.Error(err))
	return summary, fmt.Errorf("evaluation interrupted at task %d (%s): %w", task.ID, strategy, err)
}
