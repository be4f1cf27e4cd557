package agent

import (
	"context"
	"time"

	"github.com/BaSui01/verifyflow/agent/verification"
	"github.com/BaSui01/verifyflow/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InstrumentationName 是流水线 tracer / meter 的名称
const InstrumentationName = "github.com/BaSui01/verifyflow/agent"

// Run 是一次流水线运行的产物，只在本次运行内有效
type Run struct {
	Plan    types.Plan    `json:"plan"`
	Output  string        `json:"output"`
	Verdict types.Verdict `json:"verdict"`
}

// Pipeline 组合 Planner → Executor → 验证策略。
// 策略在构造时确定；除委托外不做任何分支。
type Pipeline struct {
	planner  *Planner
	executor *Executor
	strategy verification.Strategy

	tracer    trace.Tracer
	stageTime metric.Float64Histogram
	logger    *zap.Logger
}

// PipelineOption 配置 Pipeline
type PipelineOption func(*Pipeline)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer 覆盖默认 tracer（默认使用全局 TracerProvider）
func WithTracer(tracer trace.Tracer) PipelineOption {
	return func(p *Pipeline) { p.tracer = tracer }
}

// WithMeter 使用指定 meter 记录各阶段耗时
func WithMeter(meter metric.Meter) PipelineOption {
	return func(p *Pipeline) { p.stageTime = newStageHistogram(meter) }
}

// NewPipeline 创建流水线
func NewPipeline(planner *Planner, executor *Executor, strategy verification.Strategy, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		planner:  planner,
		executor: executor,
		strategy: strategy,
		tracer:   otel.Tracer(InstrumentationName),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.stageTime == nil {
		p.stageTime = newStageHistogram(otel.Meter(InstrumentationName))
	}
	p.logger = p.logger.With(zap.String("component", "pipeline"), zap.String("strategy", string(strategy.Kind())))
	return p
}

func newStageHistogram(meter metric.Meter) metric.Float64Histogram {
	h, err := meter.Float64Histogram("verifyflow.stage.duration",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30))
	if err != nil {
		otel.Handle(err)
		return nil
	}
	return h
}

// Strategy 返回所用的验证策略
func (p *Pipeline) Strategy() verification.Strategy { return p.strategy }

// Run 执行一次完整运行：goal → plan → output → verdict
func (p *Pipeline) Run(ctx context.Context, goal types.Goal) Run {
	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("verifyflow.strategy", string(p.strategy.Kind())),
	))
	defer span.End()

	var run Run

	p.stage(ctx, "plan", func(ctx context.Context) {
		run.Plan = p.planner.Plan(ctx, goal)
	})
	p.stage(ctx, "execute", func(ctx context.Context) {
		run.Output = p.executor.Execute(ctx, run.Plan.Task)
	})
	p.stage(ctx, "verify", func(ctx context.Context) {
		run.Verdict = p.strategy.Verify(ctx, run.Output, run.Plan)
	})

	span.SetAttributes(
		attribute.Bool("verifyflow.plan_failed", run.Plan.Failed()),
		attribute.Bool("verifyflow.output_error", types.IsErrorOutput(run.Output)),
		attribute.Bool("verifyflow.verified", run.Verdict.Verified),
	)
	p.logger.Debug("pipeline run completed",
		zap.String("goal", string(goal)),
		zap.Bool("plan_failed", run.Plan.Failed()),
		zap.Bool("verified", run.Verdict.Verified))
	return run
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context)) {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	start := time.Now()
	fn(ctx)
	if p.stageTime != nil {
		p.stageTime.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("stage", name),
			attribute.String("strategy", string(p.strategy.Kind())),
		))
	}
	span.End()
}
