package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/verifyflow/agent"
	"github.com/BaSui01/verifyflow/config"
	"github.com/BaSui01/verifyflow/internal/metrics"
	"github.com/BaSui01/verifyflow/internal/telemetry"
	"github.com/BaSui01/verifyflow/llm"
	"github.com/BaSui01/verifyflow/llm/factory"
	"github.com/BaSui01/verifyflow/tools/websearch"
)

// =============================================================================
// 🧩 组件装配
// =============================================================================

const metricsNamespace = "verifyflow"

// app 持有一次命令执行所需的全部组件
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *metrics.Collector
	telemetry *telemetry.Providers
	gateway   *llm.Gateway
	search    *websearch.Gateway
	planner   *agent.Planner
	executor  *agent.Executor
}

// newApp 按配置装配模型网关、搜索网关与两个智能体
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	collector := metrics.NewCollector(metricsNamespace, logger)

	otelProviders, err := telemetry.Init(ctx, cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	model := cfg.LLM.Model
	if model == "" {
		model = factory.DefaultModel(cfg.LLM.Provider)
	}

	provider, err := factory.NewProviderFromConfig(ctx, cfg.LLM.Provider, factory.ProviderConfig{
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		Model:        model,
		Timeout:      cfg.LLM.Timeout,
		Organization: cfg.LLM.Organization,
	}, logger)
	if err != nil {
		shutdownTelemetry(otelProviders, logger)
		return nil, fmt.Errorf("create llm provider: %w", err)
	}

	gateway := llm.NewGateway(provider, llm.GatewayConfig{
		Model:       model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger, llm.WithCallRecorder(collector))

	ddg := websearch.NewDuckDuckGo(websearch.DuckDuckGoConfig{
		BaseURL: cfg.Search.BaseURL,
		Timeout: cfg.Search.Timeout,
	}, logger)
	search := websearch.NewGateway(ddg, websearch.GatewayConfig{
		Region:    cfg.Search.Region,
		Timeout:   cfg.Search.Timeout,
		RateLimit: rate.Limit(cfg.Search.RateLimit),
	}, logger, websearch.WithSearchRecorder(collector))

	logger.Info("components ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", model),
		zap.String("search", ddg.Name()),
		zap.Bool("telemetry", otelProviders.Enabled()),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   collector,
		telemetry: otelProviders,
		gateway:   gateway,
		search:    search,
		planner:   agent.NewPlanner(gateway, logger),
		executor:  agent.NewExecutor(search, logger),
	}, nil
}

// pipelineOptions 返回挂接遥测的流水线选项
func (a *app) pipelineOptions() []agent.PipelineOption {
	return []agent.PipelineOption{
		agent.WithTracer(a.telemetry.Tracer(agent.InstrumentationName)),
		agent.WithMeter(a.telemetry.Meter(agent.InstrumentationName)),
	}
}

// close 写出指标文件并关闭遥测
func (a *app) close() {
	if path := a.cfg.Metrics.TextfilePath; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.logger.Error("failed to write metrics textfile", zap.String("path", path), zap.Error(err))
		} else {
			a.logger.Info("metrics written", zap.String("path", path))
		}
	}
	shutdownTelemetry(a.telemetry, a.logger)
}

func shutdownTelemetry(p *telemetry.Providers, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		logger.Warn("telemetry shutdown failed", zap.Error(err))
	}
}
