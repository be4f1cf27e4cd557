// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/BaSui01/verifyflow/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器，所有指标注册在私有 Registry 上
type Collector struct {
	registry *prometheus.Registry

	// LLM 指标
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec

	// 搜索指标
	searchRequestsTotal   *prometheus.CounterVec
	searchRequestDuration *prometheus.HistogramVec

	// 评估运行指标
	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	// LLM 指标
	c.llmRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM gateway invocations",
		},
		[]string{"provider", "model", "status"},
	)

	c.llmRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	// 搜索指标
	c.searchRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of web searches",
		},
		[]string{"provider", "status"},
	)

	c.searchRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_request_duration_seconds",
			Help:      "Web search duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// 评估运行指标
	c.runsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by strategy and reported outcome",
		},
		[]string{"strategy", "verified"},
	)

	c.runDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "End-to-end pipeline run duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"strategy"},
	)

	return c
}

// =============================================================================
// 📝 记录方法
// =============================================================================

// RecordLLMCall 记录一次网关调用；成功时 status 为 ok，否则为错误码
func (c *Collector) RecordLLMCall(provider, model string, code types.ErrorCode, duration time.Duration) {
	status := "ok"
	if code != "" {
		status = string(code)
	}
	c.llmRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordSearch 记录一次搜索
func (c *Collector) RecordSearch(provider, status string, duration time.Duration) {
	c.searchRequestsTotal.WithLabelValues(provider, status).Inc()
	c.searchRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordRun 记录一次完整运行
func (c *Collector) RecordRun(strategy string, verified bool, duration time.Duration) {
	c.runsTotal.WithLabelValues(strategy, strconv.FormatBool(verified)).Inc()
	c.runDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// =============================================================================
// 📤 导出
// =============================================================================

// Registry 返回私有 Registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile 以 node_exporter textfile 格式写出全部指标
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	c.logger.Info("metrics written", zap.String("path", path))
	return nil
}
