package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/verifyflow/agent/evaluation"
	"github.com/BaSui01/verifyflow/config"
	"github.com/BaSui01/verifyflow/internal/database"
)

// =============================================================================
// 📊 bench 命令
// =============================================================================

func runBench(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	tasksFile := fs.String("tasks", "", "Benchmark task list (YAML)")
	output := fs.String("output", "", "CSV output path")
	sinkName := fs.String("sink", "", "Record sink: csv or database")
	strategies := fs.String("strategies", "", "Comma separated strategies")
	metricsFile := fs.String("metrics-file", "", "Prometheus textfile path")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, _, err := loadConfig(*configPath, func(cfg *config.Config) {
		if *tasksFile != "" {
			cfg.Benchmark.TasksFile = *tasksFile
		}
		if *output != "" {
			cfg.Benchmark.Output = *output
		}
		if *sinkName != "" {
			cfg.Benchmark.Sink = *sinkName
		}
		if *strategies != "" {
			cfg.Benchmark.Strategies = splitList(*strategies)
		}
		if *metricsFile != "" {
			cfg.Metrics.TextfilePath = *metricsFile
		}
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	// 凭证缺失时在任何模型调用与文件写入之前退出
	if err := cfg.CheckCredentials(); err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	tasks := evaluation.DefaultBenchmark()
	if cfg.Benchmark.TasksFile != "" {
		tasks, err = evaluation.LoadBenchmark(cfg.Benchmark.TasksFile)
		if err != nil {
			fmt.Fprintf(stderr, "FATAL: %v\n", err)
			return 1
		}
	}
	kinds, err := cfg.Benchmark.Kinds()
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	logger.Info("Starting VerifyFlow benchmark",
		zap.String("version", Version),
		zap.Int("tasks", len(tasks)),
		zap.Int("strategies", len(kinds)),
		zap.String("sink", cfg.Benchmark.Sink),
	)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}
	defer a.close()

	named, err := evaluation.StrategiesFor(kinds, a.gateway, logger)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	harness := evaluation.NewHarness(a.planner, a.executor, logger,
		evaluation.WithRunRecorder(a.metrics),
		evaluation.WithPipelineOptions(a.pipelineOptions()...),
	)

	sink, err := openSink(ctx, cfg, harness.BatchID(), logger)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Error("failed to close sink", zap.Error(err))
		}
	}()

	summary, err := harness.Run(ctx, tasks, named, sink)
	printSummary(stdout, cfg, summary)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}
	return 0
}

// openSink 按配置打开记录输出
func openSink(ctx context.Context, cfg *config.Config, batchID string, logger *zap.Logger) (evaluation.Sink, error) {
	switch cfg.Benchmark.Sink {
	case "database":
		db, err := database.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		sink, err := evaluation.NewDBSink(db, batchID, logger)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.Close()
			}
			return nil, err
		}
		return sink, nil
	default:
		sink, err := evaluation.CreateCSVSink(cfg.Benchmark.Output)
		if err != nil {
			return nil, err
		}
		return sink, nil
	}
}

func printSummary(w io.Writer, cfg *config.Config, s evaluation.Summary) {
	fmt.Fprintf(w, "Batch %s: %d records in %s\n", s.BatchID, s.Runs(), s.Duration.Round(time.Millisecond))
	if cfg.Benchmark.Sink == "csv" {
		fmt.Fprintf(w, "Results written to %s\n", cfg.Benchmark.Output)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tRUNS\tVERIFIED\tPASS RATE")
	for _, st := range s.Strategies {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.0f%%\n", st.Name, st.Runs, st.Verified, st.PassRate()*100)
	}
	tw.Flush()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
