// =============================================================================
// VerifyFlow 主入口
// =============================================================================
// 验证者智能体评估工具：批量基准评估与单目标交互演示
//
// 使用方法:
//
//	verifyflow bench                          # 运行 20 个基准任务 × 3 种策略
//	verifyflow bench --config config.yaml     # 指定配置文件
//	verifyflow bench --sink database          # 结果写入数据库
//	verifyflow ask --goal "..."               # 单目标演示
//	verifyflow ask                            # 交互式选择目标与策略
//	verifyflow version                        # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/verifyflow/config"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run 分发子命令并返回进程退出码
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "bench":
		return runBench(ctx, args[1:], stdout, stderr)
	case "ask":
		return runAsk(ctx, args[1:], stdout, stderr)
	case "version":
		printVersion(stdout)
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "VerifyFlow %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `VerifyFlow - Verifier Agent Evaluation

Usage:
  verifyflow <command> [options]

Commands:
  bench     Run the benchmark across all verification strategies
  ask       Run one goal through a single strategy and print a report
  version   Show version information
  help      Show this help message

Options for 'bench':
  --config <path>        Path to configuration file (YAML)
  --tasks <path>         Benchmark task list (YAML), defaults to the built-in 20 tasks
  --sink <csv|database>  Where evaluation records are written
  --output <path>        CSV output path
  --strategies <list>    Comma separated strategies, e.g. verifier,no_verifier
  --metrics-file <path>  Write Prometheus metrics to a textfile when done

Options for 'ask':
  --config <path>        Path to configuration file (YAML)
  --goal <text>          Goal to run; prompts interactively when omitted
  --strategy <name>      Verification strategy (default "Verifier System")
  --plain                Print raw Markdown instead of terminal rendering
  --width <n>            Word wrap width for terminal rendering

Environment:
  VERIFYFLOW_LLM_API_KEY (or OPENAI_API_KEY / GEMINI_API_KEY / GOOGLE_API_KEY)
  VERIFYFLOW_LLM_PROVIDER, VERIFYFLOW_LLM_MODEL, VERIFYFLOW_LLM_BASE_URL

Examples:
  verifyflow bench
  verifyflow bench --output results.csv --strategies verifier
  verifyflow bench --sink database --config /etc/verifyflow/config.yaml
  verifyflow ask --goal "What is the capital city of Australia?"
  verifyflow version`)
}

// =============================================================================
// ⚙️ 配置加载
// =============================================================================

// loadConfig 加载配置，应用命令行覆盖后再校验
func loadConfig(path string, overrides func(*config.Config)) (*config.Config, string, error) {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	if overrides != nil {
		overrides(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loader.EnvPrefix(), nil
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	// 解析日志级别
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	// 配置编码器
	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Format == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
