package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/BaSui01/verifyflow/agent"
	"github.com/BaSui01/verifyflow/agent/evaluation"
	"github.com/BaSui01/verifyflow/agent/report"
	"github.com/BaSui01/verifyflow/agent/verification"
	"github.com/BaSui01/verifyflow/types"
)

// =============================================================================
// 💬 ask 命令
// =============================================================================

// customGoal 是表单中“自定义目标”选项的值
const customGoal = "__custom__"

// goalPrompter 交互式地选择目标与策略，测试中可替换
var goalPrompter = promptGoal

func runAsk(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	goalFlag := fs.String("goal", "", "Goal to run")
	strategyFlag := fs.String("strategy", verification.KindVerifier.Label(), "Verification strategy")
	plain := fs.Bool("plain", false, "Print raw Markdown")
	width := fs.Int("width", 100, "Word wrap width")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, prefix, err := loadConfig(*configPath, nil)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	goal, strategyName := strings.TrimSpace(*goalFlag), *strategyFlag
	if goal == "" {
		goal, strategyName, err = goalPrompter(ctx, strategyName)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return 0
			}
			fmt.Fprintf(stderr, "FATAL: %v\n", err)
			return 1
		}
	}
	if goal == "" {
		fmt.Fprintln(stderr, "a goal is required")
		return 2
	}
	kind, err := verification.ParseKind(strategyName)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	// 凭证缺失时展示配置错误报告，不调用任何组件
	if err := cfg.CheckCredentials(); err != nil {
		logger.Warn("credential missing", zap.Error(err))
		return printReport(stdout, stderr, report.ConfigError(cfg.LLM.APIKeyEnvVars(prefix)...), *plain, *width)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}
	defer a.close()

	strategy, err := verification.New(kind, a.gateway, logger)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	opts := append(a.pipelineOptions(), agent.WithLogger(logger))
	pipeline := agent.NewPipeline(a.planner, a.executor, strategy, opts...)
	start := time.Now()
	run := pipeline.Run(ctx, types.Goal(goal))
	a.metrics.RecordRun(kind.BenchmarkName(), run.Verdict.Verified, time.Since(start))

	return printReport(stdout, stderr, report.Render(types.Goal(goal), kind.Label(), run), *plain, *width)
}

// printReport 输出 Markdown；终端渲染失败时回退为原文
func printReport(stdout, stderr io.Writer, markdown string, plain bool, width int) int {
	if plain {
		fmt.Fprintln(stdout, markdown)
		return 0
	}
	out, err := report.Terminal(markdown, width)
	if err != nil {
		fmt.Fprintf(stderr, "render failed, printing markdown: %v\n", err)
		fmt.Fprintln(stdout, markdown)
		return 0
	}
	fmt.Fprint(stdout, out)
	return 0
}

// promptGoal 展示演示目标、自定义输入与策略选择
func promptGoal(ctx context.Context, strategy string) (string, string, error) {
	if fi, err := os.Stdin.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return "", "", errors.New("no --goal given and stdin is not a terminal")
	}

	var choice, custom string
	goalOptions := make([]huh.Option[string], 0, len(evaluation.DemoGoals())+1)
	for _, g := range evaluation.DemoGoals() {
		goalOptions = append(goalOptions, huh.NewOption(string(g), string(g)))
	}
	goalOptions = append(goalOptions, huh.NewOption("Custom goal...", customGoal))

	strategyOptions := make([]huh.Option[string], 0, len(verification.Kinds()))
	for _, k := range verification.Kinds() {
		strategyOptions = append(strategyOptions, huh.NewOption(k.Label(), k.Label()))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose a goal").
				Options(goalOptions...).
				Value(&choice),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Enter your goal").
				Value(&custom).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("goal cannot be empty")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return choice != customGoal }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Verification strategy").
				Options(strategyOptions...).
				Value(&strategy),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return "", "", err
	}

	if choice == customGoal {
		return strings.TrimSpace(custom), strategy, nil
	}
	return choice, strategy, nil
}
