// Package report renders one pipeline run as Markdown for the interactive
// mode, and optionally styles it for a terminal.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BaSui01/verifyflow/agent"
	"github.com/BaSui01/verifyflow/types"
	"github.com/charmbracelet/glamour"
)

const sectionRule = "\n\n---\n\n"

// Render formats run as Markdown: planner, executor and verdict sections.
// A failed plan gets an explicit "Planner Agent Failed" section instead of
// the planner output.
func Render(goal types.Goal, strategyLabel string, run agent.Run) string {
	sections := []string{
		fmt.Sprintf("## 🎯 Goal\n%s", quote(string(goal))),
		plannerSection(run.Plan),
		executorSection(run.Output),
		verdictSection(strategyLabel, run.Verdict),
	}
	return strings.Join(sections, sectionRule)
}

// ConfigError is shown instead of running the pipeline when the
// language-model credential is missing.
func ConfigError(envVars ...string) string {
	var b strings.Builder
	b.WriteString("### ❌ ERROR\n")
	b.WriteString("The language-model API key is not configured. ")
	switch len(envVars) {
	case 0:
		b.WriteString("Set it in the configuration file to run the demo.")
	default:
		names := make([]string, len(envVars))
		for i, v := range envVars {
			names[i] = "`" + v + "`"
		}
		b.WriteString("Set ")
		b.WriteString(strings.Join(names, " or "))
		b.WriteString(" to run the demo.")
	}
	return b.String()
}

func plannerSection(plan types.Plan) string {
	if plan.Failed() {
		return fmt.Sprintf("### ❌ Planner Agent Failed\n```json\n%s\n```", indentJSON(plan))
	}
	return fmt.Sprintf("### 📝 Planner Agent Output\n**Task:** `%s`\n\n**Checklist:**\n```json\n%s\n```",
		plan.Task, indentJSON(checklist(plan)))
}

func executorSection(output string) string {
	var b strings.Builder
	b.WriteString("### 🛠️ Executor Agent Output\n")
	if types.IsErrorOutput(output) {
		b.WriteString("*The agent could not complete the task:*\n\n")
	} else {
		b.WriteString("*The agent searched the web and found the following raw text:*\n\n")
	}
	b.WriteString(quote(output))
	return b.String()
}

func verdictSection(label string, v types.Verdict) string {
	status := "❌ FAILURE"
	if v.Verified {
		status = "✅ SUCCESS"
	}
	return fmt.Sprintf("### ⚖️ Final Verdict (%s)\n**System Reported:** %s\n\n**Reasoning:**\n%s",
		label, status, quote(v.Reasoning))
}

func checklist(plan types.Plan) []string {
	if plan.Checklist == nil {
		return []string{}
	}
	return plan.Checklist
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// quote 把文本转成 Markdown 引用块，逐行加前缀
func quote(s string) string {
	if s == "" {
		return "> "
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

// Terminal styles Markdown for a terminal of the given width using the
// auto-detected (dark/light) style.
func Terminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	return r.Render(markdown)
}
