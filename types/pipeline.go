package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Goal is a free-text objective handed to the planner.
type Goal string

// PlannerFailedTask is the task value of the sentinel plan produced when
// planning fails. Downstream stages check for it instead of error values.
const PlannerFailedTask = "PLANNER_AGENT_FAILED"

// ErrorMarker prefixes every execution result that represents a failure.
// Search backends must never return snippets starting with it.
const ErrorMarker = "Error:"

// Plan is the planner's decomposition of a goal.
type Plan struct {
	Task      string   `json:"task"`
	Checklist []string `json:"checklist"`
}

// FailedPlan returns the sentinel plan.
func FailedPlan() Plan {
	return Plan{Task: PlannerFailedTask, Checklist: []string{}}
}

// Failed reports whether p is the sentinel plan.
func (p Plan) Failed() bool {
	return p.Task == PlannerFailedTask
}

// ChecklistJSON serialises the checklist as a JSON array. A nil checklist is
// written as "[]".
func (p Plan) ChecklistJSON() string {
	items := p.Checklist
	if items == nil {
		items = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return "[]"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// IsErrorOutput reports whether an execution result is error-marked.
// Only a prefix counts; the marker appearing mid-string does not.
func IsErrorOutput(output string) bool {
	return strings.HasPrefix(output, ErrorMarker)
}

// ErrorOutput builds an error-marked execution result.
func ErrorOutput(msg string) string {
	return ErrorMarker + " " + msg
}

// Verdict is the final judgment for one run.
type Verdict struct {
	Verified  bool   `json:"verified"`
	Reasoning string `json:"reasoning"`
}

// BenchmarkTask is one entry of the evaluation benchmark.
type BenchmarkTask struct {
	ID   int  `json:"id" yaml:"id"`
	Goal Goal `json:"goal" yaml:"goal"`
}

// EvaluationRecord is one row of the result table: a single
// (benchmark task, strategy) run.
type EvaluationRecord struct {
	TaskID           int    `json:"task_id" gorm:"column:task_id;index"`
	Goal             string `json:"goal" gorm:"column:goal"`
	Strategy         string `json:"system_type" gorm:"column:system_type;index"`
	PlannerTask      string `json:"planner_task" gorm:"column:planner_task"`
	PlannerChecklist string `json:"planner_checklist" gorm:"column:planner_checklist"`
	ExecutorOutput   string `json:"executor_output" gorm:"column:executor_output"`
	Verified         bool   `json:"system_reported_success" gorm:"column:system_reported_success"`
	Reasoning        string `json:"verifier_reasoning" gorm:"column:verifier_reasoning"`
}

// recordHeader is the fixed column order of the result table.
var recordHeader = []string{
	"task_id",
	"goal",
	"system_type",
	"planner_task",
	"planner_checklist",
	"executor_output",
	"system_reported_success",
	"verifier_reasoning",
}

// RecordHeader returns the column names in table order.
func RecordHeader() []string {
	out := make([]string, len(recordHeader))
	copy(out, recordHeader)
	return out
}

// NewEvaluationRecord assembles the record for one run.
func NewEvaluationRecord(task BenchmarkTask, strategy string, plan Plan, output string, verdict Verdict) EvaluationRecord {
	return EvaluationRecord{
		TaskID:           task.ID,
		Goal:             string(task.Goal),
		Strategy:         strategy,
		PlannerTask:      plan.Task,
		PlannerChecklist: plan.ChecklistJSON(),
		ExecutorOutput:   output,
		Verified:         verdict.Verified,
		Reasoning:        verdict.Reasoning,
	}
}

// Row returns the record's fields in RecordHeader order.
func (r EvaluationRecord) Row() []string {
	return []string{
		strconv.Itoa(r.TaskID),
		r.Goal,
		r.Strategy,
		r.PlannerTask,
		r.PlannerChecklist,
		r.ExecutorOutput,
		strconv.FormatBool(r.Verified),
		r.Reasoning,
	}
}
