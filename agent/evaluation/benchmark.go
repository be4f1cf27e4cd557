package evaluation

import (
	"fmt"
	"os"
	"strings"

	"github.com/BaSui01/verifyflow/types"
	"gopkg.in/yaml.v3"
)

// defaultGoals 基准任务，按 ID 顺序排列
var defaultGoals = []types.Goal{
	"What is the boiling point of water at sea level in Celsius?",
	"Who is the current CEO of Microsoft?",
	"What year did the first moon landing occur?",
	"Find the main ingredient in a traditional Japanese Miso soup.",
	"What is the capital city of Australia?",
	"What is the population of the underwater city of Atlantis?",
	"Find the official website for the Stark Industries corporation from the Iron Man movies.",
	"What is the chemical formula for Kryptonite?",
	"Who is the king of the United States?",
	"How many dragons are there in the wild in Germany?",
	"What is the weather like?",
	"Find a good recipe.",
	"How tall is the president?",
	"Is it a holiday today?",
	"What is the latest news?",
	"What was the score of the 1955 Super Bowl?",
	"Did Thomas Edison invent the light bulb?",
	"Is water a good conductor of electricity?",
	"What is the currency used in Switzerland?",
	"Find the text of the 'Gettysburg Address' written by George Washington.",
}

// demoTaskIDs 交互模式下可直接选择的示例任务
var demoTaskIDs = []int{1, 2, 16, 7, 20}

// DefaultBenchmark returns the built-in 20-task benchmark.
func DefaultBenchmark() []types.BenchmarkTask {
	tasks := make([]types.BenchmarkTask, len(defaultGoals))
	for i, g := range defaultGoals {
		tasks[i] = types.BenchmarkTask{ID: i + 1, Goal: g}
	}
	return tasks
}

// DemoGoals returns the example goals offered by the interactive mode.
func DemoGoals() []types.Goal {
	goals := make([]types.Goal, len(demoTaskIDs))
	for i, id := range demoTaskIDs {
		goals[i] = defaultGoals[id-1]
	}
	return goals
}

// LoadBenchmark reads a YAML list of {id, goal} entries.
func LoadBenchmark(path string) ([]types.BenchmarkTask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark file: %w", err)
	}
	return ParseBenchmark(data)
}

// ParseBenchmark decodes and validates benchmark YAML.
func ParseBenchmark(data []byte) ([]types.BenchmarkTask, error) {
	var tasks []types.BenchmarkTask
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark file: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("benchmark file contains no tasks")
	}

	seen := make(map[int]struct{}, len(tasks))
	for i, t := range tasks {
		if t.ID <= 0 {
			return nil, fmt.Errorf("task %d: id must be positive, got %d", i, t.ID)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("task %d: duplicate id %d", i, t.ID)
		}
		seen[t.ID] = struct{}{}
		if strings.TrimSpace(string(t.Goal)) == "" {
			return nil, fmt.Errorf("task %d: goal is required", t.ID)
		}
	}
	return tasks, nil
}
