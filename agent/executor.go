package agent

import (
	"context"

	"github.com/BaSui01/verifyflow/tools/websearch"
	"github.com/BaSui01/verifyflow/types"
	"go.uber.org/zap"
)

// Executor 的固定输出
var (
	OutputPlannerFailed = types.ErrorOutput("Executor received a failed task from the planner.")
	OutputNoResults     = types.ErrorOutput("No search results found.")
)

// Searcher 是 Executor 依赖的搜索接口
type Searcher interface {
	Search(ctx context.Context, query string, limit int) websearch.SearchResult
}

// Executor 通过一次网页搜索完成任务，不调用语言模型。
// 所有失败都折叠为带错误标记的字符串。
type Executor struct {
	search Searcher
	logger *zap.Logger
}

// NewExecutor 创建 Executor
func NewExecutor(search Searcher, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		search: search,
		logger: logger.With(zap.String("component", "executor")),
	}
}

// Execute 返回检索到的内容或错误标记字符串
func (e *Executor) Execute(ctx context.Context, task string) string {
	if task == types.PlannerFailedTask {
		e.logger.Info("skipping search for failed plan")
		return OutputPlannerFailed
	}

	res := e.search.Search(ctx, task, 1)
	switch res.Status {
	case websearch.StatusFound:
		return res.Snippet
	case websearch.StatusNoResult:
		return OutputNoResults
	default:
		reason := "unknown error"
		if res.Err != nil {
			reason = res.Err.Error()
		}
		e.logger.Warn("search failed", zap.String("task", task), zap.String("reason", reason))
		return types.ErrorOutput("search failed: " + reason)
	}
}
