/*
Package main 提供 VerifyFlow 命令行入口。

# 概述

cmd/verifyflow 装配模型网关、DuckDuckGo 搜索网关、Planner 与 Executor，
并提供两个子命令：

  - bench：按任务 ID 顺序对每个任务依次运行所选策略，每次运行结束立即
    写入 CSV 或数据库，最后打印各策略的通过数
  - ask：对单个目标运行一种策略，输出 Markdown 报告（默认经 glamour
    渲染）；未给出 --goal 时通过 huh 表单选择演示目标或输入自定义目标

bench 被中断（Ctrl-C / SIGTERM）时保留已写入的记录，不写入被打断的
运行，并以退出码 1 结束。缺少 API key 时 bench 在任何调用之前以退出码 1 结束；ask 则打印配置错误
报告并正常退出。

# 可观测性

日志使用 zap；模型调用、搜索与运行计数写入私有 Prometheus registry，
可通过 --metrics-file 导出为 textfile；启用 telemetry 时流水线各阶段
产生 OTel span 与耗时直方图。

# 构建注入

Version、BuildTime、GitCommit 通过 ldflags 设置。
*/
package main
