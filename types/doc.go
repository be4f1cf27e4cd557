// Copyright (c) VerifyFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 VerifyFlow 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 llm、agent、evaluation
等上层模块提供统一的数据契约：

  - Goal / Plan / Verdict — 单次流水线运行的三段数据
  - PlannerFailedTask     — 规划失败哨兵值，沿流水线确定性传播
  - ErrorMarker           — 执行结果的错误前缀约定
  - BenchmarkTask         — 基准任务（id + goal）
  - EvaluationRecord      — 评估结果表中的一行
  - Error / ErrorCode     — 结构化错误体系
*/
package types
