// Copyright (c) VerifyFlow Authors.
// Use of this source code is governed by the project license.

/*
Package testutil 提供 VerifyFlow 测试的共享工具和辅助函数。

# 概述

testutil 包为各包的单元测试提供统一的辅助能力，避免各包重复实现
相似的测试基础设施。

# 核心能力

  - 上下文辅助: TestContext，自动注册 Cleanup 防止泄漏
  - 断言工具: AssertJSONEqual / AssertErrorOutput

# 子包

  - testutil/mocks: MockProvider（LLM Provider，可按 system 指令路由响应）、
    MockSearchProvider（搜索后端，记录会话开关）、RecordingSink（内存结果表）
  - testutil/fixtures: Planner / Verifier JSON 响应与样例评估记录

# 使用示例

	ctx := testutil.TestContext(t)
	provider := mocks.NewMockProvider().
		OnSystem(agent.PlannerSystemPrompt, fixtures.PlanJSON("task", "check"))
	gw := llm.NewGateway(provider, llm.GatewayConfig{Model: "gpt-4o"}, nil)
*/
package testutil
