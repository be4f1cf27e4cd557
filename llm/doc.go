// 版权所有 2024 VerifyFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 llm 提供统一的大语言模型接入层：Provider 抽象与面向流水线的
JSON 网关 [Gateway]。

# 概述

各阶段（Planner、Verifier、Self-Verifier）只通过 [Gateway.Invoke] 访问模型。
网关固定使用 JSON 输出模式，把响应解析为单个 JSON 对象，并将所有失败
归类为四种类型后以值的形式返回 [Result]，不做重试、不做缓存：

  - types.ErrAuthentication    凭证无效或过期
  - types.ErrModelUnavailable  模型标识不被识别
  - types.ErrMalformedResponse 响应不是合法 JSON 对象
  - types.ErrTransport         其它网络/后端错误

# Provider 抽象

[Provider] 只包含 Completion 与 Name。具体实现位于 llm/providers 下
（openaicompat、openai、ollama、gemini），由 llm/factory 按配置创建。
*/
package llm
