/*
# 概述

包 providers 是各模型服务商实现的公共基础层：OpenAI 兼容的请求/响应结构、
HTTP 错误映射与模型选择。具体实现位于子包 openaicompat、openai、ollama、gemini。

# 核心函数

  - MapHTTPError — 将 HTTP 状态码映射为语义化的 llm.Error（401/403/404/429/5xx）
  - ReadErrorMessage — 解析 OpenAI 与 Ollama 两种错误响应体
  - ConvertMessagesToOpenAI / ConvertResponseFormat — 请求转换
  - ToLLMChatResponse — OpenAI 兼容响应到 llm.ChatResponse 的转换
  - ChooseModel — 按优先级选择模型（请求 > 默认 > 兜底）
*/
package providers
