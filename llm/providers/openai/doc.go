/*
# 概述

包 openai 提供 OpenAI 模型的 Provider 适配实现，基于 openaicompat
的 Chat Completions 调用，默认模型 gpt-4o。

# 核心结构体

  - OpenAIProvider — 嵌入 openaicompat.Provider，附加 Organization header

# 支持能力

  - Chat Completions（/v1/chat/completions，JSON 输出模式）
  - Organization header 支持
*/
package openai
