/*
# 概述

包 gemini 通过官方 google.golang.org/genai SDK 对接 Google Gemini
（generateContent），把 llm.ChatRequest 转换为 SDK 调用：system 消息
进入 SystemInstruction，JSON 模式映射为 ResponseMIMEType=application/json。

# 核心结构体

  - GeminiProvider — 持有 *genai.Client，默认模型 gemini-2.5-flash

# 错误映射

SDK 返回的 genai.APIError 按 HTTP 状态码交给 providers.MapHTTPError；
Gemini 对无效 API Key 返回 400 INVALID_ARGUMENT，此处单独识别为未授权。
*/
package gemini
