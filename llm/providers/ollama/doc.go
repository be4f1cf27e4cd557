/*
# 概述

包 ollama 对接本地 Ollama 服务的 OpenAI 兼容端点（/v1/chat/completions），
默认地址 http://localhost:11434，默认模型 phi，无需 API Key。

# 核心结构体

  - Provider — 嵌入 openaicompat.Provider
*/
package ollama
