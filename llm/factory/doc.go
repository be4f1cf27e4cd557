// Package factory 按配置中的名称创建 LLM Provider（openai、ollama、gemini
// 或任意 OpenAI 兼容端点），并给出各 Provider 的默认模型与凭证要求。
package factory
