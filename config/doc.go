// Package config 提供 VerifyFlow 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → VERIFYFLOW_* 环境变量 的顺序加载，
// 进程启动时加载一次并注入各组件，之后只读。
// LLM API key 未配置时回退到 OPENAI_API_KEY / GEMINI_API_KEY。
package config
