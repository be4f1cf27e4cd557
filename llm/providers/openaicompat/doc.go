// Package openaicompat provides a shared base implementation for
// OpenAI-compatible chat completion endpoints.
//
// OpenAI and the local Ollama server both speak the Chat Completions format.
// Instead of duplicating HTTP handling, message conversion and error mapping,
// they embed openaicompat.Provider and only override what differs:
//
//   - Provider name and default model
//   - Base URL
//   - Custom headers (if any)
//
// Usage:
//
//	p := openaicompat.New(openaicompat.Config{
//	    ProviderName:  "ollama",
//	    BaseURL:       "http://localhost:11434",
//	    DefaultModel:  "phi",
//	    FallbackModel: "phi",
//	}, logger)
package openaicompat
