package ollama

import (
	"github.com/BaSui01/verifyflow/llm/providers"
	"github.com/BaSui01/verifyflow/llm/providers/openaicompat"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "phi"
)

// Provider 实现本地 Ollama LLM 提供者.
type Provider struct {
	*openaicompat.Provider
}

// NewProvider 创建 Ollama 提供者。APIKey 为空时不发送 Authorization 头.
func NewProvider(cfg providers.OllamaConfig, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Provider{
		Provider: openaicompat.New(openaicompat.Config{
			ProviderName:  "ollama",
			APIKey:        cfg.APIKey,
			BaseURL:       cfg.BaseURL,
			DefaultModel:  cfg.Model,
			FallbackModel: DefaultModel,
			Timeout:       cfg.Timeout,
		}, logger),
	}
}
