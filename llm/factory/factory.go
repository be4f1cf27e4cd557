// Package factory provides a centralized factory for creating LLM Provider
// instances by name. It imports the provider sub-packages and maps string
// names to their constructors, breaking the import cycle that would occur
// if this logic lived in the llm package directly.
package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/BaSui01/verifyflow/llm"
	"github.com/BaSui01/verifyflow/llm/providers"
	"github.com/BaSui01/verifyflow/llm/providers/gemini"
	"github.com/BaSui01/verifyflow/llm/providers/ollama"
	"github.com/BaSui01/verifyflow/llm/providers/openai"
	"github.com/BaSui01/verifyflow/llm/providers/openaicompat"
	"go.uber.org/zap"
)

// ProviderConfig is the generic configuration accepted by the factory function.
type ProviderConfig struct {
	APIKey       string        `json:"api_key" yaml:"api_key"`
	BaseURL      string        `json:"base_url" yaml:"base_url"`
	Model        string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout      time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Organization string        `json:"organization,omitempty" yaml:"organization,omitempty"`
}

// NewProviderFromConfig creates a Provider instance based on the provider name
// and a generic ProviderConfig.
//
// Supported names: openai, ollama, gemini. Any other name with a base_url is
// treated as a generic OpenAI-compatible endpoint.
func NewProviderFromConfig(ctx context.Context, name string, cfg ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := providers.BaseProviderConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}

	switch name {
	case "openai", "":
		return openai.NewOpenAIProvider(providers.OpenAIConfig{
			BaseProviderConfig: base,
			Organization:       cfg.Organization,
		}, logger), nil

	case "ollama", "phi":
		return ollama.NewProvider(providers.OllamaConfig{BaseProviderConfig: base}, logger), nil

	case "gemini":
		p, err := gemini.NewGeminiProvider(ctx, providers.GeminiConfig{BaseProviderConfig: base}, logger)
		if err != nil {
			return nil, err
		}
		return p, nil

	default:
		// 通用 OpenAI 兼容提供商：任意名称 + base_url 即可接入
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("unknown provider %q: built-in provider not found, and base_url is required for generic OpenAI-compatible provider", name)
		}
		logger.Info("creating generic OpenAI-compatible provider",
			zap.String("provider", name),
			zap.String("base_url", cfg.BaseURL))
		return openaicompat.New(openaicompat.Config{
			ProviderName: name,
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
			Timeout:      cfg.Timeout,
		}, logger), nil
	}
}

// SupportedProviders returns the list of built-in provider names.
func SupportedProviders() []string {
	return []string{"openai", "ollama", "gemini"}
}

// DefaultModel returns the model a built-in provider uses when none is
// configured, or "" for generic endpoints.
func DefaultModel(name string) string {
	switch name {
	case "openai", "":
		return openai.DefaultModel
	case "ollama", "phi":
		return ollama.DefaultModel
	case "gemini":
		return gemini.DefaultModel
	default:
		return ""
	}
}

// RequiresAPIKey reports whether the named provider needs a credential.
func RequiresAPIKey(name string) bool {
	switch name {
	case "ollama", "phi":
		return false
	default:
		return true
	}
}
