package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Factory Tests
// =============================================================================

func TestNewProviderFromConfig_AllProviders(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name         string
		providerName string
		cfg          ProviderConfig
		wantName     string
	}{
		{"openai", "openai", ProviderConfig{APIKey: "sk-test"}, "openai"},
		{"empty defaults to openai", "", ProviderConfig{APIKey: "sk-test"}, "openai"},
		{"ollama", "ollama", ProviderConfig{}, "ollama"},
		{"phi alias", "phi", ProviderConfig{}, "ollama"},
		{"gemini", "gemini", ProviderConfig{APIKey: "test-key"}, "gemini"},
		{"generic compat", "vllm", ProviderConfig{BaseURL: "http://localhost:8000"}, "vllm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProviderFromConfig(context.Background(), tt.providerName, tt.cfg, logger)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestNewProviderFromConfig_Errors(t *testing.T) {
	_, err := NewProviderFromConfig(context.Background(), "unknown", ProviderConfig{}, nil)
	assert.Error(t, err)

	_, err = NewProviderFromConfig(context.Background(), "gemini", ProviderConfig{}, nil)
	assert.Error(t, err, "gemini needs an API key")
}

func TestRequiresAPIKey(t *testing.T) {
	assert.True(t, RequiresAPIKey("openai"))
	assert.True(t, RequiresAPIKey("gemini"))
	assert.False(t, RequiresAPIKey("ollama"))
	assert.ElementsMatch(t, []string{"openai", "ollama", "gemini"}, SupportedProviders())
}

func TestDefaultModel(t *testing.T) {
	assert.Equal(t, "gpt-4o", DefaultModel("openai"))
	assert.Equal(t, "gpt-4o", DefaultModel(""))
	assert.Equal(t, "phi", DefaultModel("ollama"))
	assert.Equal(t, "gemini-2.5-flash", DefaultModel("gemini"))
	assert.Empty(t, DefaultModel("together"))
}
