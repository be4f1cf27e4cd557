package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- DefaultConfig aggregate ---

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.NotEqual(t, LLMConfig{}, cfg.LLM)
	assert.NotEqual(t, SearchConfig{}, cfg.Search)
	assert.NotEqual(t, DatabaseConfig{}, cfg.Database)
	assert.NotEqual(t, LogConfig{}, cfg.Log)
	assert.NotEqual(t, TelemetryConfig{}, cfg.Telemetry)
	assert.Equal(t, "csv", cfg.Benchmark.Sink)
	assert.Empty(t, cfg.Metrics.TextfilePath)
}

func TestDefaultConfig_IsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

// --- Individual Default*Config functions ---

func TestDefaultLLMConfig(t *testing.T) {
	cfg := DefaultLLMConfig()
	assert.Equal(t, "openai", cfg.Provider)
	assert.Empty(t, cfg.Model, "provider default model applies")
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Empty(t, cfg.APIKey)
	assert.Zero(t, cfg.Temperature)
}

func TestDefaultSearchConfig(t *testing.T) {
	cfg := DefaultSearchConfig()
	assert.Equal(t, "duckduckgo", cfg.Backend)
	assert.Equal(t, "wt-wt", cfg.Region)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.InDelta(t, 1.0, cfg.RateLimit, 1e-9)
}

func TestDefaultBenchmarkConfig(t *testing.T) {
	cfg := DefaultBenchmarkConfig()
	assert.Equal(t, "evaluation_results.csv", cfg.Output)
	assert.Empty(t, cfg.TasksFile)
	assert.Empty(t, cfg.Strategies)
}

func TestDefaultDatabaseConfig(t *testing.T) {
	cfg := DefaultDatabaseConfig()
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "verifyflow.db", cfg.Name)
	assert.Equal(t, "verifyflow.db", cfg.DSN())
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
}

func TestDefaultTelemetryConfig(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "verifyflow", cfg.ServiceName)
	assert.InDelta(t, 1.0, cfg.SampleRate, 1e-9)
}
