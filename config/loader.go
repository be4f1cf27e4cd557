// =============================================================================
// 📦 VerifyFlow 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("verifyflow.yaml").
//	    WithEnvPrefix("VERIFYFLOW").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量 → 凭证回退变量
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BaSui01/verifyflow/agent/verification"
	"github.com/BaSui01/verifyflow/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 VerifyFlow 的完整配置结构，进程启动时加载一次，之后只读
type Config struct {
	// LLM 语言模型网关配置
	LLM LLMConfig `yaml:"llm" env:"LLM"`

	// Search 搜索网关配置
	Search SearchConfig `yaml:"search" env:"SEARCH"`

	// Benchmark 批量评估配置
	Benchmark BenchmarkConfig `yaml:"benchmark" env:"BENCHMARK"`

	// Database 结果数据库配置（sink = database 时使用）
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`

	// Metrics 指标导出配置
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
}

// LLMConfig 语言模型配置
type LLMConfig struct {
	// Provider: openai, ollama, gemini，或任意 OpenAI 兼容名称（需 base_url）
	Provider string `yaml:"provider" env:"PROVIDER"`
	// API Key
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 基础 URL（可选）
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 模型名称，为空时使用 Provider 默认模型
	Model string `yaml:"model" env:"MODEL"`
	// OpenAI 组织 ID（可选）
	Organization string `yaml:"organization" env:"ORGANIZATION"`
	// 温度参数，0 表示使用后端默认值
	Temperature float32 `yaml:"temperature" env:"TEMPERATURE"`
	// 最大 Token 数，0 表示不限制
	MaxTokens int `yaml:"max_tokens" env:"MAX_TOKENS"`
	// 单次调用超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// SearchConfig 搜索配置
type SearchConfig struct {
	// 后端，目前仅支持 duckduckgo
	Backend string `yaml:"backend" env:"BACKEND"`
	// 后端地址覆盖（可选）
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 区域
	Region string `yaml:"region" env:"REGION"`
	// 单次搜索超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 每秒查询数，0 表示不限流
	RateLimit float64 `yaml:"rate_limit" env:"RATE_LIMIT"`
}

// BenchmarkConfig 批量评估配置
type BenchmarkConfig struct {
	// 任务文件（YAML），为空时使用内置 20 个任务
	TasksFile string `yaml:"tasks_file" env:"TASKS_FILE"`
	// 结果输出: csv 或 database
	Sink string `yaml:"sink" env:"SINK"`
	// CSV 输出路径
	Output string `yaml:"output" env:"OUTPUT"`
	// 参与评估的策略，为空时使用全部三种
	Strategies []string `yaml:"strategies" env:"STRATEGIES"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 驱动类型: postgres, mysql, sqlite
	Driver string `yaml:"driver" env:"DRIVER"`
	// 主机
	Host string `yaml:"host" env:"HOST"`
	// 端口
	Port int `yaml:"port" env:"PORT"`
	// 用户名
	User string `yaml:"user" env:"USER"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库名（sqlite 时为文件路径）
	Name string `yaml:"name" env:"NAME"`
	// SSL 模式
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
	// 最大连接数
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	// 最大空闲连接
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	// 连接最大生命周期
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	// 运行结束后写入的 textfile 路径，为空时不写
	TextfilePath string `yaml:"textfile_path" env:"TEXTFILE_PATH"`
}

// =============================================================================
// 🔑 凭证
// =============================================================================

// RequiresAPIKey reports whether the configured provider needs a credential.
// Local Ollama models do not.
func (c LLMConfig) RequiresAPIKey() bool {
	switch strings.ToLower(c.Provider) {
	case "ollama", "phi":
		return false
	default:
		return true
	}
}

// APIKeyEnvVars lists the environment variables consulted for the API key,
// in priority order.
func (c LLMConfig) APIKeyEnvVars(prefix string) []string {
	vars := []string{prefix + "_LLM_API_KEY"}
	switch strings.ToLower(c.Provider) {
	case "openai", "":
		vars = append(vars, "OPENAI_API_KEY")
	case "gemini":
		vars = append(vars, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
	return vars
}

// CheckCredentials returns a MISSING_CREDENTIAL error when the provider
// needs an API key and none is configured.
func (c *Config) CheckCredentials() error {
	if c.LLM.RequiresAPIKey() && strings.TrimSpace(c.LLM.APIKey) == "" {
		return types.NewError(types.ErrMissingCredential,
			fmt.Sprintf("API key for provider %q is not configured", c.LLM.Provider)).
			WithProvider(c.LLM.Provider)
	}
	return nil
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "VERIFYFLOW",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// EnvPrefix 返回环境变量前缀
func (l *Loader) EnvPrefix() string { return l.envPrefix }

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量 → 凭证回退变量
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// API key 未配置时依次尝试后端惯用的环境变量
	if cfg.LLM.APIKey == "" {
		for _, name := range cfg.LLM.APIKeyEnvVars(l.envPrefix)[1:] {
			if v := os.Getenv(name); v != "" {
				cfg.LLM.APIKey = v
				break
			}
		}
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，使用默认值
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// 特殊处理 time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// 🔍 验证与辅助函数
// =============================================================================

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, "llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, "llm.max_tokens must not be negative")
	}
	if c.LLM.Timeout < 0 {
		errs = append(errs, "llm.timeout must not be negative")
	}

	if c.Search.Backend != "duckduckgo" {
		errs = append(errs, fmt.Sprintf("unsupported search.backend %q", c.Search.Backend))
	}
	if c.Search.RateLimit < 0 {
		errs = append(errs, "search.rate_limit must not be negative")
	}

	switch c.Benchmark.Sink {
	case "csv":
		if c.Benchmark.Output == "" {
			errs = append(errs, "benchmark.output is required for the csv sink")
		}
	case "database":
		if c.Database.DSN() == "" {
			errs = append(errs, fmt.Sprintf("unsupported database.driver %q", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Sprintf("unsupported benchmark.sink %q", c.Benchmark.Sink))
	}
	if _, err := c.Benchmark.Kinds(); err != nil {
		errs = append(errs, err.Error())
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log.level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("invalid log.format %q", c.Log.Format))
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry.sample_rate must be between 0 and 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Kinds resolves the configured strategy names. An empty list selects all
// strategies in benchmark order. A strategy named twice, under any alias,
// is rejected.
func (b BenchmarkConfig) Kinds() ([]verification.Kind, error) {
	if len(b.Strategies) == 0 {
		return verification.Kinds(), nil
	}
	kinds := make([]verification.Kind, 0, len(b.Strategies))
	seen := make(map[verification.Kind]string, len(b.Strategies))
	for _, name := range b.Strategies {
		k, err := verification.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("benchmark.strategies: %w", err)
		}
		if prev, ok := seen[k]; ok {
			return nil, fmt.Errorf("benchmark.strategies: %q duplicates %q", name, prev)
		}
		seen[k] = name
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// DSN 返回数据库连接字符串
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	case "sqlite":
		return d.Name
	default:
		return ""
	}
}
