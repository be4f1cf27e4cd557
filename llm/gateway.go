package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/verifyflow/types"
	"go.uber.org/zap"
)

// Invoker is the call surface pipeline stages depend on.
type Invoker interface {
	Invoke(ctx context.Context, prompt, systemInstruction string) Result
}

// CallRecorder receives one observation per gateway invocation.
type CallRecorder interface {
	RecordLLMCall(provider, model string, code types.ErrorCode, duration time.Duration)
}

// Result is the outcome of a gateway invocation: either a JSON object
// payload or a typed failure. Exactly one of Raw and Err is set.
type Result struct {
	Raw json.RawMessage
	Err *types.Error
}

// OK reports whether the invocation produced a payload.
func (r Result) OK() bool {
	return r.Err == nil
}

// Code returns the failure code, or "" on success.
func (r Result) Code() types.ErrorCode {
	if r.Err == nil {
		return ""
	}
	return r.Err.Code
}

// Decode unmarshals the payload into v. Decoding errors are reported as
// MalformedResponse so callers have a single failure vocabulary.
func (r Result) Decode(v any) error {
	if r.Err != nil {
		return r.Err
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return types.NewError(types.ErrMalformedResponse, "response does not match expected shape").WithCause(err)
	}
	return nil
}

func failure(code types.ErrorCode, msg string, cause error) Result {
	e := types.NewError(code, msg)
	if cause != nil {
		e = e.WithCause(cause)
	}
	return Result{Err: e}
}

// GatewayConfig 网关配置，进程启动时创建，之后只读。
type GatewayConfig struct {
	Model       string        `json:"model" yaml:"model"`
	Temperature float32       `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Gateway is the single entry point pipeline stages use to call a model.
// It always requests JSON-object output and never retries or caches.
type Gateway struct {
	provider Provider
	cfg      GatewayConfig
	recorder CallRecorder
	logger   *zap.Logger
}

// GatewayOption customises a Gateway.
type GatewayOption func(*Gateway)

// WithCallRecorder attaches a metrics recorder.
func WithCallRecorder(r CallRecorder) GatewayOption {
	return func(g *Gateway) { g.recorder = r }
}

// NewGateway wraps provider. A nil provider yields a gateway whose every
// call fails with a transport failure.
func NewGateway(provider Provider, cfg GatewayConfig, logger *zap.Logger, opts ...GatewayOption) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "llm_gateway")),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Model returns the configured model identifier.
func (g *Gateway) Model() string { return g.cfg.Model }

// Invoke sends one system instruction and one user prompt and returns the
// parsed JSON object or a classified failure.
func (g *Gateway) Invoke(ctx context.Context, prompt, systemInstruction string) Result {
	if strings.TrimSpace(prompt) == "" || strings.TrimSpace(systemInstruction) == "" {
		return failure(types.ErrInvalidRequest, "prompt and system instruction are required", nil)
	}
	if g.provider == nil {
		return failure(types.ErrTransport, "no language-model provider configured", nil)
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	req := &ChatRequest{
		Model: g.cfg.Model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemInstruction},
			{Role: RoleUser, Content: prompt},
		},
		MaxTokens:      g.cfg.MaxTokens,
		Temperature:    g.cfg.Temperature,
		ResponseFormat: ResponseFormatJSON,
	}

	start := time.Now()
	res := g.invoke(ctx, req)
	elapsed := time.Since(start)

	if g.recorder != nil {
		g.recorder.RecordLLMCall(g.provider.Name(), g.cfg.Model, res.Code(), elapsed)
	}
	if res.OK() {
		g.logger.Debug("llm call completed",
			zap.String("provider", g.provider.Name()),
			zap.String("model", g.cfg.Model),
			zap.Duration("duration", elapsed))
	} else {
		g.logger.Warn("llm call failed",
			zap.String("provider", g.provider.Name()),
			zap.String("model", g.cfg.Model),
			zap.String("code", string(res.Code())),
			zap.Error(res.Err))
	}
	return res
}

func (g *Gateway) invoke(ctx context.Context, req *ChatRequest) Result {
	resp, err := g.provider.Completion(ctx, req)
	if err != nil {
		r := Result{Err: Classify(err)}
		r.Err.Provider = g.provider.Name()
		return r
	}

	content, ok := resp.FirstContent()
	if !ok {
		return failure(types.ErrMalformedResponse, "response has no choices", nil)
	}
	raw, err := parseObject(content)
	if err != nil {
		return failure(types.ErrMalformedResponse, "response is not a JSON object", err)
	}
	return Result{Raw: raw}
}

// parseObject accepts exactly one JSON object, surrounding whitespace aside.
func parseObject(content string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace([]byte(content))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("expected JSON object, got %q", truncate(string(trimmed), 64))
	}
	var obj map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON object")
	}
	return json.RawMessage(trimmed), nil
}

// Classify maps a provider error onto the gateway failure taxonomy.
func Classify(err error) *types.Error {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		switch llmErr.Code {
		case ErrUnauthorized, ErrForbidden:
			return types.NewError(types.ErrAuthentication, llmErr.Message).WithCause(err)
		case ErrModelNotFound:
			return types.NewError(types.ErrModelUnavailable, llmErr.Message).WithCause(err)
		default:
			return types.NewError(types.ErrTransport, llmErr.Message).WithCause(err)
		}
	}
	var typed *types.Error
	if errors.As(err, &typed) {
		return typed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewError(types.ErrTransport, "request timed out").WithCause(err)
	}
	return types.NewError(types.ErrTransport, "backend call failed").WithCause(err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
