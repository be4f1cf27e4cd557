package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/verifyflow/internal/tlsutil"
	"github.com/BaSui01/verifyflow/llm"
	"github.com/BaSui01/verifyflow/llm/providers"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiProvider 实现 Google Gemini 的 LLM Provider
type GeminiProvider struct {
	cfg    providers.GeminiConfig
	client *genai.Client
	logger *zap.Logger
}

// NewGeminiProvider 创建 Gemini Provider，API Key 为空时返回错误
func NewGeminiProvider(ctx context.Context, cfg providers.GeminiConfig, logger *zap.Logger) (*GeminiProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: tlsutil.SecureHTTPClient(timeout),
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{
		cfg:    cfg,
		client: client,
		logger: logger.With(zap.String("provider", "gemini")),
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Completion 调用 generateContent 并返回第一个候选的文本
func (p *GeminiProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, &llm.Error{
			Code: llm.ErrInvalidRequest, Message: "messages are required",
			HTTPStatus: http.StatusBadRequest, Provider: p.Name(),
		}
	}
	model := providers.ChooseModel(req, p.cfg.Model, DefaultModel)
	contents, config := convertRequest(req)

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, mapError(err, p.Name())
	}

	out := &llm.ChatResponse{
		ID:       resp.ResponseID,
		Provider: p.Name(),
		Model:    model,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if len(resp.Candidates) > 0 {
		out.Choices = []llm.ChatChoice{{
			FinishReason: string(resp.Candidates[0].FinishReason),
			Message:      llm.Message{Role: llm.RoleAssistant, Content: resp.Text()},
		}}
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = llm.ChatUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	p.logger.Debug("gemini completion", zap.String("model", out.Model), zap.Int("candidates", len(resp.Candidates)))
	return out, nil
}

// convertRequest 把 system 消息合并为 SystemInstruction，其余消息按角色转换
func convertRequest(req *llm.ChatRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	var system []string
	var contents []*genai.Content
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, m.Content)
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser)
	}
	if req.ResponseFormat == llm.ResponseFormatJSON {
		config.ResponseMIMEType = "application/json"
	}
	if req.Temperature > 0 {
		t := req.Temperature
		config.Temperature = &t
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	return contents, config
}

// mapError 将 SDK 错误转换为 llm.Error
func mapError(err error, provider string) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return &llm.Error{
				Code: llm.ErrUpstreamError, Message: err.Error(),
				HTTPStatus: http.StatusBadGateway, Provider: provider,
			}
		}
		apiErr = *ptr
	}
	msg := apiErr.Message
	if apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "api key") {
		return &llm.Error{Code: llm.ErrUnauthorized, Message: msg, HTTPStatus: apiErr.Code, Provider: provider}
	}
	return providers.MapHTTPError(apiErr.Code, msg, provider)
}
