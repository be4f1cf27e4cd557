package providers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/BaSui01/verifyflow/llm"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMapHTTPError(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		msg      string
		expected llm.ErrorCode
	}{
		{"401 Unauthorized", http.StatusUnauthorized, "Invalid API key", llm.ErrUnauthorized},
		{"403 Forbidden", http.StatusForbidden, "Access denied", llm.ErrForbidden},
		{"404 unknown model", http.StatusNotFound, "The model `gpt-5o` does not exist", llm.ErrModelNotFound},
		{"429 rate limited", http.StatusTooManyRequests, "Rate limit reached", llm.ErrRateLimited},
		{"400 quota", http.StatusBadRequest, "You exceeded your current quota", llm.ErrQuotaExceeded},
		{"400 credit", http.StatusBadRequest, "Insufficient credit", llm.ErrQuotaExceeded},
		{"400 model not found", http.StatusBadRequest, "model 'phi3' not found", llm.ErrModelNotFound},
		{"400 invalid", http.StatusBadRequest, "messages must not be empty", llm.ErrInvalidRequest},
		{"502 bad gateway", http.StatusBadGateway, "upstream", llm.ErrProviderUnavailable},
		{"503 unavailable", http.StatusServiceUnavailable, "overloaded", llm.ErrProviderUnavailable},
		{"504 timeout", http.StatusGatewayTimeout, "timeout", llm.ErrUpstreamTimeout},
		{"500 internal", http.StatusInternalServerError, "oops", llm.ErrUpstreamError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := MapHTTPError(tc.status, tc.msg, "openai")
			assert.Equal(t, tc.expected, err.Code)
			assert.Equal(t, tc.status, err.HTTPStatus)
			assert.Equal(t, tc.msg, err.Message)
			assert.Equal(t, "openai", err.Provider)
		})
	}
}

// 任意状态码都必须映射到非空错误码并保留状态与提供者。
func TestMapHTTPError_Total(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		status := rapid.IntRange(400, 599).Draw(t, "status")
		provider := rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "provider")
		err := MapHTTPError(status, "msg", provider)
		assert.NotEmpty(t, err.Code)
		assert.Equal(t, status, err.HTTPStatus)
		assert.Equal(t, provider, err.Provider)
	})
}

func TestReadErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"openai shape", `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, "Incorrect API key provided (type: invalid_request_error)"},
		{"openai no type", `{"error":{"message":"bad"}}`, "bad"},
		{"ollama shape", `{"error":"model 'phi' not found, try pulling it first"}`, "model 'phi' not found, try pulling it first"},
		{"plain text", "  Service Unavailable \n", "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadErrorMessage(strings.NewReader(tt.body)))
		})
	}
}

func TestChooseModel(t *testing.T) {
	assert.Equal(t, "req", ChooseModel(&llm.ChatRequest{Model: "req"}, "def", "fb"))
	assert.Equal(t, "def", ChooseModel(&llm.ChatRequest{}, "def", "fb"))
	assert.Equal(t, "fb", ChooseModel(nil, "", "fb"))
}

func TestConvertResponseFormat(t *testing.T) {
	assert.Nil(t, ConvertResponseFormat(llm.ResponseFormatText))
	assert.Equal(t, &OpenAICompatResponseFormat{Type: "json_object"}, ConvertResponseFormat(llm.ResponseFormatJSON))
}
