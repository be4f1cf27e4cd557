package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the pipeline.
type ErrorCode string

// Language-model gateway error codes
const (
	ErrAuthentication    ErrorCode = "AUTHENTICATION"     // 凭证无效或过期
	ErrModelUnavailable  ErrorCode = "MODEL_UNAVAILABLE"  // 模型标识不被后端识别
	ErrMalformedResponse ErrorCode = "MALFORMED_RESPONSE" // 非 JSON 或无法解析的响应
	ErrTransport         ErrorCode = "TRANSPORT"          // 网络/后端通用错误
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 调用方传入的参数不合法
)

// ErrSearchFailed 搜索网关失败；无结果由 StatusNoResult 表示，不是错误
const ErrSearchFailed ErrorCode = "SEARCH_FAILED"

// Configuration error codes
const (
	ErrMissingCredential ErrorCode = "MISSING_CREDENTIAL"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Provider string    `json:"provider,omitempty"`
	Cause    error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// GetErrorCode extracts the error code from an error chain.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && GetErrorCode(err) == code
}
