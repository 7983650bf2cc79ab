package llm

import (
	"context"
	"errors"
	"strings"
)

// defines the interface for LLM providers
type Provider interface {
	GenerateContent(ctx context.Context, prompt string, requestID string) (*GenerationResponse, error)
	GetProviderName() string
}

// GenerationResponse is the raw text a provider produced for one prompt.
type GenerationResponse struct {
	Content   string
	RequestID string
	Metadata  GenerationMetadata
}

type GenerationMetadata struct {
	ProcessingTime int // milliseconds
	Provider       string
	Model          string
	Attempts       int
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
// For current and future use across different providers
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)

// ErrorCode extracts the provider code from err, or "" when err is not a ProviderError.
func ErrorCode(err error) string {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Code
	}
	return ""
}

// IsRateLimitError reports whether err looks like a quota or throttling response.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if ErrorCode(err) == ErrCodeRateLimit {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}
