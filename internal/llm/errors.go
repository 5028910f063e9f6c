package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// ErrorKind classifies a generation failure so callers can pick a fallback
type ErrorKind string

// Error kinds
const (
	KindAuth           ErrorKind = "auth"
	KindNetwork        ErrorKind = "network"
	KindTimeout        ErrorKind = "timeout"
	KindRateLimited    ErrorKind = "rate_limited"
	KindEmpty          ErrorKind = "empty"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindUnknown        ErrorKind = "unknown"
)

// GenerationError is returned by every Client implementation
type GenerationError struct {
	Kind     ErrorKind
	Provider Provider
	Cause    error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s generation failed (%s): %v", e.Provider, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s generation failed (%s)", e.Provider, e.Kind)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether repeating the call could succeed
func (e *GenerationError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindRateLimited, KindEmpty:
		return true
	default:
		return false
	}
}

// KindOf returns the ErrorKind of err, or KindUnknown when err is not a GenerationError.
func KindOf(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return KindUnknown
}

// Classify wraps a raw provider error into a GenerationError
func Classify(provider Provider, err error) *GenerationError {
	if err == nil {
		return nil
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	return &GenerationError{Kind: classifyKind(err), Provider: provider, Cause: err}
}

func classifyKind(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if kind, ok := kindForStatus(apiErr.Code); ok {
			return kind
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"), strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "permission denied"), strings.Contains(msg, "status code: 401"),
		strings.Contains(msg, "status code: 403"):
		return KindAuth
	case strings.Contains(msg, "status code: 429"), strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "resource exhausted"):
		return KindRateLimited
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"),
		strings.Contains(msg, "connection reset"), strings.Contains(msg, "eof"):
		return KindNetwork
	}
	return KindUnknown
}

func kindForStatus(code int) (ErrorKind, bool) {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindAuth, true
	case code == http.StatusTooManyRequests:
		return KindRateLimited, true
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return KindTimeout, true
	case code >= 500:
		return KindNetwork, true
	}
	return "", false
}

// ParseFailure is returned when model output cannot be decoded into the expected shape
type ParseFailure struct {
	Raw   string
	Cause error
}

func (e *ParseFailure) Error() string {
	raw := e.Raw
	if len(raw) > 120 {
		raw = raw[:120] + "..."
	}
	return fmt.Sprintf("failed to parse model output %q: %v", raw, e.Cause)
}

func (e *ParseFailure) Unwrap() error {
	return e.Cause
}
