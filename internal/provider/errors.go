package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error codes reported by providers.
const (
	CodeAuthFailed     = "AUTH_FAILED"
	CodeRateLimited    = "RATE_LIMITED"
	CodeUnavailable    = "UNAVAILABLE"
	CodeTimeout        = "TIMEOUT"
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnknown        = "UNKNOWN"
)

// ProviderError represents an error from a provider
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	Retry      bool
	RetryAfter int // Seconds to wait before retry
}

func (e *ProviderError) Error() string {
	return e.Message
}

// IsAuth reports whether err means the provider rejected its credentials.
func IsAuth(err error) bool {
	return hasCode(err, CodeAuthFailed)
}

// IsNotFound reports whether err means the provider has no such title.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsRateLimited reports whether the remote service throttled the request.
func IsRateLimited(err error) bool {
	return hasCode(err, CodeRateLimited)
}

// IsRetryable reports whether retrying the same request may succeed.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retry
	}
	return false
}

func hasCode(err error, code string) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == code
}

// ClassifyHTTPError maps the error text produced by the provider client
// libraries onto a ProviderError. The libraries only expose status codes
// through their messages.
func ClassifyHTTPError(providerName string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, "401", "403", "unauthorized", "invalid api key", "missing omdb api key", "forbidden"):
		return &ProviderError{Provider: providerName, Code: CodeAuthFailed, Message: fmt.Sprintf("%s authentication failed: %s", providerName, msg)}
	case containsAny(lower, "429", "rate limit", "too many requests", "limit reached"):
		return &ProviderError{Provider: providerName, Code: CodeRateLimited, Message: msg, Retry: true, RetryAfter: 10}
	case containsAny(lower, "404", "not found"):
		return &ProviderError{Provider: providerName, Code: CodeNotFound, Message: msg}
	case containsAny(lower, "500", "502", "503", "504", "unavailable", "bad gateway", "timeout", "connection reset", "connection refused", "eof"):
		return &ProviderError{Provider: providerName, Code: CodeUnavailable, Message: msg, Retry: true, RetryAfter: 30}
	default:
		return &ProviderError{Provider: providerName, Code: CodeUnknown, Message: msg}
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
