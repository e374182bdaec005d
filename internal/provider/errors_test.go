package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		in        error
		wantCode  string
		wantRetry bool
	}{
		{errors.New("Invalid API key: You must be granted a valid key"), CodeAuthFailed, false},
		{errors.New("status 401"), CodeAuthFailed, false},
		{errors.New("429 Too Many Requests"), CodeRateLimited, true},
		{errors.New("Movie not found!"), CodeNotFound, false},
		{errors.New("503 Service Unavailable"), CodeUnavailable, true},
		{errors.New("read: connection reset by peer"), CodeUnavailable, true},
		{errors.New("something odd"), CodeUnknown, false},
	}

	for _, tc := range tests {
		t.Run(tc.in.Error(), func(t *testing.T) {
			err := ClassifyHTTPError("tmdb", tc.in)
			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("ClassifyHTTPError() = %T, want *ProviderError", err)
			}
			if pe.Code != tc.wantCode {
				t.Errorf("Code = %s, want %s", pe.Code, tc.wantCode)
			}
			if pe.Retry != tc.wantRetry {
				t.Errorf("Retry = %v, want %v", pe.Retry, tc.wantRetry)
			}
			if pe.Provider != "tmdb" {
				t.Errorf("Provider = %q, want tmdb", pe.Provider)
			}
		})
	}
}

func TestClassifyHTTPError_PassesThrough(t *testing.T) {
	if ClassifyHTTPError("tmdb", nil) != nil {
		t.Error("ClassifyHTTPError(nil) != nil")
	}

	existing := &ProviderError{Code: CodeNotFound}
	if got := ClassifyHTTPError("tmdb", fmt.Errorf("wrap: %w", existing)); !IsNotFound(got) {
		t.Errorf("wrapped ProviderError lost its code: %v", got)
	}

	if got := ClassifyHTTPError("tmdb", context.Canceled); !errors.Is(got, context.Canceled) {
		t.Errorf("context error rewritten: %v", got)
	}
}
