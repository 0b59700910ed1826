package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsPermanentError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout stays transient", context.DeadlineExceeded, false},
		{"cancellation stays transient", context.Canceled, false},
		{"rate limit stays transient", errors.New("got HTTP 429 Too Many Requests"), false},
		{"quota stays transient", errors.New("RESOURCE_EXHAUSTED: quota exceeded"), false},
		{"server error stays transient", errors.New("500 internal server error"), false},
		{"bad request is permanent", errors.New("request failed with status 400"), true},
		{"auth failure is permanent", errors.New("401 unauthorized"), true},
		{"invalid argument is permanent", errors.New("INVALID_ARGUMENT: bad schema"), true},
		{"missing api key is permanent", errors.New("no API key provided"), true},
		{"wrapped permanent error", fmt.Errorf("call failed: %w", errors.New("403 forbidden")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanentError(tt.err); got != tt.want {
				t.Errorf("IsPermanentError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	if !IsRateLimitError(errors.New("429")) {
		t.Error("429 not detected as rate limit")
	}
	if IsRateLimitError(nil) {
		t.Error("nil reported as rate limit")
	}
	if IsRateLimitError(errors.New("400 bad request")) {
		t.Error("bad request misclassified as rate limit")
	}
}
