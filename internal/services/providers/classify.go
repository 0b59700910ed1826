package providers

import (
	"context"
	"errors"
	"strings"
)

// IsRateLimitError checks if an error is a backend rate limit error.
// Matches 429 status codes and RESOURCE_EXHAUSTED errors.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota")
}

// permanentPatterns mark request-shaped failures that no other adapter call
// will fix: bad requests, auth failures, safety rejections.
var permanentPatterns = []string{
	"400",
	"401",
	"403",
	"404",
	"INVALID_ARGUMENT",
	"PERMISSION_DENIED",
	"invalid_request_error",
	"authentication",
	"api key",
	"API key",
}

// IsPermanentError reports whether an error should abort the fallback chain.
// Timeouts, rate limits and server-side failures stay transient so the next
// adapter gets a chance.
func IsPermanentError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if IsRateLimitError(err) {
		return false
	}
	errStr := err.Error()
	for _, pattern := range permanentPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
