// Package interfaces provides service interfaces and shared error types for
// dependency injection.
package interfaces

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCacheMiss is returned by cache storage when a key is absent or expired.
// It never surfaces to callers of the core; cache failures degrade to misses.
var ErrCacheMiss = errors.New("cache miss")

// ParseError indicates the submitted document markup could not be parsed.
// It is fatal to the audit call that produced it and nothing else.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("document parse failed: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError indicates a malformed completion request. No retry or
// fallback applies.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ProviderError is a normalized adapter failure. Transient errors (rate
// limits, 5xx, timeouts) justify falling back to the next adapter; permanent
// errors (bad request, auth) abort the orchestrator call.
type ProviderError struct {
	Provider  string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("provider %s: %s error: %v", e.Provider, kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewTransientError wraps err as a transient ProviderError for the named
// provider.
func NewTransientError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Transient: true, Err: err}
}

// NewPermanentError wraps err as a permanent ProviderError for the named
// provider.
func NewPermanentError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Transient: false, Err: err}
}

// AllProvidersError is returned when the orchestrator exhausts its adapter
// chain. Reasons holds one entry per adapter, in attempt order.
type AllProvidersError struct {
	Reasons map[string]string
	order   []string
}

// NewAllProvidersError creates an empty aggregate error.
func NewAllProvidersError() *AllProvidersError {
	return &AllProvidersError{Reasons: make(map[string]string)}
}

// Append records one adapter's failure reason, preserving attempt order.
func (e *AllProvidersError) Append(provider, reason string) {
	if _, seen := e.Reasons[provider]; !seen {
		e.order = append(e.order, provider)
	}
	e.Reasons[provider] = reason
}

func (e *AllProvidersError) Error() string {
	if len(e.order) == 0 {
		return "all providers unavailable: no adapters configured"
	}
	parts := make([]string, 0, len(e.order))
	for _, p := range e.order {
		parts = append(parts, fmt.Sprintf("%s: %s", p, e.Reasons[p]))
	}
	return "all providers unavailable: " + strings.Join(parts, "; ")
}
