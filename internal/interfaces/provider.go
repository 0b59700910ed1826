package interfaces

import (
	"context"

	"github.com/ternarybob/censeo/internal/models"
)

// CompletionProvider is the uniform adapter contract around one external
// text-generation backend. Adapters translate the generic request into their
// backend's call shape and normalize responses and errors; they perform no
// caching and no cost accounting.
type CompletionProvider interface {
	// Name returns the stable provider identifier used for ledger
	// attribution and result provenance.
	Name() string

	// IsAvailable reports whether the adapter can currently serve calls.
	// Implementations must keep this cheap; results may be cached per
	// process for a short interval.
	IsAvailable(ctx context.Context) bool

	// Complete performs a single completion call. Failures are returned as
	// *ProviderError so the orchestrator can decide between fallback
	// (transient) and abort (permanent). No internal retries.
	Complete(ctx context.Context, request *models.CompletionRequest) (*models.CompletionResult, error)

	// EstimateTokens returns the estimated input/output token counts of the
	// last shape of request/response, used for ledger cost estimation.
	EstimateTokens(request *models.CompletionRequest, result *models.CompletionResult) (in int, out int)

	// Close releases any backend clients.
	Close() error
}

// CompletionService is the orchestrator contract exposed to the rest of the
// core: cache-aware, ledger-metered, fallback-ordered completion.
type CompletionService interface {
	Complete(ctx context.Context, request *models.CompletionRequest) (*models.CompletionResult, error)
}
