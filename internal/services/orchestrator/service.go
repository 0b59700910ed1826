// Package orchestrator routes completion requests through the configured
// provider chain with cache-first lookup, ordered fallback, and usage
// metering.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
	"github.com/ternarybob/censeo/internal/services/cache"
)

// defaultCallTimeout bounds one adapter call when config leaves it unset.
const defaultCallTimeout = 45 * time.Second

// cacheEnvelope is the stored shape of a completion result. The originating
// provider travels with the candidates so a cache hit still reports
// provenance.
type cacheEnvelope struct {
	Provider   string   `json:"provider"`
	Candidates []string `json:"candidates"`
}

// Service implements interfaces.CompletionService. Providers are attempted
// strictly in priority order; a provider is never retried within one call.
type Service struct {
	providers   []interfaces.CompletionProvider
	cache       interfaces.CacheService
	ledger      interfaces.LedgerService
	logger      arbor.ILogger
	callTimeout time.Duration
}

// NewService creates the orchestrator over an ordered provider chain. The
// slice order is the fallback order.
func NewService(providers []interfaces.CompletionProvider, cacheService interfaces.CacheService, ledger interfaces.LedgerService, config *common.OrchestratorConfig, logger arbor.ILogger) (*Service, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one completion provider is required")
	}

	callTimeout := defaultCallTimeout
	if config.CallTimeout != "" {
		parsed, err := time.ParseDuration(config.CallTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid orchestrator call timeout %q: %w", config.CallTimeout, err)
		}
		callTimeout = parsed
	}

	return &Service{
		providers:   providers,
		cache:       cacheService,
		ledger:      ledger,
		logger:      logger,
		callTimeout: callTimeout,
	}, nil
}

// Complete serves one completion request. The cache is consulted first; a hit
// returns without touching any provider or the ledger. On a miss the chain is
// walked in priority order, skipping unavailable providers, falling through
// transient failures, and aborting on the first permanent one. Only the call
// that completes is metered; failed attempts consumed no output tokens and
// leave no ledger entry.
func (s *Service) Complete(ctx context.Context, request *models.CompletionRequest) (*models.CompletionResult, error) {
	if err := request.Validate(); err != nil {
		return nil, &interfaces.ValidationError{Err: err}
	}

	category := request.Category()
	key, keyErr := cache.CanonicalKey(request)
	if keyErr != nil {
		// The request still completes; it just bypasses the cache.
		s.logger.Warn().Err(keyErr).Msg("Cache key derivation failed, bypassing cache")
	}

	if cached, ok := s.cachedBytes(ctx, category, key, keyErr); ok {
		var envelope cacheEnvelope
		if err := json.Unmarshal(cached, &envelope); err == nil && len(envelope.Candidates) > 0 {
			s.logger.Debug().
				Str("task", string(request.Task)).
				Str("provider", envelope.Provider).
				Msg("Completion served from cache")
			return &models.CompletionResult{
				Candidates:      envelope.Candidates,
				Provider:        envelope.Provider,
				ServedFromCache: true,
			}, nil
		}
		// A corrupt entry degrades to a miss.
		s.cache.Invalidate(ctx, category, key)
	}

	aggregate := interfaces.NewAllProvidersError()

	for _, provider := range s.providers {
		name := provider.Name()

		if !provider.IsAvailable(ctx) {
			s.logger.Debug().Str("provider", name).Msg("Provider unavailable, skipping")
			aggregate.Append(name, "unavailable")
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		result, err := provider.Complete(callCtx, request)
		cancel()

		if err != nil {
			var provErr *interfaces.ProviderError
			if errors.As(err, &provErr) && !provErr.Transient {
				s.logger.Warn().
					Str("provider", name).
					Err(err).
					Msg("Permanent provider failure, aborting")
				// The chain stops here, but the caller still sees every
				// attempted provider's failure reason.
				aggregate.Append(name, err.Error())
				return nil, aggregate
			}

			s.logger.Warn().
				Str("provider", name).
				Err(err).
				Msg("Transient provider failure, trying next")
			aggregate.Append(name, err.Error())
			continue
		}

		tokensIn, tokensOut := provider.EstimateTokens(request, result)
		s.ledger.Record(ctx, name, request.Identity, tokensIn, tokensOut, true)

		if keyErr == nil {
			s.storeResult(ctx, category, key, result)
		}

		s.logger.Info().
			Str("task", string(request.Task)).
			Str("provider", name).
			Int("candidates", len(result.Candidates)).
			Dur("duration", result.Duration).
			Msg("Completion succeeded")

		return result, nil
	}

	s.logger.Warn().
		Str("task", string(request.Task)).
		Err(aggregate).
		Msg("All providers exhausted")

	return nil, aggregate
}

// cachedBytes reads the cache unless key derivation already failed.
func (s *Service) cachedBytes(ctx context.Context, category, key string, keyErr error) ([]byte, bool) {
	if keyErr != nil {
		return nil, false
	}
	return s.cache.Get(ctx, category, key)
}

// storeResult writes a successful completion back to the cache. Encoding
// failures are logged and swallowed; the caller already has the result.
func (s *Service) storeResult(ctx context.Context, category, key string, result *models.CompletionResult) {
	payload, err := json.Marshal(cacheEnvelope{
		Provider:   result.Provider,
		Candidates: result.Candidates,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode completion for cache")
		return
	}
	s.cache.Set(ctx, category, key, payload)
}

// Close shuts down every provider in the chain.
func (s *Service) Close() error {
	var firstErr error
	for _, provider := range s.providers {
		if err := provider.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Ensure Service implements the interface
var _ interfaces.CompletionService = (*Service)(nil)
