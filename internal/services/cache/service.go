// Package cache provides the content-addressed response cache with fixed
// per-category TTL policy. Caching is an optimization, never a correctness
// dependency: every operation fails open.
package cache

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

// TTL policy per cache category, in seconds. Keyword suggestions change
// slowly; title/description completions are fresher; free text is the
// shortest-lived. Callers never supply a TTL.
var categoryTTL = map[string]int{
	string(models.TaskKeywordSuggestions):  7 * 24 * 3600,
	string(models.TaskTitleVariants):       24 * 3600,
	string(models.TaskDescriptionVariants): 24 * 3600,
	string(models.TaskFreeText):            3600,
}

// defaultTTL applies to categories without an explicit policy entry.
const defaultTTL = 3600

// Service provides category-scoped cached reads and writes over the cache
// storage.
type Service struct {
	storage interfaces.CacheStorage
	logger  arbor.ILogger
}

// NewService creates a new cache service.
func NewService(storage interfaces.CacheStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// TTLForCategory returns the policy TTL in seconds for a category.
func TTLForCategory(category string) int {
	if ttl, ok := categoryTTL[category]; ok {
		return ttl
	}
	return defaultTTL
}

// storageKey prefixes the digest with the category tag so equal digests from
// different categories cannot collide.
func storageKey(category, key string) string {
	return fmt.Sprintf("cache:%s:%s", category, key)
}

// Get returns the cached bytes for a canonical key. Store failures degrade to
// a miss.
func (s *Service) Get(ctx context.Context, category, key string) ([]byte, bool) {
	value, err := s.storage.Get(storageKey(category, key))
	if err == interfaces.ErrCacheMiss {
		return nil, false
	}
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("category", category).
			Msg("Cache read failed, treating as miss")
		return nil, false
	}

	s.logger.Debug().
		Str("category", category).
		Str("key", key).
		Msg("Cache hit")
	return value, true
}

// Set stores value under the category's policy TTL. Store failures are a
// no-op.
func (s *Service) Set(ctx context.Context, category, key string, value []byte) {
	ttl := TTLForCategory(category)
	if err := s.storage.SetTTL(storageKey(category, key), value, ttl); err != nil {
		s.logger.Warn().
			Err(err).
			Str("category", category).
			Msg("Cache write failed, skipping")
		return
	}

	s.logger.Debug().
		Str("category", category).
		Str("key", key).
		Int("ttl_seconds", ttl).
		Msg("Cache entry stored")
}

// Invalidate removes one entry.
func (s *Service) Invalidate(ctx context.Context, category, key string) {
	if err := s.storage.Delete(storageKey(category, key)); err != nil {
		s.logger.Warn().
			Err(err).
			Str("category", category).
			Msg("Cache invalidation failed")
	}
}

// InvalidateAll removes every entry in a category.
func (s *Service) InvalidateAll(ctx context.Context, category string) {
	deleted, err := s.storage.DeletePrefix(fmt.Sprintf("cache:%s:", category))
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("category", category).
			Msg("Cache category invalidation failed")
		return
	}

	s.logger.Info().
		Str("category", category).
		Int("deleted_count", deleted).
		Msg("Cache category invalidated")
}

// Ensure Service implements the CacheService interface
var _ interfaces.CacheService = (*Service)(nil)
