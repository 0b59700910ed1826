package interfaces

import "context"

// CacheService provides content-addressed caching with a fixed per-category
// TTL policy. All operations fail open: a broken store behaves as a miss on
// read and a no-op on write, never as an error to the caller.
type CacheService interface {
	// Get returns the cached bytes for a canonical key within a category.
	// The second return is false on miss, expiry, or store failure.
	Get(ctx context.Context, category, key string) ([]byte, bool)

	// Set stores value under the category's policy TTL. Failures are logged
	// and swallowed.
	Set(ctx context.Context, category, key string, value []byte)

	// Invalidate removes one entry.
	Invalidate(ctx context.Context, category, key string)

	// InvalidateAll removes every entry in a category.
	InvalidateAll(ctx context.Context, category string)
}

// CacheStorage is the persistence contract behind the cache service. Entries
// carry their own expiry; Get must not return expired values.
type CacheStorage interface {
	// Get returns the stored bytes or ErrCacheMiss.
	Get(key string) ([]byte, error)

	// SetTTL stores value with a time-to-live in seconds.
	SetTTL(key string, value []byte, ttlSeconds int) error

	// Delete removes one key. Deleting an absent key is not an error.
	Delete(key string) error

	// DeletePrefix removes every key with the given prefix and returns the
	// number of entries dropped.
	DeletePrefix(prefix string) (int, error)
}
