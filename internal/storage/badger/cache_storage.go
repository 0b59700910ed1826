package badger

import (
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/interfaces"
)

// CacheStorage implements the CacheStorage interface on raw Badger entries.
// It bypasses badgerhold so entries can carry Badger's native per-entry TTL;
// expired entries vanish on read without a sweep.
type CacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCacheStorage creates a new CacheStorage instance
func NewCacheStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CacheStorage {
	return &CacheStorage{
		db:     db,
		logger: logger,
	}
}

// Get returns the stored bytes or ErrCacheMiss for absent/expired keys.
func (s *CacheStorage) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.Store().Badger().View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badgerdb.ErrKeyNotFound {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, nil
}

// SetTTL stores value with a time-to-live in seconds.
func (s *CacheStorage) SetTTL(key string, value []byte, ttlSeconds int) error {
	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		entry := badgerdb.NewEntry([]byte(key), value).
			WithTTL(time.Duration(ttlSeconds) * time.Second)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes one key. Deleting an absent key is not an error.
func (s *CacheStorage) Delete(key string) error {
	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && err != badgerdb.ErrKeyNotFound {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeletePrefix removes every key with the given prefix.
func (s *CacheStorage) DeletePrefix(prefix string) (int, error) {
	// Collect keys first; deleting inside the iterator invalidates it.
	var keys [][]byte
	err := s.db.Store().Badger().View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan cache prefix: %w", err)
	}

	deleted := 0
	for _, key := range keys {
		err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
			return txn.Delete(key)
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("key", string(key)).Msg("Failed to delete cache entry during prefix invalidation")
			continue
		}
		deleted++
	}
	return deleted, nil
}

// Ensure CacheStorage implements the interface
var _ interfaces.CacheStorage = (*CacheStorage)(nil)
