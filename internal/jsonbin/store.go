package jsonbin

import (
	"context"
	"time"

	"github.com/woozymasta/dmvmap/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Store reads and writes the whole document.
type Store interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, doc []byte) error
}

// Cache holds a copy of the document between reads.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FreshReader is a Store that can skip its cache.
type FreshReader interface {
	ReadFresh(ctx context.Context) ([]byte, error)
}

// ReadFresh reads the authoritative copy of the document from s.
func ReadFresh(ctx context.Context, s Store) ([]byte, error) {
	if f, ok := s.(FreshReader); ok {
		return f.ReadFresh(ctx)
	}
	return s.Read(ctx)
}

// CachedStore is a read-through cache in front of a Store. Cache errors are
// logged and bypassed; the upstream store stays authoritative.
type CachedStore struct {
	Store Store
	Cache Cache
	Key   string
	TTL   time.Duration
}

// Read serves from the cache when possible.
func (s *CachedStore) Read(ctx context.Context) ([]byte, error) {
	doc, ok, err := s.Cache.Get(ctx, s.Key)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("key", s.Key).Msg("Document cache read failed")
	case ok:
		metrics.CacheHitsTotal.Inc()
		return doc, nil
	default:
		metrics.CacheMissesTotal.Inc()
	}

	return s.ReadFresh(ctx)
}

// ReadFresh reads the upstream store and refreshes the cached copy.
func (s *CachedStore) ReadFresh(ctx context.Context) ([]byte, error) {
	doc, err := s.Store.Read(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.Cache.Set(ctx, s.Key, doc, s.TTL); err != nil {
		log.Warn().Err(err).Str("key", s.Key).Msg("Document cache write failed")
	}

	return doc, nil
}

// Write updates the store and drops the cached copy.
func (s *CachedStore) Write(ctx context.Context, doc []byte) error {
	if err := s.Store.Write(ctx, doc); err != nil {
		return err
	}

	if err := s.Cache.Delete(ctx, s.Key); err != nil {
		log.Warn().Err(err).Str("key", s.Key).Msg("Document cache invalidation failed")
	}

	return nil
}
