package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"cma_viewer/internal/adapters/observability"
	"cma_viewer/internal/domain"
)

const (
	cmaKeyPrefix  = "cma_"
	DefaultCMATTL = 24 * time.Hour
	cacheLabel    = "cma"
)

// CMACache keeps raw CMA payloads per ID with a capture timestamp. Entries
// older than the TTL are removed on read.
type CMACache struct {
	store domain.Storage
	ttl   time.Duration
	now   func() time.Time
}

func NewCMACache(store domain.Storage, ttl time.Duration) *CMACache {
	if ttl <= 0 {
		ttl = DefaultCMATTL
	}
	return &CMACache{store: store, ttl: ttl, now: time.Now}
}

// WithClock swaps the time source; used by tests and the warmer.
func (c *CMACache) WithClock(now func() time.Time) *CMACache {
	c.now = now
	return c
}

func cmaKey(id string) string { return cmaKeyPrefix + id }

// Get returns the cached payload for id if it is still valid.
func (c *CMACache) Get(ctx context.Context, id string) (domain.CachedResponse, bool) {
	key := cmaKey(id)
	var entry domain.CachedResponse
	ok, err := c.store.Get(ctx, key, &entry)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return domain.CachedResponse{}, false
	}
	if !ok || entry.Data == nil {
		observability.ObserveCache(cacheLabel, "miss")
		return domain.CachedResponse{}, false
	}

	age := c.now().Sub(time.UnixMilli(entry.Timestamp))
	if age > c.ttl {
		observability.ObserveCache(cacheLabel, "expired")
		if err := c.store.Remove(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache evict failed")
		}
		return domain.CachedResponse{}, false
	}
	observability.ObserveCache(cacheLabel, "hit")
	return entry, true
}

// Put records data for id stamped with the current time.
func (c *CMACache) Put(ctx context.Context, id string, data domain.RawResponse) {
	key := cmaKey(id)
	entry := domain.CachedResponse{Data: data, Timestamp: c.now().UnixMilli()}
	if err := c.store.Set(ctx, key, entry); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return
	}
	observability.ObserveCache(cacheLabel, "set")
}

func (c *CMACache) Remove(ctx context.Context, id string) {
	key := cmaKey(id)
	if err := c.store.Remove(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache evict failed")
		return
	}
	observability.ObserveCache(cacheLabel, "del")
}
