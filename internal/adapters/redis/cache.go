package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"cma_viewer/internal/adapters/observability"
)

// Store is a Storage backed by Redis. Every key lives under "<namespace>:";
// Clear scans and deletes only that prefix.
type Store struct {
	c   *redis.Client
	ns  string
	ttl time.Duration
}

// New connects lazily; ttl bounds how long Redis keeps an entry (0 = forever).
// The CMA cache applies its own expiry on read, ttl only reclaims space.
func New(addr, pass string, db int, namespace string, ttl time.Duration) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), namespace, ttl)
}

func NewWithClient(c *redis.Client, namespace string, ttl time.Duration) *Store {
	return &Store{c: c, ns: namespace, ttl: ttl}
}

func (r *Store) key(k string) string { return r.ns + ":" + k }

func (r *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Store) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, r.key(key), b, r.ttl).Err()
}

func (r *Store) Remove(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, r.key(key)).Err()
}

func (r *Store) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.c.Scan(ctx, cursor, r.ns+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.c.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (r *Store) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Store) Close() error { return r.c.Close() }
