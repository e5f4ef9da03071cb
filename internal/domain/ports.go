package domain

import "context"

// Storage is a namespaced key-value store holding JSON values. Implementations
// only touch keys inside their own namespace, Clear included.
type Storage interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type CMAClient interface {
	GetCMA(ctx context.Context, id string) (RawResponse, error)
}
