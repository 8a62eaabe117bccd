package credstore

import "context"

// Store is a minimal key-value persistence interface. Get returns (nil, nil)
// for missing keys so callers can distinguish absence from failure.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
