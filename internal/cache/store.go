package cache

import (
	"context"
	"time"
)

// Store is a key/value backend with expiring entries.
type Store interface {
	// Get returns ErrKeyNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// ScanPrefix returns every live key starting with prefix, in no particular order.
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)
	// MGet returns one entry per key; missing keys yield nil.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
}
