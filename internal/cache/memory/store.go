// Package memory implements cache.Store in process, for deployments without Redis.
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/handrades/Luppa-PLC-sub003/internal/cache"
)

var _ cache.Store = (*Store)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a bounded LRU with per-entry expiry. Expired entries are dropped
// lazily on read.
type Store struct {
	entries *lru.Cache[string, entry]
	now     func() time.Time
}

// NewStore creates a store holding at most size entries.
func NewStore(size int) (*Store, error) {
	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru: %w", err)
	}
	return &Store{entries: entries, now: time.Now}, nil
}

// Get returns cache.ErrKeyNotFound for absent or expired keys.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.live(key)
	if !ok {
		return nil, cache.ErrKeyNotFound
	}
	return e.value, nil
}

// SetWithTTL stores a copy of value.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.entries.Add(key, entry{
		value:     append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	})
	return nil
}

// ScanPrefix returns live keys under prefix, oldest first.
func (s *Store) ScanPrefix(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for _, key := range s.entries.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if _, ok := s.live(key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// MGet returns nil for absent or expired keys.
func (s *Store) MGet(_ context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, key := range keys {
		if e, ok := s.live(key); ok {
			out[i] = e.value
		}
	}
	return out, nil
}

// Len reports the number of entries, including expired ones not yet evicted.
func (s *Store) Len() int {
	return s.entries.Len()
}

func (s *Store) live(key string) (entry, bool) {
	e, ok := s.entries.Peek(key)
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		s.entries.Remove(key)
		return entry{}, false
	}
	s.entries.Get(key)
	return e, true
}
