package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore implements Store in process memory
type MemoryStore struct {
	cache *gocache.Cache
	mu    sync.Mutex // serializes read-modify-write operations
}

// NewMemoryStore creates a new memory store; entries never expire unless a TTL is given
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// Get retrieves a value from the store
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if val, found := s.cache.Get(key); found {
		if b, ok := val.([]byte); ok {
			return b, true, nil
		}
	}
	return nil, false, nil
}

// Set stores a value with the given TTL
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.cache.Set(key, value, ttl)
	return nil
}

// Append adds value to the list at key
func (s *MemoryStore) Append(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items [][]byte
	if val, found := s.cache.Get(key); found {
		items, _ = val.([][]byte)
	}
	// Copy so callers never share backing arrays
	next := make([][]byte, len(items), len(items)+1)
	copy(next, items)
	next = append(next, append([]byte(nil), value...))
	s.cache.Set(key, next, gocache.NoExpiration)
	return nil
}

// List returns the list at key
func (s *MemoryStore) List(_ context.Context, key string) ([][]byte, error) {
	if val, found := s.cache.Get(key); found {
		if items, ok := val.([][]byte); ok {
			return items, nil
		}
	}
	return nil, nil
}

// Incr increments the counter at key
func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	if val, found := s.cache.Get(key); found {
		if b, ok := val.([]byte); ok {
			parsed, err := strconv.ParseInt(string(b), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("value at %s is not an integer", key)
			}
			n = parsed
		}
	}
	n++
	s.cache.Set(key, []byte(strconv.FormatInt(n, 10)), gocache.NoExpiration)
	return n, nil
}

// Delete removes a key
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Close flushes the store
func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}
