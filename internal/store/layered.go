package store

import (
	"context"
	"time"
)

// LayeredStore keeps a memory layer in front of a persistent layer.
// Writes go to the persistent layer first; reads promote into memory.
type LayeredStore struct {
	memory Store
	disk   Store
}

// NewLayeredStore creates a new layered store
func NewLayeredStore(memory, disk Store) *LayeredStore {
	return &LayeredStore{memory: memory, disk: disk}
}

// Get checks memory first, then disk
func (s *LayeredStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, found, _ := s.memory.Get(ctx, key); found {
		return val, true, nil
	}

	val, found, err := s.disk.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	// Promote to memory
	_ = s.memory.Set(ctx, key, val, 0)
	return val, true, nil
}

// Set stores a value in both layers
func (s *LayeredStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.disk.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return s.memory.Set(ctx, key, value, ttl)
}

// Append writes through to disk and drops the memory copy
func (s *LayeredStore) Append(ctx context.Context, key string, value []byte) error {
	if err := s.disk.Append(ctx, key, value); err != nil {
		return err
	}
	return s.memory.Delete(ctx, key)
}

// List reads lists from disk, the source of truth
func (s *LayeredStore) List(ctx context.Context, key string) ([][]byte, error) {
	return s.disk.List(ctx, key)
}

// Incr increments on disk, the source of truth, and drops the memory copy
func (s *LayeredStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.disk.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	_ = s.memory.Delete(ctx, key)
	return n, nil
}

// Delete removes a key from both layers
func (s *LayeredStore) Delete(ctx context.Context, key string) error {
	_ = s.memory.Delete(ctx, key)
	return s.disk.Delete(ctx, key)
}

// Close closes both layers
func (s *LayeredStore) Close() error {
	_ = s.memory.Close()
	return s.disk.Close()
}
