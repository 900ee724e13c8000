package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// DiskStore implements persistent storage as one JSON file per key
type DiskStore struct {
	dir string
	mu  sync.Mutex
}

// NewDiskStore creates a new disk store rooted at dir
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

type diskEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data,omitempty"`
	Items     [][]byte  `json:"items,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (e *diskEntry) expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Get retrieves a value from disk
func (s *DiskStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.read(key)
	if err != nil || entry == nil || entry.Data == nil {
		return nil, false, err
	}
	return entry.Data, true, nil
}

// Set stores a value on disk
func (s *DiskStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &diskEntry{Key: key, Data: value}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	return s.write(entry)
}

// Append adds value to the list stored at key
func (s *DiskStore) Append(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.read(key)
	if err != nil {
		return err
	}
	if entry == nil {
		entry = &diskEntry{Key: key}
	}
	entry.Items = append(entry.Items, value)
	return s.write(entry)
}

// List returns the list stored at key
func (s *DiskStore) List(_ context.Context, key string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.read(key)
	if err != nil || entry == nil {
		return nil, err
	}
	return entry.Items, nil
}

// Incr increments the counter stored at key
func (s *DiskStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.read(key)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		entry = &diskEntry{Key: key}
	}
	var n int64
	if entry.Data != nil {
		n, err = strconv.ParseInt(string(entry.Data), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %s is not an integer", key)
		}
	}
	n++
	entry.Data = []byte(strconv.FormatInt(n, 10))
	if err := s.write(entry); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes a key from disk
func (s *DiskStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close is a no-op for disk storage
func (s *DiskStore) Close() error {
	return nil
}

// read returns nil without error when the key is absent or expired
func (s *DiskStore) read(key string) (*diskEntry, error) {
	path := s.path(key)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode store file %s: %w", filepath.Base(path), err)
	}

	if entry.expired() {
		_ = os.Remove(path)
		return nil, nil
	}

	return &entry, nil
}

func (s *DiskStore) write(entry *diskEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	// Write-then-rename keeps readers from seeing partial files
	path := s.path(entry.Key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}

	return nil
}

// path maps a key to a file name that is safe on every filesystem
func (s *DiskStore) path(key string) string {
	return filepath.Join(s.dir, HashKey("kv", key)[len("factlens:v1:kv:"):]+".json")
}
