// Package store is the key-value capability behind counters, leads and the
// last-feedback cache. The analysis core never touches it directly.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by helpers that require a key to exist
var ErrNotFound = errors.New("key not found")

// Store defines the key-value operations used by the collaborators
type Store interface {
	// Get returns the value for key; found is false when it is absent or expired
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value; ttl 0 keeps it forever
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Append adds value to the end of the list stored at key
	Append(ctx context.Context, key string, value []byte) error

	// List returns every value appended at key, oldest first
	List(ctx context.Context, key string) ([][]byte, error)

	// Incr atomically increments the integer counter at key
	Incr(ctx context.Context, key string) (int64, error)

	// Delete removes key (value, list or counter)
	Delete(ctx context.Context, key string) error

	// Close releases backend resources
	Close() error
}

// HashKey derives a filesystem- and redis-safe key from arbitrary input (e.g. a URL)
func HashKey(namespace, raw string) string {
	hash := sha256.Sum256([]byte(raw))
	return "factlens:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// Options selects and configures a backend
type Options struct {
	Backend  string // memory, disk, layered, redis
	Dir      string
	RedisURL string
}

// Open creates the configured backend
func Open(opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "memory", "":
		return NewMemoryStore(), nil

	case "disk":
		dir, err := expandHome(opts.Dir)
		if err != nil {
			return nil, err
		}
		return NewDiskStore(dir), nil

	case "layered":
		dir, err := expandHome(opts.Dir)
		if err != nil {
			return nil, err
		}
		return NewLayeredStore(NewMemoryStore(), NewDiskStore(dir)), nil

	case "redis":
		return NewRedisStore(opts.RedisURL)

	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: memory, disk, layered, redis)", opts.Backend)
	}
}

func expandHome(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("store directory is required")
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(dir, "~")), nil
	}
	return dir, nil
}
