package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const counterPrefix = "count:"

// Counters tracks how many analyses each user has run
type Counters struct {
	store Store
}

// NewCounters creates a counter registry on top of s
func NewCounters(s Store) *Counters {
	return &Counters{store: s}
}

// Increment bumps the user's analysis count and returns the new value
func (c *Counters) Increment(ctx context.Context, userID string) (int64, error) {
	key, err := counterKey(userID)
	if err != nil {
		return 0, err
	}
	return c.store.Incr(ctx, key)
}

// Get returns the user's analysis count; unknown users have zero
func (c *Counters) Get(ctx context.Context, userID string) (int64, error) {
	key, err := counterKey(userID)
	if err != nil {
		return 0, err
	}

	raw, found, err := c.store.Get(ctx, key)
	if err != nil || !found {
		return 0, err
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt counter %s: %w", key, err)
	}
	return n, nil
}

func counterKey(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	return counterPrefix + userID, nil
}
