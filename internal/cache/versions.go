// Package cache keeps the version list in Redis between scans.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	versionsKeyPrefix = "sigades:versions:" // sigades:versions:{backend}
	defaultTTL        = 5 * time.Minute
)

// VersionCache stores the sorted version list of one backend.
type VersionCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewClient creates a Redis client for addr.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewVersionCache creates a cache scoped to backend. A non-positive ttl uses five minutes.
func NewVersionCache(client *redis.Client, backend string, ttl time.Duration) *VersionCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &VersionCache{
		client: client,
		key:    versionsKeyPrefix + backend,
		ttl:    ttl,
	}
}

// Get returns the cached list. ok is false on a miss.
func (c *VersionCache) Get(ctx context.Context) (versions []string, ok bool, err error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read version cache: %w", err)
	}
	if err := json.Unmarshal(data, &versions); err != nil {
		return nil, false, fmt.Errorf("failed to decode version cache: %w", err)
	}
	return versions, true, nil
}

// Set stores versions until the TTL expires.
func (c *VersionCache) Set(ctx context.Context, versions []string) error {
	data, err := json.Marshal(versions)
	if err != nil {
		return fmt.Errorf("failed to encode version cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write version cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached list.
func (c *VersionCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate version cache: %w", err)
	}
	return nil
}
