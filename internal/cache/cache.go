// Package cache maintains the redis-backed roster view cache. Screens that
// display the registry cache their rendered views under roster:view:*; a
// completed bulk import drops every such key so operators see the imported
// records immediately.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// viewKeyPattern matches every cached roster view.
const viewKeyPattern = "roster:view:*"

// scanBatch is how many keys a single SCAN iteration requests.
const scanBatch = 200

// RosterCache invalidates and serves cached roster views.
type RosterCache struct {
	client *redis.Client
}

// New creates a roster cache over an existing redis client.
func New(client *redis.Client) *RosterCache {
	return &RosterCache{client: client}
}

// Connect dials redis from an address and verifies the connection.
func Connect(ctx context.Context, addr string) (*RosterCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(client), nil
}

// InvalidateRoster removes every cached roster view.
func (c *RosterCache) InvalidateRoster(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, viewKeyPattern, scanBatch).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan roster views: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete roster views: %w", err)
	}
	return nil
}

// GetView returns a cached roster view, or "" on a miss.
func (c *RosterCache) GetView(ctx context.Context, name string) (string, error) {
	val, err := c.client.Get(ctx, "roster:view:"+name).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get roster view: %w", err)
	}
	return val, nil
}

// SetView caches a rendered roster view with a TTL.
func (c *RosterCache) SetView(ctx context.Context, name, payload string, ttl time.Duration) error {
	if err := c.client.Set(ctx, "roster:view:"+name, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set roster view: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *RosterCache) Close() error {
	return c.client.Close()
}
