package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trackline/shipment-tracker/internal/core/domain"
)

const statsTTL = 30 * time.Second

// StatsCache caches per-owner status counts in Redis. Every shipment write
// invalidates the owner's entry; the TTL only bounds staleness when an
// invalidation is missed.
// Key format: stats:<owner_user_id>
type StatsCache struct {
	client *redis.Client
}

// NewStatsCache creates a StatsCache wrapping the given Redis client.
func NewStatsCache(client *redis.Client) *StatsCache {
	return &StatsCache{client: client}
}

// Get returns the cached counts for the owner, or nil on a miss.
func (c *StatsCache) Get(ctx context.Context, ownerID string) (*domain.StatusCounts, error) {
	raw, err := c.client.Get(ctx, c.key(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("stats cache get: %w", err)
	}

	var counts domain.StatusCounts
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, fmt.Errorf("stats cache decode: %w", err)
	}
	return &counts, nil
}

// Set stores the owner's counts (expires after statsTTL).
func (c *StatsCache) Set(ctx context.Context, ownerID string, counts *domain.StatusCounts) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(ownerID), raw, statsTTL).Err()
}

// Invalidate drops the owner's cached counts.
func (c *StatsCache) Invalidate(ctx context.Context, ownerID string) error {
	return c.client.Del(ctx, c.key(ownerID)).Err()
}

func (c *StatsCache) key(ownerID string) string {
	return "stats:" + ownerID
}
