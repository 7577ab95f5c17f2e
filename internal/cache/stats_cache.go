package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// StatsKey is the Redis key holding the ticket statistics snapshot.
const StatsKey = "tickets:stats"

// StatsCache stores ticket statistics in Redis. A nil client or a zero ttl
// disables it: reads miss and writes are dropped.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache builds a cache over client.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func (c *StatsCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached snapshot. ok is false on a miss.
func (c *StatsCache) Get(ctx context.Context) (stats domain.TicketStats, ok bool, err error) {
	if !c.enabled() {
		return stats, false, nil
	}
	raw, err := c.client.Get(ctx, StatsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return stats, false, nil
	}
	if err != nil {
		return stats, false, err
	}
	if err := json.Unmarshal(raw, &stats); err != nil {
		return stats, false, err
	}
	return stats, true, nil
}

// Set stores the snapshot with the configured ttl.
func (c *StatsCache) Set(ctx context.Context, stats domain.TicketStats) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, StatsKey, raw, c.ttl).Err()
}

// Invalidate drops the snapshot.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Del(ctx, StatsKey).Err()
}
