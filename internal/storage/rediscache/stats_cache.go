// Package rediscache layers a short-lived Redis cache over the stats
// aggregator. Stats are derived reads, so a stale entry within the TTL
// is acceptable and cache failures degrade to the underlying provider.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MeshanKhosla/convex-queue/internal/domain"
	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "queue:stats:"

// StatsProvider is the read side being cached.
type StatsProvider interface {
	GetQueueStats(ctx context.Context, queueID string) (domain.QueueStats, error)
}

type StatsCache struct {
	provider StatsProvider
	client   *redis.Client
	ttl      time.Duration
}

func NewStatsCache(provider StatsProvider, client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{
		provider: provider,
		client:   client,
		ttl:      ttl,
	}
}

// GetQueueStats serves from Redis when a fresh entry exists, falling
// back to the provider and repopulating the cache otherwise.
func (c *StatsCache) GetQueueStats(ctx context.Context, queueID string) (domain.QueueStats, error) {
	key := statsKeyPrefix + queueID

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil && cached != "" {
		var stats domain.QueueStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return stats, nil
		}
	}

	stats, err := c.provider.GetQueueStats(ctx, queueID)
	if err != nil {
		return domain.QueueStats{}, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		c.client.Set(ctx, key, payload, c.ttl)
	}
	return stats, nil
}
