package stats

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/asvronsky/cinemabot/internal/domain"
)

// statsKey is the sorted set holding one score per canonical title.
const statsKey = "cinemabot:stats:titles"

// RedisCounter keeps global per-title search counters in a Redis sorted set.
// ZINCRBY makes the increment a single atomic upsert, so concurrent searches
// for the same title never lose counts.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCounter) Increment(ctx context.Context, title string) error {
	if err := c.client.ZIncrBy(ctx, statsKey, 1, title).Err(); err != nil {
		return fmt.Errorf("incr title counter: %w", err)
	}
	return nil
}

func (c *RedisCounter) Top(ctx context.Context, limit int) ([]domain.TitleCount, error) {
	if limit <= 0 {
		limit = 5
	}

	members, err := c.client.ZRevRangeWithScores(ctx, statsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read title counters: %w", err)
	}

	counts := make([]domain.TitleCount, 0, len(members))
	for _, m := range members {
		title, ok := m.Member.(string)
		if !ok {
			continue
		}
		counts = append(counts, domain.TitleCount{Title: title, Count: int64(m.Score)})
	}
	return counts, nil
}
