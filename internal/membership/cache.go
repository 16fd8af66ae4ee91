package membership

import (
	"context"
	"fmt"
	"time"

	"club-la-victoria/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// Cache stores terminal outcomes by member id. NetworkFailure is never stored.
type Cache interface {
	Get(ctx context.Context, id string) (Outcome, bool, error)
	Set(ctx context.Context, id string, outcome Outcome) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(id string) string {
	return "member:" + id
}

func (c *RedisCache) Get(ctx context.Context, id string) (Outcome, bool, error) {
	val, err := c.client.Get(ctx, cacheKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cache get: %w", err)
	}

	switch Outcome(val) {
	case OutcomeValid, OutcomeInvalid:
		return Outcome(val), true, nil
	default:
		return "", false, nil
	}
}

func (c *RedisCache) Set(ctx context.Context, id string, outcome Outcome) error {
	if outcome != OutcomeValid && outcome != OutcomeInvalid {
		return nil
	}
	if err := c.client.Set(ctx, cacheKey(id), string(outcome), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
