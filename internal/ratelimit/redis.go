package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "hass-mcp:ratelimit:"

// RedisLimiter is a sliding window limiter over a Redis sorted set per
// key, so several server instances share one budget. Entries are
// scored by request time; expired ones are trimmed on every check.
type RedisLimiter struct {
	client *redis.Client
	config Config
}

// RedisOptions holds the connection settings for the limiter backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisLimiter connects to Redis and verifies the connection.
func NewRedisLimiter(opts RedisOptions, config Config) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisLimiter{
		client: client,
		config: config.normalized(),
	}, nil
}

// Allow trims the window, adds the request, and checks the count in
// one pipeline round trip. The count includes the just-added request,
// so a result over the limit removes it again.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (*Decision, error) {
	fullKey := redisKeyPrefix + key
	now := time.Now()
	windowStart := now.Add(-l.config.Window)
	member := fmt.Sprintf("%d:%s", now.UnixNano(), uuid.NewString())

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, fullKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	pipe.ZAdd(ctx, fullKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	countCmd := pipe.ZCard(ctx, fullKey)
	pipe.Expire(ctx, fullKey, l.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}

	count := int(countCmd.Val())
	decision := &Decision{
		Count:   count,
		Limit:   l.config.Limit,
		Allowed: count <= l.config.Limit,
	}

	if !decision.Allowed {
		if err := l.client.ZRem(ctx, fullKey, member).Err(); err != nil {
			return nil, fmt.Errorf("rate limit rollback: %w", err)
		}
		decision.Count = count - 1
		decision.RetryAfter = l.retryAfter(ctx, fullKey, now)
	}

	decision.Remaining = l.config.Limit - decision.Count
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	return decision, nil
}

// retryAfter derives the wait from the oldest entry still in the
// window. Failures fall back to the full window.
func (l *RedisLimiter) retryAfter(ctx context.Context, fullKey string, now time.Time) time.Duration {
	oldest, err := l.client.ZRangeWithScores(ctx, fullKey, 0, 0).Result()
	if err != nil || len(oldest) == 0 {
		return l.config.Window
	}
	resetAt := time.Unix(0, int64(oldest[0].Score)).Add(l.config.Window)
	retryAfter := resetAt.Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}
	return retryAfter
}

// Reset clears the window for a key.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, redisKeyPrefix+key).Err()
}

// Close closes the Redis connection.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
