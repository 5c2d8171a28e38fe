package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ArgumentLimiter throttles argument submissions per user per debate
// using a Redis counter with a sliding expiry window. With no Redis
// configured the limiter is disabled and every submission is allowed.
type ArgumentLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

// Config defines the submission limits.
type Config struct {
	MaxArguments int           // per window
	Window       time.Duration // counting window
}

// DefaultConfig returns the default submission limits.
func DefaultConfig() Config {
	return Config{
		MaxArguments: 5,
		Window:       30 * time.Second,
	}
}

// New creates a limiter on the given Redis address. An empty address
// returns a disabled limiter.
func New(addr, password string, db int, cfg Config) (*ArgumentLimiter, error) {
	if addr == "" {
		return &ArgumentLimiter{max: cfg.MaxArguments, window: cfg.Window}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &ArgumentLimiter{rdb: rdb, max: cfg.MaxArguments, window: cfg.Window}, nil
}

// Allow records a submission attempt and reports whether it is within
// the limit. Errors fail open: a broken limiter never blocks debates.
func (l *ArgumentLimiter) Allow(ctx context.Context, debateID, userID string) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rate:argument:%s:%s", debateID, userID)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, l.window)
	}
	return count <= int64(l.max), nil
}
