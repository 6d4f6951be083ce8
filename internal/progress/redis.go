package progress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

// RedisTracker shares progress between instances behind a load balancer.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTracker(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client, ttl: defaultTTL}
}

// NewRedisTrackerFromURL parses a redis:// URL and checks the connection.
func NewRedisTrackerFromURL(ctx context.Context, url string) (*RedisTracker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisTracker(client), nil
}

func key(uploadID uuid.UUID) string {
	return "payments:upload:" + uploadID.String() + ":progress"
}

func (t *RedisTracker) Set(ctx context.Context, uploadID uuid.UUID, percent int) error {
	return t.client.Set(ctx, key(uploadID), percent, t.ttl).Err()
}

func (t *RedisTracker) Get(ctx context.Context, uploadID uuid.UUID) (int, bool, error) {
	v, err := t.client.Get(ctx, key(uploadID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt progress value %q: %w", v, err)
	}
	return n, true, nil
}

func (t *RedisTracker) Close() error {
	return t.client.Close()
}
