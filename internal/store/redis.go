package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis. The client backs the HTTP rate limiter;
// the relay itself keeps no state in Redis.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
