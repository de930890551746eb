package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pet-offers:"

// Redis keeps key/value state (the rotation pointer) in Redis so several
// bot instances share it.
type Redis struct {
	rdb *redis.Client
}

// NewRedis creates and verifies a Redis client.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Redis{rdb: rdb}, nil
}

// GetSetting returns ErrNotFound for a missing key.
func (r *Redis) GetSetting(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *Redis) SetSetting(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
