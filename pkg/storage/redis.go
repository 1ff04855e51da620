package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/huettenzauber/kiosk/pkg/redis"
)

type redisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Key(parts ...string) string
}

// RedisStore keeps values under <namespace>:<origin>:<key>.
type RedisStore struct {
	client redisClient
	origin string
}

// NewRedisStore scopes a redis client to one device origin.
func NewRedisStore(client *redis.Client, origin string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if origin == "" {
		return nil, fmt.Errorf("origin required")
	}
	return &RedisStore{client: client, origin: origin}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.client.Key(s.origin, key))
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.client.Key(s.origin, key), value); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.client.Key(s.origin, key)); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
