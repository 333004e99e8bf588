package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisKVClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore guarda cada slot como lunchbox:storage:<cliente>:<clave>.
type RedisStore struct {
	client  redisKVClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		return nil
	}
	return &RedisStore{
		client:  client,
		prefix:  "lunchbox:storage:",
		ttl:     ttl,
		timeout: 500 * time.Millisecond,
	}
}

func (s *RedisStore) Get(ctx context.Context, clientID, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	val, err := s.client.Get(ctx, s.key(clientID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, clientID, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Set(ctx, s.key(clientID, key), value, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, clientID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.key(clientID, k))
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Del(ctx, full...).Err()
}

func (s *RedisStore) key(clientID, key string) string {
	return s.prefix + strings.TrimSpace(clientID) + ":" + key
}
