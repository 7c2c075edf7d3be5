// Package redisstore persists client state in Redis, for deployments where the service
// runs without a writable data folder.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jrsteele09/aquamind/storage"
)

const defaultPrefix = "aquamind:"

var _ storage.Storage = (*Storage)(nil)

type Storage struct {
	client redis.UniversalClient
	prefix string
}

func New(client redis.UniversalClient) *Storage {
	return &Storage{client: client, prefix: defaultPrefix}
}

// Dial connects to addr and verifies the server answers before returning.
func Dial(ctx context.Context, addr string) (*Storage, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return New(client), nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}
