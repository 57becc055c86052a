package cache

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "dukastock:idem:"

// RedisIdempotencyStore reserva claves de idempotencia con SETNX y TTL.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyStore crea el cliente Redis.
func NewRedisIdempotencyStore(addr, password string, db int, ttl time.Duration) *RedisIdempotencyStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

func (c *RedisIdempotencyStore) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisIdempotencyStore) Close() error {
	return c.client.Close()
}

func (c *RedisIdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	// Dos intentos: la clave puede expirar entre SETNX y GET.
	for range 2 {
		ok, err := c.client.SetNX(ctx, idempotencyPrefix+key, pendingValue, c.ttl).Result()
		if err != nil {
			return "", false, err
		}
		if ok {
			return "", true, nil
		}
		val, err := c.client.Get(ctx, idempotencyPrefix+key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", false, err
		}
		if val == pendingValue {
			return "", false, nil
		}
		return val, false, nil
	}
	return "", false, nil
}

func (c *RedisIdempotencyStore) Complete(ctx context.Context, key, saleID string) error {
	return c.client.Set(ctx, idempotencyPrefix+key, saleID, c.ttl).Err()
}

func (c *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return c.client.Del(ctx, idempotencyPrefix+key).Err()
}
