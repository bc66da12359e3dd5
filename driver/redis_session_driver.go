package driver

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionDriver stores opaque session payloads in Redis with a sliding TTL.
type RedisSessionDriver struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionDriver(client *redis.Client, ttl time.Duration) *RedisSessionDriver {
	return &RedisSessionDriver{
		client: client,
		ttl:    ttl,
	}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, &DriverError{
			Op:  "NewRedisClient",
			Err: "failed to parse redis URL: " + err.Error(),
		}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, &DriverError{
			Op:  "NewRedisClient",
			Err: "failed to ping redis: " + err.Error(),
		}
	}

	return client, nil
}

func (d *RedisSessionDriver) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := d.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, &DriverError{
			Op:  "RedisSessionDriver.Get",
			Err: err.Error(),
		}
	}
	return value, nil
}

func (d *RedisSessionDriver) Set(ctx context.Context, key string, value []byte) error {
	if err := d.client.Set(ctx, key, value, d.ttl).Err(); err != nil {
		return &DriverError{
			Op:  "RedisSessionDriver.Set",
			Err: err.Error(),
		}
	}
	return nil
}

func (d *RedisSessionDriver) Close() error {
	return d.client.Close()
}
