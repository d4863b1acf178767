//go:build integration

package containers

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer wraps a testcontainers Redis instance.
type RedisContainer struct {
	URL    string
	Client *redis.Client
}

var (
	redisOnce sync.Once
	redisInst *RedisContainer
	redisErr  error
)

// GetRedis returns the shared Redis container, starting it on first use.
func GetRedis(t *testing.T) *RedisContainer {
	t.Helper()

	redisOnce.Do(func() {
		redisInst, redisErr = startRedis()
	})
	if redisErr != nil {
		t.Fatalf("failed to start redis container: %v", redisErr)
	}
	return redisInst
}

func startRedis() (*RedisContainer, error) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return nil, fmt.Errorf("run container: %w", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		return nil, fmt.Errorf("connection string: %w", err)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &RedisContainer{URL: url, Client: client}, nil
}

// FlushAll removes every key. Use between tests for isolation.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
