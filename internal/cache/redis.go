package cache

import (
	"context"
	"fmt"
	"time"

	"mqk-dashboard/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis. It returns (nil, nil) when no address is
// configured, which disables cross-instance revalidation.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
