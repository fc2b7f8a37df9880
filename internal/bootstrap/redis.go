package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/prospect-pipeline/internal/config"
)

// redisPingTimeout bounds the connection test at startup.
const redisPingTimeout = 5 * time.Second

// SetupRedis creates a Redis client for event publishing. Returns nil when
// Redis is disabled; the service then runs without lifecycle events.
func SetupRedis(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", pingErr)
	}

	return client, nil
}
