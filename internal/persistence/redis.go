package persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/user-directory/internal/config"
)

// Redis owns the go-redis client behind the redis user store.
type Redis struct {
	client *redis.Client
}

// OpenRedis creates the client and waits until the server answers PING.
func OpenRedis(ctx context.Context, cfg config.RedisConfig, attempts int, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	r := &Redis{client: client}

	log := logger.With(zap.String("dependency", "redis"), zap.String("addr", cfg.Addr))
	if err := waitForPing(ctx, r.Ping, attempts, log); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	log.Info("connected", zap.Int("db", cfg.DB))
	return r, nil
}

// Client returns the underlying client.
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Ping reports whether the server answers; used by the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
