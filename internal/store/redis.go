package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/smokyabdulrahman/vakit/internal/config"
)

// RedisKey holds the JSON document.
const RedisKey = "vakit:preferences"

// Redis keeps the document as a single JSON value, so several hosts can
// share one location and schedule.
type Redis struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

var _ Backend = (*Redis)(nil)

// OpenRedis connects using a redis:// URL and pings the server.
func OpenRedis(ctx context.Context, url string, logger *zap.Logger) (*Redis, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	logger.Debug("redis store ready", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return NewRedis(client, logger), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, key: RedisKey, logger: logger}
}

func (r *Redis) Load(ctx context.Context) (*config.Config, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		cfg := config.Defaults()
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return config.Decode(data, "redis:"+r.key)
}

func (r *Redis) Save(ctx context.Context, cfg *config.Config) error {
	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
