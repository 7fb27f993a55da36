// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/tagback/internal/config"
)

const (
	redisClientName  = "tagback"
	redisPingTimeout = 2 * time.Second
)

// Redis backs the rate limiter buckets and the contact notification queue.
// Timeouts are short because both callers have a local or decoy answer to
// fall back on.
type Redis struct {
	Client *redis.Client
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	r := &Redis{Client: client}

	if err := r.Ping(ctx); err != nil {
		_ = client.Close() //nolint:errcheck // connect already failed
		return nil, err
	}

	return r, nil
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.ClientName = redisClientName
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.CommandTimeout > 0 {
		opts.ReadTimeout = cfg.CommandTimeout
		opts.WriteTimeout = cfg.CommandTimeout
		opts.PoolTimeout = cfg.CommandTimeout + time.Second
	}

	return opts, nil
}

func (r *Redis) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}
