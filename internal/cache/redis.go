// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	redisPayloadKey = "canalview:payload"
	redisSavedAtKey = "canalview:payload:at"
)

// RedisStore keeps the payload in Redis. The payload has no key TTL — stale
// fallback needs expired payloads to stay readable — so freshness comes from
// a saved-at timestamp stored alongside.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig, logger zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis cache")

	return &RedisStore{client: client, logger: logger}, nil
}

// Load reads the payload and its save time.
func (rs *RedisStore) Load(ctx context.Context) ([]byte, time.Time, error) {
	data, err := rs.client.Get(ctx, redisPayloadKey).Bytes()
	if err == redis.Nil {
		return nil, time.Time{}, ErrNoPayload
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("redis get payload: %w", err)
	}

	savedAt := time.Time{}
	if raw, err := rs.client.Get(ctx, redisSavedAtKey).Result(); err == nil {
		if t, perr := time.Parse(time.RFC3339Nano, raw); perr == nil {
			savedAt = t
		} else {
			rs.logger.Warn().Str("value", raw).Msg("unparseable cache timestamp, treating payload as stale")
		}
	}
	return data, savedAt, nil
}

// Save replaces the payload and its save time.
func (rs *RedisStore) Save(ctx context.Context, data []byte) error {
	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, redisPayloadKey, data, 0)
	pipe.Set(ctx, redisSavedAtKey, time.Now().Format(time.RFC3339Nano), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save payload: %w", err)
	}
	return nil
}

// HealthCheck pings Redis.
func (rs *RedisStore) HealthCheck(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
