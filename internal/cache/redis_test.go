// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &RedisStore{client: client, logger: zerolog.Nop()}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	rs := setupMiniRedis(t)
	ctx := context.Background()

	_, _, err := rs.Load(ctx)
	assert.ErrorIs(t, err, ErrNoPayload)

	payload := []byte(`{"channels":[{"id":"CanalOnce.mx"}],"streams":[]}`)
	require.NoError(t, rs.Save(ctx, payload))

	data, savedAt, err := rs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.WithinDuration(t, time.Now(), savedAt, 5*time.Second)
	assert.True(t, Fresh(savedAt, time.Minute))
}

func TestRedisStoreStalePayloadStillLoads(t *testing.T) {
	rs := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, rs.Save(ctx, []byte("payload")))

	// Force the saved-at marker into the past; the payload itself must
	// remain readable for stale fallback.
	old := time.Now().Add(-2 * time.Hour).Format(time.RFC3339Nano)
	require.NoError(t, rs.client.Set(ctx, redisSavedAtKey, old, 0).Err())

	data, savedAt, err := rs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	assert.False(t, Fresh(savedAt, 30*time.Minute))
}

func TestRedisStoreHealthCheck(t *testing.T) {
	rs := setupMiniRedis(t)
	assert.NoError(t, rs.HealthCheck(context.Background()))
}
