// internal/common/database/redis_test.go
package database

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newMockRedis(t *testing.T) (*RedisClient, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	t.Cleanup(func() { client.Close() })
	return NewRedisFromClient(client), mock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestRedisClient_SetAndGet(t *testing.T) {
	rc, mock := newMockRedis(t)
	ctx := context.Background()

	mock.ExpectSet("weather:tokyo", "cached", 30*time.Minute).SetVal("OK")
	mock.ExpectGet("weather:tokyo").SetVal("cached")

	require.NoError(t, rc.Set(ctx, "weather:tokyo", "cached", 30*time.Minute))

	val, err := rc.Get(ctx, "weather:tokyo")
	require.NoError(t, err)
	assert.Equal(t, "cached", val)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Del(t *testing.T) {
	rc, mock := newMockRedis(t)

	mock.ExpectDel("weather:tokyo", "weather:paris").SetVal(2)

	require.NoError(t, rc.Del(context.Background(), "weather:tokyo", "weather:paris"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Ping(t *testing.T) {
	rc, mock := newMockRedis(t)

	mock.ExpectPing().SetVal("PONG")

	require.NoError(t, rc.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_PingFailure(t *testing.T) {
	rc, mock := newMockRedis(t)

	mock.ExpectPing().SetErr(assert.AnError)

	err := rc.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
