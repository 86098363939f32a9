package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStoreWithClient(client)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestRedisStore_GetMiss(t *testing.T) {
	store, _ := setupMiniRedis(t)

	_, err := store.Get(context.Background(), "campaign:missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisStore_SetExpires(t *testing.T) {
	store, mr := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "campaign:1", []byte(`{"id":"1"}`), 10*time.Minute))

	data, err := store.Get(ctx, "campaign:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(data))
	assert.Equal(t, 10*time.Minute, mr.TTL("campaign:1"))

	mr.FastForward(11 * time.Minute)

	_, err = store.Get(ctx, "campaign:1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisStore_DelPattern(t *testing.T) {
	store, mr := setupMiniRedis(t)
	ctx := context.Background()

	for _, key := range []string{"user:1:campaigns", "user:1:campaigns:page:2", "user:1:campaign:stats", "user:2:campaigns"} {
		require.NoError(t, mr.Set(key, "x"))
	}

	require.NoError(t, store.DelPattern(ctx, "user:1:campaigns*"))

	assert.False(t, mr.Exists("user:1:campaigns"))
	assert.False(t, mr.Exists("user:1:campaigns:page:2"))
	assert.True(t, mr.Exists("user:1:campaign:stats"))
	assert.True(t, mr.Exists("user:2:campaigns"))
}

func TestCache_RedisInvalidateUserResource(t *testing.T) {
	store, mr := setupMiniRedis(t)
	ctx := context.Background()
	c := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	c.Set(ctx, UserKey(1, "campaigns"), []string{"a"}, time.Minute)
	c.Set(ctx, UserKey(1, "segments"), []string{"b"}, time.Minute)

	c.InvalidateUserResource(ctx, 1, "campaigns")

	assert.False(t, mr.Exists(UserKey(1, "campaigns")))
	assert.True(t, mr.Exists(UserKey(1, "segments")))
}

func TestCache_RedisOutageIsAMiss(t *testing.T) {
	store, mr := setupMiniRedis(t)
	ctx := context.Background()
	c := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mr.Close()

	var out []string
	assert.False(t, c.Get(ctx, "campaign:1", &out))
	assert.Error(t, c.Ping(ctx))
}
