package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	c := NewRedisCache(client)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "turf:7", []byte(`{"id":7}`), time.Minute))

		got, ok, err := c.Get(ctx, "turf:7")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"id":7}`, string(got))
		assert.True(t, s.Exists("turfbook:turf:7"))
	})

	t.Run("Miss", func(t *testing.T) {
		_, ok, err := c.Get(ctx, "turf:999")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("TTL", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Second))
		s.FastForward(2 * time.Second)
		_, ok, err := c.Get(ctx, "short")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "turfs", []byte("[]"), time.Minute))
		require.NoError(t, c.Delete(ctx, "turfs", "turf:7"))
		assert.False(t, s.Exists("turfbook:turfs"))
		assert.False(t, s.Exists("turfbook:turf:7"))
		assert.NoError(t, c.Delete(ctx))
	})

	t.Run("NilClient", func(t *testing.T) {
		c := NewRedisCache(nil)
		_, _, err := c.Get(ctx, "x")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("Close", func(t *testing.T) {
		assert.NoError(t, Close(client))
	})
}
