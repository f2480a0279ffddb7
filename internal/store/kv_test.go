package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestRedisKVGetSet(t *testing.T) {
	kv, mr := newTestKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "session:abc", "42", time.Minute))
	val, err := kv.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, "42", val)

	// TTL expiry turns the key back into a miss.
	mr.FastForward(2 * time.Minute)
	_, err = kv.Get(ctx, "session:abc")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKVSetNX(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	ok, err := kv.SetNX(ctx, "oauth:state:xyz", "7", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = kv.SetNX(ctx, "oauth:state:xyz", "8", 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	val, err := kv.Get(ctx, "oauth:state:xyz")
	require.NoError(t, err)
	assert.Equal(t, "7", val)
}

func TestRedisKVDelete(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", 0))
	require.NoError(t, kv.Delete(ctx, "k"))
	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKVScanKeys(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "session:a", "1", 0))
	require.NoError(t, kv.Set(ctx, "session:b", "2", 0))
	require.NoError(t, kv.Set(ctx, "other:c", "3", 0))

	keys, err := kv.ScanKeys(ctx, "session:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"session:a", "session:b"}, keys)
}
