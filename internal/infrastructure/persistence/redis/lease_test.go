package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client), mr
}

func TestLease_AcquireAndExtend(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	lease := NewLease(cache, "chat-42", 20*time.Minute, nil)

	ok, err := lease.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, lease.Held())

	value, err := mr.Get("lock:chat-42")
	require.NoError(t, err)
	assert.Equal(t, lease.Token(), value)

	mr.FastForward(15 * time.Minute)

	ok, err = lease.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20*time.Minute, mr.TTL("lock:chat-42"))
}

func TestLease_SecondHolderIsRejected(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	first := NewLease(cache, "chat-42", time.Minute, nil)
	second := NewLease(cache, "chat-42", time.Minute, nil)
	require.NotEqual(t, first.Token(), second.Token())

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, second.Held())

	// Release by a non-holder leaves the lease intact.
	require.NoError(t, second.Release(ctx))
	value, err := mr.Get("lock:chat-42")
	require.NoError(t, err)
	assert.Equal(t, first.Token(), value)

	require.NoError(t, first.Release(ctx))
	assert.False(t, mr.Exists("lock:chat-42"))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLease_TakeoverAfterExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	first := NewLease(cache, "chat-42", time.Minute, nil)
	second := NewLease(cache, "chat-42", time.Minute, nil)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = first.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, first.Held())
}

func TestLease_RedisDown(t *testing.T) {
	cache, mr := newTestCache(t)
	lease := NewLease(cache, "chat-42", time.Minute, nil)
	mr.Close()

	ok, err := lease.Acquire(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
}

func TestCache_SetNXValidation(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, err := cache.SetNX(ctx, "", "v", time.Minute)
	assert.ErrorIs(t, err, ErrCacheKeyEmpty)

	_, err = cache.SetNX(ctx, "k", "v", 0)
	assert.ErrorIs(t, err, ErrCacheInvalidTTL)
}

func TestNewCacheFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cache, err := NewCacheFromURL(ctx, "redis://"+mr.Addr()+"/0", DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	assert.NoError(t, cache.Ping(ctx))
	assert.Equal(t, 2, cache.Client().Options().PoolSize)

	_, err = NewCacheFromURL(ctx, "http://not-redis", DefaultConfig())
	assert.ErrorIs(t, err, ErrCacheConnection)
}
