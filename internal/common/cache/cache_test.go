package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func newCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewCacheService(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestGetSet(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var got item
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)

	require.NoError(t, c.Set(ctx, "k", item{Name: "a"}, time.Minute))
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "a", got.Name)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)

	require.NoError(t, c.Set(ctx, "k", item{Name: "b"}, time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
}

func TestGetOrSet(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	calls := 0
	setter := func() (interface{}, error) {
		calls++
		return item{Name: "resolved"}, nil
	}

	for i := 0; i < 3; i++ {
		var got item
		require.NoError(t, c.GetOrSet(ctx, "k", &got, time.Minute, setter))
		assert.Equal(t, "resolved", got.Name)
	}
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	var got item
	err := c.GetOrSet(ctx, "other", &got, time.Minute, func() (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestGetOrSetWithoutRedis(t *testing.T) {
	c := NewCacheService(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}))

	calls := 0
	var got item
	err := c.GetOrSet(context.Background(), "k", &got, time.Minute, func() (interface{}, error) {
		calls++
		return item{Name: "direct"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", got.Name)
	assert.Equal(t, 1, calls)
}
