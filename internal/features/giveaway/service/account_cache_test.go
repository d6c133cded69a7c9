package service

import (
	"context"
	"testing"

	"giveaway-settlement/internal/common/cache"
	"giveaway-settlement/internal/platform/paystack"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedAccountResolver(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewCacheService(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	inner := &fakeResolver{}
	r := NewCachedAccountResolver(inner, c)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		acct, err := r.ResolveAccount(ctx, "0123456789", "058")
		require.NoError(t, err)
		assert.Equal(t, "ADA LOVELACE", acct.AccountName)
	}
	assert.Equal(t, 1, inner.calls)

	_, err := r.ResolveAccount(ctx, "0123456789", "044")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "keyed by bank code")
}

func TestCachedAccountResolverDoesNotCacheFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewCacheService(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	inner := &fakeResolver{err: paystack.ErrAccountNotResolved}
	r := NewCachedAccountResolver(inner, c)

	_, err := r.ResolveAccount(context.Background(), "0123456789", "058")
	assert.ErrorIs(t, err, paystack.ErrAccountNotResolved)

	inner.err = nil
	_, err = r.ResolveAccount(context.Background(), "0123456789", "058")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
