package service

import (
	"context"
	"fmt"
	"time"

	"giveaway-settlement/internal/common/cache"
	"giveaway-settlement/internal/platform/paystack"
)

const resolvedAccountTTL = 24 * time.Hour

// CachedAccountResolver remembers successful bank account resolutions so repeated joins with
// the same account do not hit the gateway. Failures are never cached.
type CachedAccountResolver struct {
	next  AccountResolver
	cache *cache.CacheService
	ttl   time.Duration
}

func NewCachedAccountResolver(next AccountResolver, c *cache.CacheService) *CachedAccountResolver {
	return &CachedAccountResolver{next: next, cache: c, ttl: resolvedAccountTTL}
}

func (r *CachedAccountResolver) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystack.ResolvedAccount, error) {
	key := fmt.Sprintf("bank_account:%s:%s", bankCode, accountNumber)

	var out paystack.ResolvedAccount
	err := r.cache.GetOrSet(ctx, key, &out, r.ttl, func() (interface{}, error) {
		return r.next.ResolveAccount(ctx, accountNumber, bankCode)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
