package fx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const rateKey = "fx:rate:usd_ves"

// CachedProvider decorates a RateProvider with a redis cache. Concurrent
// cache misses collapse into a single upstream fetch.
type CachedProvider struct {
	inner RateProvider
	rdb   *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedProvider builds CachedProvider.
func NewCachedProvider(inner RateProvider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl}
}

// CurrentRate implements RateProvider.
func (p *CachedProvider) CurrentRate(ctx context.Context) (decimal.Decimal, error) {
	val, err := p.rdb.Get(ctx, rateKey).Result()
	if err == nil {
		if rate, perr := decimal.NewFromString(val); perr == nil && rate.GreaterThan(decimal.Zero) {
			return rate, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return decimal.Zero, err
	}

	v, err, _ := p.group.Do(rateKey, func() (any, error) {
		rate, err := p.inner.CurrentRate(ctx)
		if err != nil {
			return decimal.Zero, err
		}
		if err := p.rdb.Set(ctx, rateKey, rate.String(), p.ttl).Err(); err != nil {
			return decimal.Zero, err
		}
		return rate, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return v.(decimal.Decimal), nil
}

// SetRate records a manual rate override. It stays until the next refresh
// replaces it.
func (p *CachedProvider) SetRate(ctx context.Context, rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return ErrNoRate
	}
	return p.rdb.Set(ctx, rateKey, rate.String(), 0).Err()
}

// Refresh drops the cached value and re-primes it from the inner provider.
func (p *CachedProvider) Refresh(ctx context.Context) (decimal.Decimal, error) {
	if err := p.rdb.Del(ctx, rateKey).Err(); err != nil {
		return decimal.Zero, err
	}
	return p.CurrentRate(ctx)
}
