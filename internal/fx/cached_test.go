package fx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	rate  decimal.Decimal
	calls int
}

func (p *countingProvider) CurrentRate(ctx context.Context) (decimal.Decimal, error) {
	p.calls++
	return p.rate, nil
}

func newTestCache(t *testing.T, inner RateProvider) (*CachedProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCachedProvider(inner, rdb, time.Minute), mr
}

func TestCachedProviderPrimesAndReuses(t *testing.T) {
	inner := &countingProvider{rate: decimal.NewFromFloat(36.50)}
	cache, _ := newTestCache(t, inner)
	ctx := context.Background()

	first, err := cache.CurrentRate(ctx)
	require.NoError(t, err)
	require.True(t, first.Equal(inner.rate))

	second, err := cache.CurrentRate(ctx)
	require.NoError(t, err)
	require.True(t, second.Equal(inner.rate))
	require.Equal(t, 1, inner.calls)
}

func TestCachedProviderExpiry(t *testing.T) {
	inner := &countingProvider{rate: decimal.NewFromFloat(36.50)}
	cache, mr := newTestCache(t, inner)
	ctx := context.Background()

	_, err := cache.CurrentRate(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.CurrentRate(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestSetRateOverridesCache(t *testing.T) {
	inner := &countingProvider{rate: decimal.NewFromFloat(36.50)}
	cache, _ := newTestCache(t, inner)
	ctx := context.Background()

	override := decimal.NewFromFloat(40.25)
	require.NoError(t, cache.SetRate(ctx, override))

	rate, err := cache.CurrentRate(ctx)
	require.NoError(t, err)
	require.True(t, rate.Equal(override))
	require.Zero(t, inner.calls)
}

func TestSetRateRejectsNonPositive(t *testing.T) {
	cache, _ := newTestCache(t, &countingProvider{rate: decimal.NewFromInt(1)})
	require.ErrorIs(t, cache.SetRate(context.Background(), decimal.Zero), ErrNoRate)
}

func TestRefreshRePrimes(t *testing.T) {
	inner := &countingProvider{rate: decimal.NewFromFloat(36.50)}
	cache, _ := newTestCache(t, inner)
	ctx := context.Background()

	require.NoError(t, cache.SetRate(ctx, decimal.NewFromFloat(99.99)))

	rate, err := cache.Refresh(ctx)
	require.NoError(t, err)
	require.True(t, rate.Equal(inner.rate))
	require.Equal(t, 1, inner.calls)
}
