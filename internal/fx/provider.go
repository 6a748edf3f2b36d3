// Package fx supplies the current hard-to-local exchange rate. The ledger
// never depends on it for balance math; the rate is only captured onto
// payment records for local-currency display.
package fx

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoRate indicates no usable rate is available.
var ErrNoRate = errors.New("fx: no exchange rate available")

// RateProvider returns the current hard-to-local rate.
type RateProvider interface {
	CurrentRate(ctx context.Context) (decimal.Decimal, error)
}

// StaticProvider serves a fixed rate, typically from configuration. It is
// the fallback source behind the cached provider.
type StaticProvider struct {
	rate decimal.Decimal
}

// NewStaticProvider builds StaticProvider.
func NewStaticProvider(rate decimal.Decimal) *StaticProvider {
	return &StaticProvider{rate: rate}
}

// CurrentRate implements RateProvider.
func (p *StaticProvider) CurrentRate(ctx context.Context) (decimal.Decimal, error) {
	if p == nil || p.rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrNoRate
	}
	return p.rate, nil
}
