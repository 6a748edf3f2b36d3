// Package money centralises the monetary arithmetic policy: all amounts are
// shopspring decimals rounded to two places, and near-zero balances are
// treated as settled within a fixed epsilon.
package money

import "github.com/shopspring/decimal"

// Epsilon is the tolerance, in hard currency, under which a balance counts
// as settled. Stated once here so every comparison agrees.
var Epsilon = decimal.New(1, -2) // 0.01

// Round normalises an amount to cent precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsSettled reports whether a balance is zero within Epsilon.
func IsSettled(balance decimal.Decimal) bool {
	return balance.Abs().LessThanOrEqual(Epsilon)
}

// Exceeds reports whether amount is greater than limit by more than Epsilon.
func Exceeds(amount, limit decimal.Decimal) bool {
	return amount.Sub(limit).GreaterThan(Epsilon)
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
