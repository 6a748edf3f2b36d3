// Package ledger implements the settlement and reconciliation rules shared by
// the invoice and purchase ledgers: payment application with the
// full-settlement clamp, status derivation, and item delta computation.
package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/money"
)

// Status enumerates document settlement states.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPartial Status = "PARTIAL"
	StatusPaid    Status = "PAID"
)

var (
	// ErrInvalidAmount indicates a non-positive payment amount.
	ErrInvalidAmount = errors.New("ledger: amount must be positive")
	// ErrExceedsBalance indicates a payment larger than the remaining balance.
	ErrExceedsBalance = errors.New("ledger: amount exceeds remaining balance")
)

// fullSettleFactor is the share of the balance above which a payment is
// treated as full settlement and clamped to the exact balance. Covers the
// common case of a customer rounding up a near-complete payment.
var fullSettleFactor = decimal.NewFromFloat(0.95)

// StatusFor derives a document status from its total and remaining balance.
func StatusFor(total, balance decimal.Decimal) Status {
	switch {
	case money.IsSettled(balance):
		return StatusPaid
	case balance.LessThan(total):
		return StatusPartial
	default:
		return StatusPending
	}
}

// Apply records a payment of amount against a document with the given total
// and balance. It returns the recorded amount (clamped to the full balance
// when amount is at least 95% of it), the new balance, and the new status.
// No state is touched here; callers persist the result.
func Apply(total, balance, amount decimal.Decimal) (recorded, newBalance decimal.Decimal, st Status, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, balance, StatusFor(total, balance), ErrInvalidAmount
	}
	if money.IsSettled(balance) {
		return decimal.Zero, balance, StatusFor(total, balance), ErrExceedsBalance
	}
	recorded = money.Round(amount)
	if money.Exceeds(recorded, balance) {
		return decimal.Zero, balance, StatusFor(total, balance), ErrExceedsBalance
	}
	if recorded.GreaterThanOrEqual(balance.Mul(fullSettleFactor)) {
		recorded = balance
	}
	newBalance = money.Max(decimal.Zero, balance.Sub(recorded))
	return recorded, newBalance, StatusFor(total, newBalance), nil
}

// Reverse undoes a previously recorded payment, restoring the balance. The
// result is capped at the document total so a reversal can never inflate the
// balance past what is owed.
func Reverse(total, balance, amount decimal.Decimal) (newBalance decimal.Decimal, st Status) {
	newBalance = balance.Add(amount)
	if newBalance.GreaterThan(total) {
		newBalance = total
	}
	return newBalance, StatusFor(total, newBalance)
}
