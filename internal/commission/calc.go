// Package commission computes seller commissions and tracks their payout.
package commission

import (
	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/money"
)

// Type enumerates how a commission value is interpreted.
type Type string

const (
	// TypePercent applies the value as a percentage of the item subtotal.
	TypePercent Type = "PERCENT"
	// TypeFixed applies the value per unit sold.
	TypeFixed Type = "FIXED"
)

// ItemTerms carries the commission-relevant slice of an invoice item.
type ItemTerms struct {
	ProductID   int64
	ProductName string
	Qty         float64
	Subtotal    decimal.Decimal
	Type        Type
	Value       decimal.Decimal
}

// Detail is the computed commission for one item.
type Detail struct {
	ProductID   int64
	ProductName string
	Amount      decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Compute returns per-item commission details and their total. Items with a
// zero configured value are excluded. Without an assigned seller there is
// nobody to earn a commission, so the result is empty. The caller snapshots
// the result onto the invoice; it is never recomputed retroactively.
func Compute(items []ItemTerms, sellerAssigned bool) ([]Detail, decimal.Decimal) {
	if !sellerAssigned {
		return nil, decimal.Zero
	}
	var details []Detail
	total := decimal.Zero
	for _, it := range items {
		if it.Value.LessThanOrEqual(decimal.Zero) {
			continue
		}
		var amount decimal.Decimal
		switch it.Type {
		case TypeFixed:
			amount = it.Value.Mul(decimal.NewFromFloat(it.Qty))
		default:
			amount = it.Subtotal.Mul(it.Value).Div(hundred)
		}
		amount = money.Round(amount)
		details = append(details, Detail{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Amount:      amount,
		})
		total = total.Add(amount)
	}
	return details, total
}
