package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one commission payout to a seller. Append-only: payouts are
// never edited, only recorded.
type Payment struct {
	ID          int64
	Number      string
	SellerID    int64
	AmountHard  decimal.Decimal
	LocalRate   decimal.Decimal
	AmountLocal decimal.Decimal
	Reference   string
	PaidAt      time.Time
	CreatedAt   time.Time
}

// SellerSummary aggregates a seller's commission position.
type SellerSummary struct {
	SellerID   int64
	SellerName string
	Earned     decimal.Decimal
	Paid       decimal.Decimal
	Pending    decimal.Decimal
}

// PayInput for recording a payout.
type PayInput struct {
	SellerID  int64
	Amount    decimal.Decimal
	Reference string
}
