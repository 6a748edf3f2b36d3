package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/commission"
	"github.com/migarbe/SisConVen-sub000/internal/ledger"
)

// PricingMode marks whether an item was sold at the cash or credit price.
type PricingMode string

const (
	PricingCash   PricingMode = "CASH"
	PricingCredit PricingMode = "CREDIT"
)

// Invoice model. Totals and balance are hard currency.
type Invoice struct {
	ID              int64
	Number          string
	ClientID        int64
	SellerID        *int64
	TotalHard       decimal.Decimal
	BalanceHard     decimal.Decimal
	Status          ledger.Status
	CommissionTotal decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InvoiceItem is one line of an invoice. Commission terms are snapshotted
// from the product at create/edit time so later catalog changes cannot
// rewrite history.
type InvoiceItem struct {
	ID              int64
	InvoiceID       int64
	ProductID       int64
	ProductName     string
	Qty             float64
	UnitPriceHard   decimal.Decimal
	PricingMode     PricingMode
	CommissionType  commission.Type
	CommissionValue decimal.Decimal
	SubtotalHard    decimal.Decimal
}

// CommissionLine is the persisted commission detail for one invoice item.
type CommissionLine struct {
	ID          int64
	InvoiceID   int64
	ProductID   int64
	ProductName string
	AmountHard  decimal.Decimal
}

// Payment against an invoice. LocalRate is captured when the payment is
// recorded and never recomputed.
type Payment struct {
	ID          int64
	Number      string
	InvoiceID   int64
	AmountHard  decimal.Decimal
	LocalRate   decimal.Decimal
	AmountLocal decimal.Decimal
	Method      string
	PaidAt      time.Time
	CreatedAt   time.Time
}

// InvoiceWithDetails bundles an invoice with its lines for reads.
type InvoiceWithDetails struct {
	Invoice
	Items           []InvoiceItem
	CommissionLines []CommissionLine
	Payments        []Payment
}

// ItemInput describes one requested invoice line. Zero UnitPriceHard means
// "use the current catalog price"; commission terms always come from the
// product at snapshot time.
type ItemInput struct {
	ProductID     int64
	Qty           float64
	PricingMode   PricingMode
	UnitPriceHard decimal.Decimal
}

// CreateInvoiceInput for creating invoices.
type CreateInvoiceInput struct {
	ClientID int64
	SellerID *int64
	Items    []ItemInput
}

// EditInvoiceInput replaces an invoice's item set and seller assignment.
type EditInvoiceInput struct {
	SellerID *int64
	Items    []ItemInput
}

// ApplyPaymentInput for recording a payment.
type ApplyPaymentInput struct {
	InvoiceID int64
	Amount    decimal.Decimal
	Method    string
}

// ListInvoicesRequest filters invoice listings.
type ListInvoicesRequest struct {
	Status   ledger.Status
	ClientID int64
	Limit    int
	Offset   int
}
