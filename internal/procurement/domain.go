package procurement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/ledger"
)

// Purchase is a supplier purchase: stock received against a debt tracked in
// hard currency. Item costs are entered in local currency and converted at
// the rate captured when the purchase is created.
type Purchase struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	SupplierName  string          `json:"supplier_name"`
	TotalDebtHard decimal.Decimal `json:"total_debt_hard"`
	BalanceHard   decimal.Decimal `json:"balance_hard"`
	Status        ledger.Status   `json:"status"`
	LocalRate     decimal.Decimal `json:"local_rate"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PurchaseItem is one received product line.
type PurchaseItem struct {
	ID            int64           `json:"id"`
	PurchaseID    int64           `json:"purchase_id"`
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Qty           float64         `json:"qty"`
	UnitCostLocal decimal.Decimal `json:"unit_cost_local"`
	UnitCostHard  decimal.Decimal `json:"unit_cost_hard"`
	SubtotalHard  decimal.Decimal `json:"subtotal_hard"`
}

// Payment is a debt payment against a purchase.
type Payment struct {
	ID          int64           `json:"id"`
	Number      string          `json:"number"`
	PurchaseID  int64           `json:"purchase_id"`
	AmountHard  decimal.Decimal `json:"amount_hard"`
	LocalRate   decimal.Decimal `json:"local_rate"`
	AmountLocal decimal.Decimal `json:"amount_local"`
	Method      string          `json:"method"`
	PaidAt      time.Time       `json:"paid_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PurchaseWithDetails bundles a purchase with its lines and payments.
type PurchaseWithDetails struct {
	Purchase
	Items    []PurchaseItem `json:"items"`
	Payments []Payment      `json:"payments"`
}

// ItemInput describes one received line. UnitCostLocal is the supplier's
// price in local currency.
type ItemInput struct {
	ProductID     int64           `json:"product_id"`
	Qty           float64         `json:"qty"`
	UnitCostLocal decimal.Decimal `json:"unit_cost_local"`
}

// CreatePurchaseInput carries a new purchase.
type CreatePurchaseInput struct {
	SupplierName string      `json:"supplier_name"`
	Items        []ItemInput `json:"items"`
}

// EditPurchaseInput replaces the item set of an unpaid purchase.
type EditPurchaseInput struct {
	SupplierName string      `json:"supplier_name"`
	Items        []ItemInput `json:"items"`
}

// ApplyPaymentInput carries a debt payment.
type ApplyPaymentInput struct {
	PurchaseID int64
	Amount     decimal.Decimal
	Method     string
}

// ListPurchasesRequest filters purchase listings.
type ListPurchasesRequest struct {
	Status ledger.Status
	Limit  int
	Offset int
}
