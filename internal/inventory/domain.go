package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/commission"
)

// Product model. Monetary fields are hard currency unless suffixed Local.
type Product struct {
	ID                int64
	Name              string
	StockQty          float64
	SalePriceHard     decimal.Decimal
	PurchaseCostLocal decimal.Decimal
	LastUnitCostLocal decimal.Decimal
	CommissionType    commission.Type
	CommissionValue   decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProductInput for creating or updating product master data. Stock only
// moves through the stock operations after creation.
type ProductInput struct {
	Name              string
	SalePriceHard     decimal.Decimal
	PurchaseCostLocal decimal.Decimal
	CommissionType    commission.Type
	CommissionValue   decimal.Decimal
	InitialStock      float64
}
