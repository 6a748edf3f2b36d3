package directory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/commission"
)

// Client is a customer record looked up by the invoice ledger.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Seller is a salesperson with a default commission configuration. The
// config is read at invoice creation time only; invoices snapshot it.
type Seller struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone"`
	CommissionType  commission.Type `json:"commission_type"`
	CommissionValue decimal.Decimal `json:"commission_value"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ClientInput carries client create/update fields.
type ClientInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// SellerInput carries seller create/update fields.
type SellerInput struct {
	Name            string          `json:"name"`
	Phone           string          `json:"phone"`
	CommissionType  commission.Type `json:"commission_type"`
	CommissionValue decimal.Decimal `json:"commission_value"`
}
