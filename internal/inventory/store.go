package inventory

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientStock indicates a reservation larger than available stock.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
	// ErrProductNotFound indicates an unknown product id.
	ErrProductNotFound = errors.New("inventory: product not found")
)

// StockTx is the slice of a repository transaction the stock store needs.
// The invoice and purchase ledgers embed it in their own transaction ports so
// stock moves inside the same transaction as the document mutation.
type StockTx interface {
	GetProductForUpdate(ctx context.Context, id int64) (Product, error)
	UpdateProductStock(ctx context.Context, id int64, qty float64) error
	UpdateProductStockCost(ctx context.Context, id int64, qty float64, lastUnitCostLocal decimal.Decimal) error
}

// Store performs atomic stock movements on locked product rows. Each method
// must be called exactly once per logical state transition; the calling
// ledger owns that discipline.
type Store struct{}

// Reserve decrements stock for a sale. Fails before mutating when the
// requested quantity exceeds what is available.
func (Store) Reserve(ctx context.Context, tx StockTx, productID int64, qty float64) (float64, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	p, err := tx.GetProductForUpdate(ctx, productID)
	if err != nil {
		return 0, err
	}
	if qty > p.StockQty {
		return p.StockQty, ErrInsufficientStock
	}
	newQty := p.StockQty - qty
	if err := tx.UpdateProductStock(ctx, productID, newQty); err != nil {
		return 0, err
	}
	return newQty, nil
}

// Release returns stock from a reverted sale or purchase. Direction is
// signed by the caller: sales release adds, purchase reversal subtracts.
// A result below zero is clamped; that only happens when stock was corrected
// out-of-band after the document was created.
func (Store) Release(ctx context.Context, tx StockTx, productID int64, qty float64) (float64, bool, error) {
	p, err := tx.GetProductForUpdate(ctx, productID)
	if err != nil {
		return 0, false, err
	}
	newQty := p.StockQty + qty
	clamped := false
	if newQty < 0 {
		newQty = 0
		clamped = true
	}
	if err := tx.UpdateProductStock(ctx, productID, newQty); err != nil {
		return 0, false, err
	}
	return newQty, clamped, nil
}

// Receive increments stock from a purchase receipt and records the latest
// unit cost. Always succeeds for a positive quantity.
func (Store) Receive(ctx context.Context, tx StockTx, productID int64, qty float64, unitCostLocal decimal.Decimal) (float64, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	p, err := tx.GetProductForUpdate(ctx, productID)
	if err != nil {
		return 0, err
	}
	newQty := p.StockQty + qty
	if err := tx.UpdateProductStockCost(ctx, productID, newQty, unitCostLocal); err != nil {
		return 0, err
	}
	return newQty, nil
}
