package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput indicates malformed product master data.
var ErrInvalidInput = errors.New("inventory: invalid input")

// RepositoryPort defines data access methods for the product catalog.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListBelow(ctx context.Context, threshold float64) ([]Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (Product, error)
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	StockTx
}

// Service coordinates catalog maintenance and direct stock corrections.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateProduct registers a product.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Product{}, fmt.Errorf("%w: product name required", ErrInvalidInput)
	}
	if input.SalePriceHard.LessThanOrEqual(decimal.Zero) {
		return Product{}, fmt.Errorf("%w: sale price must be positive", ErrInvalidInput)
	}
	if input.InitialStock < 0 {
		return Product{}, ErrInvalidQuantity
	}
	return s.repo.CreateProduct(ctx, input)
}

// UpdateProduct updates master fields. Stock is excluded on purpose.
func (s *Service) UpdateProduct(ctx context.Context, id int64, input ProductInput) (Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Product{}, fmt.Errorf("%w: product name required", ErrInvalidInput)
	}
	if input.SalePriceHard.LessThanOrEqual(decimal.Zero) {
		return Product{}, fmt.Errorf("%w: sale price must be positive", ErrInvalidInput)
	}
	return s.repo.UpdateProduct(ctx, id, input)
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListProducts returns the catalog.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

// ListBelow returns products whose stock is at or under threshold.
func (s *Service) ListBelow(ctx context.Context, threshold float64) ([]Product, error) {
	return s.repo.ListBelow(ctx, threshold)
}

// AdjustStock applies a signed manual correction. Negative adjustments are
// floor-checked like a reservation; this is an operator action, not part of
// any document flow.
func (s *Service) AdjustStock(ctx context.Context, productID int64, qtyChange float64) (float64, error) {
	if qtyChange == 0 {
		return 0, ErrInvalidQuantity
	}
	var newQty float64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		next := p.StockQty + qtyChange
		if next < 0 {
			return ErrInsufficientStock
		}
		if err := tx.UpdateProductStock(ctx, productID, next); err != nil {
			return err
		}
		newQty = next
		return nil
	})
	return newQty, err
}
