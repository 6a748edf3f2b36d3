package procurement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/fx"
	"github.com/migarbe/SisConVen-sub000/internal/inventory"
	"github.com/migarbe/SisConVen-sub000/internal/ledger"
	"github.com/migarbe/SisConVen-sub000/internal/money"
)

var (
	// ErrPurchaseNotFound indicates an unknown purchase id.
	ErrPurchaseNotFound = errors.New("procurement: purchase not found")
	// ErrPaymentNotFound indicates an unknown payment id.
	ErrPaymentNotFound = errors.New("procurement: payment not found")
	// ErrPurchaseLocked indicates an edit attempt on a fully paid purchase.
	ErrPurchaseLocked = errors.New("procurement: purchase is fully paid and locked")
	// ErrHasPayments indicates a delete attempt on a purchase with payments.
	ErrHasPayments = errors.New("procurement: purchase has recorded payments")
	// ErrNoItems indicates a purchase without lines.
	ErrNoItems = errors.New("procurement: at least one item is required")
	// ErrInvalidQuantity indicates a non-positive item quantity.
	ErrInvalidQuantity = errors.New("procurement: item quantity must be positive")
	// ErrInvalidCost indicates a non-positive unit cost.
	ErrInvalidCost = errors.New("procurement: unit cost must be positive")
	// ErrSupplierRequired indicates a missing supplier name.
	ErrSupplierRequired = errors.New("procurement: supplier name is required")
)

// RepositoryPort defines data access for the purchase ledger.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPurchase(ctx context.Context, id int64) (PurchaseWithDetails, error)
	ListPurchases(ctx context.Context, req ListPurchasesRequest) ([]Purchase, error)
	DebtTotal(ctx context.Context) (decimal.Decimal, error)
	FindPaymentPurchase(ctx context.Context, paymentID int64) (int64, error)
}

// TxRepository exposes transactional operations used by the service. The
// stock port is embedded so received quantities move in the same transaction
// as the purchase mutation.
type TxRepository interface {
	inventory.StockTx
	GetPurchaseForUpdate(ctx context.Context, id int64) (Purchase, error)
	ListItems(ctx context.Context, purchaseID int64) ([]PurchaseItem, error)
	InsertPurchase(ctx context.Context, p Purchase) (int64, error)
	UpdatePurchase(ctx context.Context, p Purchase) error
	DeletePurchase(ctx context.Context, id int64) error
	ReplaceItems(ctx context.Context, purchaseID int64, items []PurchaseItem) error
	CountPayments(ctx context.Context, purchaseID int64) (int64, error)
	InsertPayment(ctx context.Context, p Payment) (int64, error)
	GetPaymentForUpdate(ctx context.Context, id int64) (Payment, error)
	UpdatePayment(ctx context.Context, p Payment) error
	DeletePayment(ctx context.Context, id int64) error
}

// Service owns the purchase lifecycle: stock receipt, supplier debt and its
// payments.
type Service struct {
	repo   RepositoryPort
	stock  inventory.Store
	rates  fx.RateProvider
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, rates fx.RateProvider, logger *slog.Logger) *Service {
	return &Service{repo: repo, rates: rates, logger: logger}
}

// debtStatus folds the settlement engine's partial state away: supplier debt
// is tracked as open or settled, nothing in between.
func debtStatus(st ledger.Status) ledger.Status {
	if st == ledger.StatusPartial {
		return ledger.StatusPending
	}
	return st
}

// buildItems converts requested lines to priced purchase items at the given
// rate. Products are locked so name snapshots and later stock writes see a
// stable row.
func buildItems(ctx context.Context, tx TxRepository, inputs []ItemInput, rate decimal.Decimal) ([]PurchaseItem, error) {
	items := make([]PurchaseItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Qty <= 0 {
			return nil, ErrInvalidQuantity
		}
		if in.UnitCostLocal.LessThanOrEqual(decimal.Zero) {
			return nil, ErrInvalidCost
		}
		p, err := tx.GetProductForUpdate(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		costHard := money.Round(in.UnitCostLocal.Div(rate))
		items = append(items, PurchaseItem{
			ProductID:     p.ID,
			ProductName:   p.Name,
			Qty:           in.Qty,
			UnitCostLocal: in.UnitCostLocal,
			UnitCostHard:  costHard,
			SubtotalHard:  money.Round(costHard.Mul(decimal.NewFromFloat(in.Qty))),
		})
	}
	return items, nil
}

func purchaseTotal(items []PurchaseItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.SubtotalHard)
	}
	return total
}

func asLines(items []PurchaseItem) []ledger.Line {
	lines := make([]ledger.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, ledger.Line{ProductID: it.ProductID, Qty: it.Qty})
	}
	return lines
}

func costByProduct(items []PurchaseItem) map[int64]decimal.Decimal {
	costs := make(map[int64]decimal.Decimal, len(items))
	for _, it := range items {
		costs[it.ProductID] = it.UnitCostLocal
	}
	return costs
}

// CreatePurchase receives stock for every item, records the supplier's unit
// cost on the product, and opens the debt at the converted hard-currency
// total. Receipt never fails on quantity; there is nothing to reserve.
func (s *Service) CreatePurchase(ctx context.Context, input CreatePurchaseInput) (PurchaseWithDetails, error) {
	if strings.TrimSpace(input.SupplierName) == "" {
		return PurchaseWithDetails{}, ErrSupplierRequired
	}
	if len(input.Items) == 0 {
		return PurchaseWithDetails{}, ErrNoItems
	}
	rate, err := s.rates.CurrentRate(ctx)
	if err != nil {
		return PurchaseWithDetails{}, err
	}
	var purchaseID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		items, err := buildItems(ctx, tx, input.Items, rate)
		if err != nil {
			return err
		}
		for _, it := range items {
			if _, err := s.stock.Receive(ctx, tx, it.ProductID, it.Qty, it.UnitCostLocal); err != nil {
				return fmt.Errorf("product %d: %w", it.ProductID, err)
			}
		}
		total := purchaseTotal(items)
		now := time.Now().UTC()
		p := Purchase{
			Number:        "PUR-" + uuid.NewString()[:8],
			SupplierName:  strings.TrimSpace(input.SupplierName),
			TotalDebtHard: total,
			BalanceHard:   total,
			Status:        ledger.StatusPending,
			LocalRate:     rate,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		id, err := tx.InsertPurchase(ctx, p)
		if err != nil {
			return err
		}
		purchaseID = id
		return tx.ReplaceItems(ctx, id, items)
	})
	if err != nil {
		return PurchaseWithDetails{}, err
	}
	return s.repo.GetPurchase(ctx, purchaseID)
}

// EditPurchase replaces the item set of a non-settled purchase. Stock moves
// by per-product delta with the sale direction inverted: growth receives,
// shrinkage decrements clamped at zero (received units may have been sold
// on). The rate captured at creation keeps pricing consistent across edits.
func (s *Service) EditPurchase(ctx context.Context, id int64, input EditPurchaseInput) (PurchaseWithDetails, error) {
	if len(input.Items) == 0 {
		return PurchaseWithDetails{}, ErrNoItems
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetPurchaseForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.Status == ledger.StatusPaid {
			return ErrPurchaseLocked
		}
		oldItems, err := tx.ListItems(ctx, id)
		if err != nil {
			return err
		}
		newItems, err := buildItems(ctx, tx, input.Items, p.LocalRate)
		if err != nil {
			return err
		}

		costs := costByProduct(newItems)
		for productID, delta := range ledger.ItemDelta(asLines(oldItems), asLines(newItems)) {
			switch {
			case delta > 0:
				if _, err := s.stock.Receive(ctx, tx, productID, delta, costs[productID]); err != nil {
					return fmt.Errorf("product %d: %w", productID, err)
				}
			case delta < 0:
				// delta is negative; the signed release decrements stock.
				_, clamped, err := s.stock.Release(ctx, tx, productID, delta)
				if err != nil {
					return err
				}
				if clamped {
					s.logger.Warn("stock decrement clamped at zero during purchase edit",
						slog.Int64("purchase_id", id), slog.Int64("product_id", productID))
				}
			}
		}

		newTotal := purchaseTotal(newItems)
		paidSoFar := p.TotalDebtHard.Sub(p.BalanceHard)
		newBalance := money.Max(decimal.Zero, newTotal.Sub(paidSoFar))

		if name := strings.TrimSpace(input.SupplierName); name != "" {
			p.SupplierName = name
		}
		p.TotalDebtHard = newTotal
		p.BalanceHard = newBalance
		p.Status = debtStatus(ledger.StatusFor(newTotal, newBalance))
		p.UpdatedAt = time.Now().UTC()
		if err := tx.UpdatePurchase(ctx, p); err != nil {
			return err
		}
		return tx.ReplaceItems(ctx, id, newItems)
	})
	if err != nil {
		return PurchaseWithDetails{}, err
	}
	return s.repo.GetPurchase(ctx, id)
}

// DeletePurchase reverses the stock receipt (clamped at zero) and removes
// the purchase. Purchases with recorded payments are refused.
func (s *Service) DeletePurchase(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetPurchaseForUpdate(ctx, id); err != nil {
			return err
		}
		count, err := tx.CountPayments(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrHasPayments
		}
		items, err := tx.ListItems(ctx, id)
		if err != nil {
			return err
		}
		for _, it := range items {
			_, clamped, err := s.stock.Release(ctx, tx, it.ProductID, -it.Qty)
			if err != nil {
				return err
			}
			if clamped {
				s.logger.Warn("stock decrement clamped at zero during purchase delete",
					slog.Int64("purchase_id", id), slog.Int64("product_id", it.ProductID))
			}
		}
		return tx.DeletePurchase(ctx, id)
	})
}

// ApplyPayment records a debt payment, capturing the current exchange rate
// for local display.
func (s *Service) ApplyPayment(ctx context.Context, input ApplyPaymentInput) (Payment, error) {
	rate, err := s.rates.CurrentRate(ctx)
	if err != nil {
		return Payment{}, err
	}
	var payment Payment
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetPurchaseForUpdate(ctx, input.PurchaseID)
		if err != nil {
			return err
		}
		recorded, newBalance, status, err := ledger.Apply(p.TotalDebtHard, p.BalanceHard, input.Amount)
		if err != nil {
			return err
		}
		payment = Payment{
			Number:      "PPY-" + uuid.NewString()[:8],
			PurchaseID:  p.ID,
			AmountHard:  recorded,
			LocalRate:   rate,
			AmountLocal: money.Round(recorded.Mul(rate)),
			Method:      input.Method,
			PaidAt:      time.Now().UTC(),
		}
		id, err := tx.InsertPayment(ctx, payment)
		if err != nil {
			return err
		}
		payment.ID = id

		p.BalanceHard = newBalance
		p.Status = debtStatus(status)
		p.UpdatedAt = time.Now().UTC()
		return tx.UpdatePurchase(ctx, p)
	})
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// EditPayment rewinds the payment's effect on the debt and applies the new
// amount. The payment's captured rate is kept.
func (s *Service) EditPayment(ctx context.Context, paymentID int64, newAmount decimal.Decimal) (Payment, error) {
	purchaseID, err := s.repo.FindPaymentPurchase(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	var payment Payment
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetPurchaseForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		pay, err := tx.GetPaymentForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		reversed, _ := ledger.Reverse(p.TotalDebtHard, p.BalanceHard, pay.AmountHard)
		recorded, newBalance, status, err := ledger.Apply(p.TotalDebtHard, reversed, newAmount)
		if err != nil {
			return err
		}
		pay.AmountHard = recorded
		pay.AmountLocal = money.Round(recorded.Mul(pay.LocalRate))
		if err := tx.UpdatePayment(ctx, pay); err != nil {
			return err
		}
		payment = pay

		p.BalanceHard = newBalance
		p.Status = debtStatus(status)
		p.UpdatedAt = time.Now().UTC()
		return tx.UpdatePurchase(ctx, p)
	})
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// DeletePayment reverses a payment's effect and removes the record.
func (s *Service) DeletePayment(ctx context.Context, paymentID int64) error {
	purchaseID, err := s.repo.FindPaymentPurchase(ctx, paymentID)
	if err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetPurchaseForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		pay, err := tx.GetPaymentForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		newBalance, status := ledger.Reverse(p.TotalDebtHard, p.BalanceHard, pay.AmountHard)
		if err := tx.DeletePayment(ctx, paymentID); err != nil {
			return err
		}
		p.BalanceHard = newBalance
		p.Status = debtStatus(status)
		p.UpdatedAt = time.Now().UTC()
		return tx.UpdatePurchase(ctx, p)
	})
}

// GetPurchase returns a purchase with its lines and payments.
func (s *Service) GetPurchase(ctx context.Context, id int64) (PurchaseWithDetails, error) {
	return s.repo.GetPurchase(ctx, id)
}

// ListPurchases returns purchases matching the filter.
func (s *Service) ListPurchases(ctx context.Context, req ListPurchasesRequest) ([]Purchase, error) {
	return s.repo.ListPurchases(ctx, req)
}

// DebtTotal returns the sum of open purchase balances.
func (s *Service) DebtTotal(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.DebtTotal(ctx)
}
