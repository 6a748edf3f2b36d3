package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/commission"
	"github.com/migarbe/SisConVen-sub000/internal/fx"
	"github.com/migarbe/SisConVen-sub000/internal/inventory"
	"github.com/migarbe/SisConVen-sub000/internal/ledger"
	"github.com/migarbe/SisConVen-sub000/internal/money"
)

var (
	// ErrInvoiceNotFound indicates an unknown invoice id.
	ErrInvoiceNotFound = errors.New("sales: invoice not found")
	// ErrPaymentNotFound indicates an unknown payment id.
	ErrPaymentNotFound = errors.New("sales: payment not found")
	// ErrInvoiceLocked indicates an edit attempt on a fully paid invoice.
	ErrInvoiceLocked = errors.New("sales: invoice is fully paid and locked")
	// ErrHasPayments indicates a delete attempt on an invoice with payments.
	ErrHasPayments = errors.New("sales: invoice has recorded payments")
	// ErrNoItems indicates an invoice without lines.
	ErrNoItems = errors.New("sales: at least one item is required")
	// ErrInvalidQuantity indicates a non-positive item quantity.
	ErrInvalidQuantity = errors.New("sales: item quantity must be positive")
)

// RepositoryPort defines data access for the invoice ledger.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetInvoice(ctx context.Context, id int64) (InvoiceWithDetails, error)
	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, error)
	ListPendingForClient(ctx context.Context, clientID int64) ([]Invoice, error)
	ListOverdue(ctx context.Context, cutoff time.Time) ([]Invoice, error)
	FindPaymentInvoice(ctx context.Context, paymentID int64) (int64, error)
}

// TxRepository exposes transactional operations used by the service. It
// embeds the stock port so stock moves in the same transaction as the
// invoice mutation.
type TxRepository interface {
	inventory.StockTx
	GetInvoiceForUpdate(ctx context.Context, id int64) (Invoice, error)
	ListItems(ctx context.Context, invoiceID int64) ([]InvoiceItem, error)
	InsertInvoice(ctx context.Context, inv Invoice) (int64, error)
	UpdateInvoice(ctx context.Context, inv Invoice) error
	DeleteInvoice(ctx context.Context, id int64) error
	ReplaceItems(ctx context.Context, invoiceID int64, items []InvoiceItem) error
	ReplaceCommissionLines(ctx context.Context, invoiceID int64, lines []CommissionLine) error
	CountPayments(ctx context.Context, invoiceID int64) (int64, error)
	InsertPayment(ctx context.Context, p Payment) (int64, error)
	GetPaymentForUpdate(ctx context.Context, id int64) (Payment, error)
	UpdatePayment(ctx context.Context, p Payment) error
	DeletePayment(ctx context.Context, id int64) error
}

// Service owns the invoice lifecycle and its side effects on stock and
// commission snapshots.
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

// buildItems resolves requested lines against locked product rows, filling
// prices and commission snapshots. Products are locked here and stay locked
// until the surrounding transaction completes.
func buildItems(ctx context.Context, tx TxRepository, inputs []ItemInput) ([]InvoiceItem, error) {
	items := make([]InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Qty <= 0 {
			return nil, ErrInvalidQuantity
		}
		p, err := tx.GetProductForUpdate(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		price := in.UnitPriceHard
		if price.LessThanOrEqual(decimal.Zero) {
			price = p.SalePriceHard
		}
		mode := in.PricingMode
		if mode == "" {
			mode = PricingCash
		}
		items = append(items, InvoiceItem{
			ProductID:       p.ID,
			ProductName:     p.Name,
			Qty:             in.Qty,
			UnitPriceHard:   price,
			PricingMode:     mode,
			CommissionType:  p.CommissionType,
			CommissionValue: p.CommissionValue,
			SubtotalHard:    money.Round(price.Mul(decimal.NewFromFloat(in.Qty))),
		})
	}
	return items, nil
}

func invoiceTotal(items []InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.SubtotalHard)
	}
	return total
}

func commissionTerms(items []InvoiceItem) []commission.ItemTerms {
	terms := make([]commission.ItemTerms, 0, len(items))
	for _, it := range items {
		terms = append(terms, commission.ItemTerms{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Qty:         it.Qty,
			Subtotal:    it.SubtotalHard,
			Type:        it.CommissionType,
			Value:       it.CommissionValue,
		})
	}
	return terms
}

func asLines(items []InvoiceItem) []ledger.Line {
	lines := make([]ledger.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, ledger.Line{ProductID: it.ProductID, Qty: it.Qty})
	}
	return lines
}

func commissionLines(invoiceID int64, details []commission.Detail) []CommissionLine {
	lines := make([]CommissionLine, 0, len(details))
	for _, d := range details {
		lines = append(lines, CommissionLine{
			InvoiceID:   invoiceID,
			ProductID:   d.ProductID,
			ProductName: d.ProductName,
			AmountHard:  d.Amount,
		})
	}
	return lines
}

// CreateInvoice reserves stock for every item and writes the invoice with
// its commission snapshot. Any reservation failure rolls back the whole
// operation; no partial stock effect survives.
func (s *Service) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (InvoiceWithDetails, error) {
	if len(input.Items) == 0 {
		return InvoiceWithDetails{}, ErrNoItems
	}
	var invoiceID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		items, err := buildItems(ctx, tx, input.Items)
		if err != nil {
			return err
		}
		for _, it := range items {
			if _, err := s.stock.Reserve(ctx, tx, it.ProductID, it.Qty); err != nil {
				return fmt.Errorf("product %d: %w", it.ProductID, err)
			}
		}
		total := invoiceTotal(items)
		details, commissionTotal := commission.Compute(commissionTerms(items), input.SellerID != nil)
		now := time.Now().UTC()
		inv := Invoice{
			Number:          "INV-" + uuid.NewString()[:8],
			ClientID:        input.ClientID,
			SellerID:        input.SellerID,
			TotalHard:       total,
			BalanceHard:     total,
			Status:          ledger.StatusPending,
			CommissionTotal: commissionTotal,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		id, err := tx.InsertInvoice(ctx, inv)
		if err != nil {
			return err
		}
		invoiceID = id
		if err := tx.ReplaceItems(ctx, id, items); err != nil {
			return err
		}
		return tx.ReplaceCommissionLines(ctx, id, commissionLines(id, details))
	})
	if err != nil {
		return InvoiceWithDetails{}, err
	}
	return s.repo.GetInvoice(ctx, invoiceID)
}

// EditInvoice replaces the item set and seller of a non-paid invoice. Stock
// moves by per-product delta: extra demand is verified against available
// stock before anything mutates, returned quantities are released (clamped
// at zero). Payments already made are preserved against the new total.
func (s *Service) EditInvoice(ctx context.Context, id int64, input EditInvoiceInput) (InvoiceWithDetails, error) {
	if len(input.Items) == 0 {
		return InvoiceWithDetails{}, ErrNoItems
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status == ledger.StatusPaid {
			return ErrInvoiceLocked
		}
		oldItems, err := tx.ListItems(ctx, id)
		if err != nil {
			return err
		}
		newItems, err := buildItems(ctx, tx, input.Items)
		if err != nil {
			return err
		}

		deltas := ledger.ItemDelta(asLines(oldItems), asLines(newItems))
		// Feasibility first: every increased product must have stock for its
		// delta before any stock is touched.
		for productID, delta := range deltas {
			if delta <= 0 {
				continue
			}
			p, err := tx.GetProductForUpdate(ctx, productID)
			if err != nil {
				return err
			}
			if delta > p.StockQty {
				return fmt.Errorf("product %d: %w", productID, inventory.ErrInsufficientStock)
			}
		}
		for productID, delta := range deltas {
			switch {
			case delta > 0:
				if _, err := s.stock.Reserve(ctx, tx, productID, delta); err != nil {
					return fmt.Errorf("product %d: %w", productID, err)
				}
			case delta < 0:
				_, clamped, err := s.stock.Release(ctx, tx, productID, -delta)
				if err != nil {
					return err
				}
				if clamped {
					s.logger.Warn("stock release clamped at zero during invoice edit",
						slog.Int64("invoice_id", id), slog.Int64("product_id", productID))
				}
			}
		}

		newTotal := invoiceTotal(newItems)
		details, commissionTotal := commission.Compute(commissionTerms(newItems), input.SellerID != nil)
		paidSoFar := inv.TotalHard.Sub(inv.BalanceHard)
		newBalance := money.Max(decimal.Zero, newTotal.Sub(paidSoFar))

		inv.SellerID = input.SellerID
		inv.TotalHard = newTotal
		inv.BalanceHard = newBalance
		inv.Status = ledger.StatusFor(newTotal, newBalance)
		inv.CommissionTotal = commissionTotal
		inv.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateInvoice(ctx, inv); err != nil {
			return err
		}
		if err := tx.ReplaceItems(ctx, id, newItems); err != nil {
			return err
		}
		return tx.ReplaceCommissionLines(ctx, id, commissionLines(id, details))
	})
	if err != nil {
		return InvoiceWithDetails{}, err
	}
	return s.repo.GetInvoice(ctx, id)
}

// DeleteInvoice removes an invoice and returns its stock. Invoices with
// recorded payments are refused; payments must be deleted first so the
// financial history stays consistent.
func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetInvoiceForUpdate(ctx, id); err != nil {
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
			if _, _, err := s.stock.Release(ctx, tx, it.ProductID, it.Qty); err != nil {
				return err
			}
		}
		return tx.DeleteInvoice(ctx, id)
	})
}

// ApplyPayment records a payment against an invoice, capturing the current
// exchange rate for local display.
func (s *Service) ApplyPayment(ctx context.Context, input ApplyPaymentInput) (Payment, error) {
	rate, err := s.rates.CurrentRate(ctx)
	if err != nil {
		return Payment{}, err
	}
	var payment Payment
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, input.InvoiceID)
		if err != nil {
			return err
		}
		recorded, newBalance, status, err := ledger.Apply(inv.TotalHard, inv.BalanceHard, input.Amount)
		if err != nil {
			return err
		}
		payment = Payment{
			Number:      "PAY-" + uuid.NewString()[:8],
			InvoiceID:   inv.ID,
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

		inv.BalanceHard = newBalance
		inv.Status = status
		inv.UpdatedAt = time.Now().UTC()
		return tx.UpdateInvoice(ctx, inv)
	})
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// EditPayment rewinds the old payment's effect on the invoice balance and
// applies the new amount through the same rules as ApplyPayment. The
// payment's captured rate is kept.
func (s *Service) EditPayment(ctx context.Context, paymentID int64, newAmount decimal.Decimal) (Payment, error) {
	invoiceID, err := s.repo.FindPaymentInvoice(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	var payment Payment
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		p, err := tx.GetPaymentForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		reversed, _ := ledger.Reverse(inv.TotalHard, inv.BalanceHard, p.AmountHard)
		recorded, newBalance, status, err := ledger.Apply(inv.TotalHard, reversed, newAmount)
		if err != nil {
			return err
		}
		p.AmountHard = recorded
		p.AmountLocal = money.Round(recorded.Mul(p.LocalRate))
		if err := tx.UpdatePayment(ctx, p); err != nil {
			return err
		}
		payment = p

		inv.BalanceHard = newBalance
		inv.Status = status
		inv.UpdatedAt = time.Now().UTC()
		return tx.UpdateInvoice(ctx, inv)
	})
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// DeletePayment reverses a payment's effect and removes the record.
func (s *Service) DeletePayment(ctx context.Context, paymentID int64) error {
	invoiceID, err := s.repo.FindPaymentInvoice(ctx, paymentID)
	if err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		p, err := tx.GetPaymentForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		newBalance, status := ledger.Reverse(inv.TotalHard, inv.BalanceHard, p.AmountHard)
		if err := tx.DeletePayment(ctx, paymentID); err != nil {
			return err
		}
		inv.BalanceHard = newBalance
		inv.Status = status
		inv.UpdatedAt = time.Now().UTC()
		return tx.UpdateInvoice(ctx, inv)
	})
}

// GetInvoice returns an invoice with items, commission lines and payments.
func (s *Service) GetInvoice(ctx context.Context, id int64) (InvoiceWithDetails, error) {
	return s.repo.GetInvoice(ctx, id)
}

// InvoiceBalance returns the remaining balance of an invoice.
func (s *Service) InvoiceBalance(ctx context.Context, id int64) (decimal.Decimal, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return inv.BalanceHard, nil
}

// ListInvoices returns invoices matching the filter.
func (s *Service) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx, req)
}

// PendingForClient returns a client's unsettled invoices.
func (s *Service) PendingForClient(ctx context.Context, clientID int64) ([]Invoice, error) {
	return s.repo.ListPendingForClient(ctx, clientID)
}

// ListOverdue returns unsettled invoices older than the given age. Used by
// the reminder job; the age and status filters run in the repository.
func (s *Service) ListOverdue(ctx context.Context, olderThan time.Duration) ([]Invoice, error) {
	return s.repo.ListOverdue(ctx, time.Now().UTC().Add(-olderThan))
}
