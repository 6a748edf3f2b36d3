package commission

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/fx"
	"github.com/migarbe/SisConVen-sub000/internal/money"
)

var (
	// ErrInvalidAmount indicates a non-positive payout amount.
	ErrInvalidAmount = errors.New("commission: amount must be positive")
	// ErrExceedsPending indicates a payout larger than the pending balance.
	ErrExceedsPending = errors.New("commission: amount exceeds pending commission")
	// ErrReferenceRequired indicates a payout without its mandatory reference.
	ErrReferenceRequired = errors.New("commission: payment reference required")
	// ErrSellerNotFound indicates an unknown seller id.
	ErrSellerNotFound = errors.New("commission: seller not found")
)

// RepositoryPort defines data access for the payout ledger.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	SumEarned(ctx context.Context, sellerID int64) (decimal.Decimal, error)
	SumPaid(ctx context.Context, sellerID int64) (decimal.Decimal, error)
	ListPayments(ctx context.Context, sellerID int64) ([]Payment, error)
	ListSummaries(ctx context.Context) ([]SellerSummary, error)
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	LockSeller(ctx context.Context, sellerID int64) error
	SumEarned(ctx context.Context, sellerID int64) (decimal.Decimal, error)
	SumPaid(ctx context.Context, sellerID int64) (decimal.Decimal, error)
	InsertPayment(ctx context.Context, p Payment) (int64, error)
}

// Service owns the commission payout ledger. Earned amounts derive from
// invoice commission snapshots; payouts are an independent append-only log.
type Service struct {
	repo  RepositoryPort
	rates fx.RateProvider
}

// NewService builds Service.
func NewService(repo RepositoryPort, rates fx.RateProvider) *Service {
	return &Service{repo: repo, rates: rates}
}

// Pending returns max(0, earned - paid) for a seller.
func (s *Service) Pending(ctx context.Context, sellerID int64) (decimal.Decimal, error) {
	earned, err := s.repo.SumEarned(ctx, sellerID)
	if err != nil {
		return decimal.Zero, err
	}
	paid, err := s.repo.SumPaid(ctx, sellerID)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Max(decimal.Zero, earned.Sub(paid)), nil
}

// Pay records a payout against a seller's pending commission. The reference
// is a hard requirement, not advisory.
func (s *Service) Pay(ctx context.Context, input PayInput) (Payment, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return Payment{}, ErrInvalidAmount
	}
	if strings.TrimSpace(input.Reference) == "" {
		return Payment{}, ErrReferenceRequired
	}
	rate, err := s.rates.CurrentRate(ctx)
	if err != nil {
		return Payment{}, err
	}

	amount := money.Round(input.Amount)
	payment := Payment{
		Number:      "COM-" + uuid.NewString()[:8],
		SellerID:    input.SellerID,
		AmountHard:  amount,
		LocalRate:   rate,
		AmountLocal: money.Round(amount.Mul(rate)),
		Reference:   strings.TrimSpace(input.Reference),
		PaidAt:      time.Now().UTC(),
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockSeller(ctx, input.SellerID); err != nil {
			return err
		}
		earned, err := tx.SumEarned(ctx, input.SellerID)
		if err != nil {
			return err
		}
		paid, err := tx.SumPaid(ctx, input.SellerID)
		if err != nil {
			return err
		}
		pending := money.Max(decimal.Zero, earned.Sub(paid))
		if money.Exceeds(amount, pending) {
			return ErrExceedsPending
		}
		id, err := tx.InsertPayment(ctx, payment)
		if err != nil {
			return err
		}
		payment.ID = id
		return nil
	})
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// ListPayments returns a seller's payout history.
func (s *Service) ListPayments(ctx context.Context, sellerID int64) ([]Payment, error) {
	return s.repo.ListPayments(ctx, sellerID)
}

// ListSummaries returns earned/paid/pending per seller.
func (s *Service) ListSummaries(ctx context.Context) ([]SellerSummary, error) {
	summaries, err := s.repo.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].Pending = money.Max(decimal.Zero, summaries[i].Earned.Sub(summaries[i].Paid))
	}
	return summaries, nil
}
