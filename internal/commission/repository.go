package commission

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists commission payouts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const sumEarnedSQL = `SELECT COALESCE(SUM(commission_total), 0) FROM invoices WHERE seller_id=$1 AND commission_total > 0`
const sumPaidSQL = `SELECT COALESCE(SUM(amount_hard), 0) FROM commission_payments WHERE seller_id=$1`

func (r *Repository) SumEarned(ctx context.Context, sellerID int64) (decimal.Decimal, error) {
	return scanSum(r.pool.QueryRow(ctx, sumEarnedSQL, sellerID))
}

func (r *Repository) SumPaid(ctx context.Context, sellerID int64) (decimal.Decimal, error) {
	return scanSum(r.pool.QueryRow(ctx, sumPaidSQL, sellerID))
}

func scanSum(row pgx.Row) (decimal.Decimal, error) {
	var d decimal.Decimal
	err := row.Scan(&d)
	return d, err
}

func (r *Repository) ListPayments(ctx context.Context, sellerID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number, seller_id, amount_hard, local_rate, amount_local, reference, paid_at, created_at
FROM commission_payments WHERE seller_id=$1 ORDER BY paid_at DESC, id DESC`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := []Payment{}
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.Number, &p.SellerID, &p.AmountHard, &p.LocalRate, &p.AmountLocal, &p.Reference, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *Repository) ListSummaries(ctx context.Context) ([]SellerSummary, error) {
	rows, err := r.pool.Query(ctx, `SELECT s.id, s.name,
COALESCE((SELECT SUM(i.commission_total) FROM invoices i WHERE i.seller_id=s.id AND i.commission_total > 0), 0) AS earned,
COALESCE((SELECT SUM(cp.amount_hard) FROM commission_payments cp WHERE cp.seller_id=s.id), 0) AS paid
FROM sellers s ORDER BY s.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	summaries := []SellerSummary{}
	for rows.Next() {
		var s SellerSummary
		if err := rows.Scan(&s.SellerID, &s.SellerName, &s.Earned, &s.Paid); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (t *txRepository) LockSeller(ctx context.Context, sellerID int64) error {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM sellers WHERE id=$1 FOR UPDATE`, sellerID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSellerNotFound
	}
	return err
}

func (t *txRepository) SumEarned(ctx context.Context, sellerID int64) (decimal.Decimal, error) {
	return scanSum(t.tx.QueryRow(ctx, sumEarnedSQL, sellerID))
}

func (t *txRepository) SumPaid(ctx context.Context, sellerID int64) (decimal.Decimal, error) {
	return scanSum(t.tx.QueryRow(ctx, sumPaidSQL, sellerID))
}

func (t *txRepository) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO commission_payments (number, seller_id, amount_hard, local_rate, amount_local, reference, paid_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW()) RETURNING id`,
		p.Number, p.SellerID, p.AmountHard, p.LocalRate, p.AmountLocal, p.Reference, p.PaidAt).Scan(&id)
	return id, err
}
