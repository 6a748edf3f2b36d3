package procurement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/inventory"
	"github.com/migarbe/SisConVen-sub000/internal/ledger"
)

// Repository persists purchases in PostgreSQL.
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

const purchaseColumns = `id, number, supplier_name, total_debt_hard, balance_hard, status, local_rate, created_at, updated_at`

func scanPurchase(row pgx.Row) (Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.Number, &p.SupplierName, &p.TotalDebtHard, &p.BalanceHard, &p.Status, &p.LocalRate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, ErrPurchaseNotFound
	}
	return p, err
}

func (r *Repository) GetPurchase(ctx context.Context, id int64) (PurchaseWithDetails, error) {
	p, err := scanPurchase(r.pool.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id=$1`, id))
	if err != nil {
		return PurchaseWithDetails{}, err
	}
	detail := PurchaseWithDetails{Purchase: p}

	rows, err := r.pool.Query(ctx, `SELECT id, purchase_id, product_id, product_name, qty, unit_cost_local, unit_cost_hard, subtotal_hard
FROM purchase_items WHERE purchase_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return PurchaseWithDetails{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.ProductName, &it.Qty, &it.UnitCostLocal, &it.UnitCostHard, &it.SubtotalHard); err != nil {
			return PurchaseWithDetails{}, err
		}
		detail.Items = append(detail.Items, it)
	}
	if err := rows.Err(); err != nil {
		return PurchaseWithDetails{}, err
	}

	payRows, err := r.pool.Query(ctx, `SELECT id, number, purchase_id, amount_hard, local_rate, amount_local, method, paid_at, created_at
FROM purchase_payments WHERE purchase_id=$1 ORDER BY paid_at ASC, id ASC`, id)
	if err != nil {
		return PurchaseWithDetails{}, err
	}
	defer payRows.Close()
	for payRows.Next() {
		var pay Payment
		if err := payRows.Scan(&pay.ID, &pay.Number, &pay.PurchaseID, &pay.AmountHard, &pay.LocalRate, &pay.AmountLocal, &pay.Method, &pay.PaidAt, &pay.CreatedAt); err != nil {
			return PurchaseWithDetails{}, err
		}
		detail.Payments = append(detail.Payments, pay)
	}
	return detail, payRows.Err()
}

func (r *Repository) ListPurchases(ctx context.Context, req ListPurchasesRequest) ([]Purchase, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `SELECT `+purchaseColumns+` FROM purchases
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`, string(req.Status), limit, req.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	purchases := []Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (r *Repository) DebtTotal(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(balance_hard), 0) FROM purchases WHERE status <> $1`, string(ledger.StatusPaid)).Scan(&total)
	return total, err
}

func (r *Repository) FindPaymentPurchase(ctx context.Context, paymentID int64) (int64, error) {
	var purchaseID int64
	err := r.pool.QueryRow(ctx, `SELECT purchase_id FROM purchase_payments WHERE id=$1`, paymentID).Scan(&purchaseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrPaymentNotFound
	}
	return purchaseID, err
}

func (t *txRepository) GetPurchaseForUpdate(ctx context.Context, id int64) (Purchase, error) {
	return scanPurchase(t.tx.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id=$1 FOR UPDATE`, id))
}

func (t *txRepository) ListItems(ctx context.Context, purchaseID int64) ([]PurchaseItem, error) {
	rows, err := t.tx.Query(ctx, `SELECT id, purchase_id, product_id, product_name, qty, unit_cost_local, unit_cost_hard, subtotal_hard
FROM purchase_items WHERE purchase_id=$1 ORDER BY id ASC`, purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PurchaseItem{}
	for rows.Next() {
		var it PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.ProductName, &it.Qty, &it.UnitCostLocal, &it.UnitCostHard, &it.SubtotalHard); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (t *txRepository) InsertPurchase(ctx context.Context, p Purchase) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO purchases (number, supplier_name, total_debt_hard, balance_hard, status, local_rate, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		p.Number, p.SupplierName, p.TotalDebtHard, p.BalanceHard, string(p.Status), p.LocalRate, p.CreatedAt, p.UpdatedAt).Scan(&id)
	return id, err
}

func (t *txRepository) UpdatePurchase(ctx context.Context, p Purchase) error {
	// created_at and local_rate are immutable after creation.
	_, err := t.tx.Exec(ctx, `UPDATE purchases
SET supplier_name=$2, total_debt_hard=$3, balance_hard=$4, status=$5, updated_at=$6
WHERE id=$1`, p.ID, p.SupplierName, p.TotalDebtHard, p.BalanceHard, string(p.Status), p.UpdatedAt)
	return err
}

func (t *txRepository) DeletePurchase(ctx context.Context, id int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id=$1`, id); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `DELETE FROM purchases WHERE id=$1`, id)
	return err
}

func (t *txRepository) ReplaceItems(ctx context.Context, purchaseID int64, items []PurchaseItem) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id=$1`, purchaseID); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := t.tx.Exec(ctx, `INSERT INTO purchase_items (purchase_id, product_id, product_name, qty, unit_cost_local, unit_cost_hard, subtotal_hard)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			purchaseID, it.ProductID, it.ProductName, it.Qty, it.UnitCostLocal, it.UnitCostHard, it.SubtotalHard); err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepository) CountPayments(ctx context.Context, purchaseID int64) (int64, error) {
	var count int64
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_payments WHERE purchase_id=$1`, purchaseID).Scan(&count)
	return count, err
}

func (t *txRepository) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO purchase_payments (number, purchase_id, amount_hard, local_rate, amount_local, method, paid_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW()) RETURNING id`,
		p.Number, p.PurchaseID, p.AmountHard, p.LocalRate, p.AmountLocal, p.Method, p.PaidAt).Scan(&id)
	return id, err
}

func (t *txRepository) GetPaymentForUpdate(ctx context.Context, id int64) (Payment, error) {
	var p Payment
	err := t.tx.QueryRow(ctx, `SELECT id, number, purchase_id, amount_hard, local_rate, amount_local, method, paid_at, created_at
FROM purchase_payments WHERE id=$1 FOR UPDATE`, id).Scan(&p.ID, &p.Number, &p.PurchaseID, &p.AmountHard, &p.LocalRate, &p.AmountLocal, &p.Method, &p.PaidAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrPaymentNotFound
	}
	return p, err
}

func (t *txRepository) UpdatePayment(ctx context.Context, p Payment) error {
	_, err := t.tx.Exec(ctx, `UPDATE purchase_payments SET amount_hard=$2, amount_local=$3 WHERE id=$1`, p.ID, p.AmountHard, p.AmountLocal)
	return err
}

func (t *txRepository) DeletePayment(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM purchase_payments WHERE id=$1`, id)
	return err
}

// Stock operations share the transaction; same SQL as the inventory
// repository but bound to this tx.

func (t *txRepository) GetProductForUpdate(ctx context.Context, id int64) (inventory.Product, error) {
	var p inventory.Product
	err := t.tx.QueryRow(ctx, `SELECT id, name, stock_qty, sale_price_hard, purchase_cost_local, last_unit_cost_local, commission_type, commission_value, created_at, updated_at
FROM products WHERE id=$1 FOR UPDATE`, id).Scan(&p.ID, &p.Name, &p.StockQty, &p.SalePriceHard, &p.PurchaseCostLocal, &p.LastUnitCostLocal, &p.CommissionType, &p.CommissionValue, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return inventory.Product{}, inventory.ErrProductNotFound
	}
	return p, err
}

func (t *txRepository) UpdateProductStock(ctx context.Context, id int64, qty float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE products SET stock_qty=$2, updated_at=NOW() WHERE id=$1`, id, qty)
	return err
}

func (t *txRepository) UpdateProductStockCost(ctx context.Context, id int64, qty float64, lastUnitCostLocal decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `UPDATE products SET stock_qty=$2, last_unit_cost_local=$3, updated_at=NOW() WHERE id=$1`, id, qty, lastUnitCostLocal)
	return err
}
