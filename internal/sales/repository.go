package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/migarbe/SisConVen-sub000/internal/inventory"
	"github.com/migarbe/SisConVen-sub000/internal/ledger"
)

// Repository persists invoices in PostgreSQL.
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

const invoiceColumns = `id, number, client_id, seller_id, total_hard, balance_hard, status, commission_total, created_at, updated_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.ClientID, &inv.SellerID, &inv.TotalHard, &inv.BalanceHard, &inv.Status, &inv.CommissionTotal, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, err
}

func (r *Repository) GetInvoice(ctx context.Context, id int64) (InvoiceWithDetails, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id))
	if err != nil {
		return InvoiceWithDetails{}, err
	}
	detail := InvoiceWithDetails{Invoice: inv}

	rows, err := r.pool.Query(ctx, `SELECT id, invoice_id, product_id, product_name, qty, unit_price_hard, pricing_mode, commission_type, commission_value, subtotal_hard
FROM invoice_items WHERE invoice_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return InvoiceWithDetails{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.ProductName, &it.Qty, &it.UnitPriceHard, &it.PricingMode, &it.CommissionType, &it.CommissionValue, &it.SubtotalHard); err != nil {
			return InvoiceWithDetails{}, err
		}
		detail.Items = append(detail.Items, it)
	}
	if err := rows.Err(); err != nil {
		return InvoiceWithDetails{}, err
	}

	comRows, err := r.pool.Query(ctx, `SELECT id, invoice_id, product_id, product_name, amount_hard
FROM invoice_commissions WHERE invoice_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return InvoiceWithDetails{}, err
	}
	defer comRows.Close()
	for comRows.Next() {
		var l CommissionLine
		if err := comRows.Scan(&l.ID, &l.InvoiceID, &l.ProductID, &l.ProductName, &l.AmountHard); err != nil {
			return InvoiceWithDetails{}, err
		}
		detail.CommissionLines = append(detail.CommissionLines, l)
	}
	if err := comRows.Err(); err != nil {
		return InvoiceWithDetails{}, err
	}

	payRows, err := r.pool.Query(ctx, `SELECT id, number, invoice_id, amount_hard, local_rate, amount_local, method, paid_at, created_at
FROM invoice_payments WHERE invoice_id=$1 ORDER BY paid_at ASC, id ASC`, id)
	if err != nil {
		return InvoiceWithDetails{}, err
	}
	defer payRows.Close()
	for payRows.Next() {
		var p Payment
		if err := payRows.Scan(&p.ID, &p.Number, &p.InvoiceID, &p.AmountHard, &p.LocalRate, &p.AmountLocal, &p.Method, &p.PaidAt, &p.CreatedAt); err != nil {
			return InvoiceWithDetails{}, err
		}
		detail.Payments = append(detail.Payments, p)
	}
	return detail, payRows.Err()
}

func (r *Repository) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
WHERE ($1 = '' OR status = $1) AND ($2 = 0 OR client_id = $2)
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4`, string(req.Status), req.ClientID, limit, req.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *Repository) ListPendingForClient(ctx context.Context, clientID int64) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
WHERE client_id=$1 AND status <> $2 ORDER BY created_at ASC`, clientID, string(ledger.StatusPaid))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *Repository) ListOverdue(ctx context.Context, cutoff time.Time) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
WHERE status <> $1 AND created_at < $2 ORDER BY created_at ASC`, string(ledger.StatusPaid), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func collectInvoices(rows pgx.Rows) ([]Invoice, error) {
	invoices := []Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *Repository) FindPaymentInvoice(ctx context.Context, paymentID int64) (int64, error) {
	var invoiceID int64
	err := r.pool.QueryRow(ctx, `SELECT invoice_id FROM invoice_payments WHERE id=$1`, paymentID).Scan(&invoiceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrPaymentNotFound
	}
	return invoiceID, err
}

func (t *txRepository) GetInvoiceForUpdate(ctx context.Context, id int64) (Invoice, error) {
	return scanInvoice(t.tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1 FOR UPDATE`, id))
}

func (t *txRepository) ListItems(ctx context.Context, invoiceID int64) ([]InvoiceItem, error) {
	rows, err := t.tx.Query(ctx, `SELECT id, invoice_id, product_id, product_name, qty, unit_price_hard, pricing_mode, commission_type, commission_value, subtotal_hard
FROM invoice_items WHERE invoice_id=$1 ORDER BY id ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []InvoiceItem{}
	for rows.Next() {
		var it InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.ProductName, &it.Qty, &it.UnitPriceHard, &it.PricingMode, &it.CommissionType, &it.CommissionValue, &it.SubtotalHard); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (t *txRepository) InsertInvoice(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO invoices (number, client_id, seller_id, total_hard, balance_hard, status, commission_total, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		inv.Number, inv.ClientID, inv.SellerID, inv.TotalHard, inv.BalanceHard, string(inv.Status), inv.CommissionTotal, inv.CreatedAt, inv.UpdatedAt).Scan(&id)
	return id, err
}

func (t *txRepository) UpdateInvoice(ctx context.Context, inv Invoice) error {
	// created_at is immutable; it is deliberately absent here.
	_, err := t.tx.Exec(ctx, `UPDATE invoices
SET seller_id=$2, total_hard=$3, balance_hard=$4, status=$5, commission_total=$6, updated_at=$7
WHERE id=$1`, inv.ID, inv.SellerID, inv.TotalHard, inv.BalanceHard, string(inv.Status), inv.CommissionTotal, inv.UpdatedAt)
	return err
}

func (t *txRepository) DeleteInvoice(ctx context.Context, id int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM invoice_commissions WHERE invoice_id=$1`, id); err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id=$1`, id); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `DELETE FROM invoices WHERE id=$1`, id)
	return err
}

func (t *txRepository) ReplaceItems(ctx context.Context, invoiceID int64, items []InvoiceItem) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id=$1`, invoiceID); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := t.tx.Exec(ctx, `INSERT INTO invoice_items (invoice_id, product_id, product_name, qty, unit_price_hard, pricing_mode, commission_type, commission_value, subtotal_hard)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			invoiceID, it.ProductID, it.ProductName, it.Qty, it.UnitPriceHard, string(it.PricingMode), string(it.CommissionType), it.CommissionValue, it.SubtotalHard); err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepository) ReplaceCommissionLines(ctx context.Context, invoiceID int64, lines []CommissionLine) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM invoice_commissions WHERE invoice_id=$1`, invoiceID); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := t.tx.Exec(ctx, `INSERT INTO invoice_commissions (invoice_id, product_id, product_name, amount_hard)
VALUES ($1,$2,$3,$4)`, invoiceID, l.ProductID, l.ProductName, l.AmountHard); err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepository) CountPayments(ctx context.Context, invoiceID int64) (int64, error) {
	var count int64
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM invoice_payments WHERE invoice_id=$1`, invoiceID).Scan(&count)
	return count, err
}

func (t *txRepository) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO invoice_payments (number, invoice_id, amount_hard, local_rate, amount_local, method, paid_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW()) RETURNING id`,
		p.Number, p.InvoiceID, p.AmountHard, p.LocalRate, p.AmountLocal, p.Method, p.PaidAt).Scan(&id)
	return id, err
}

func (t *txRepository) GetPaymentForUpdate(ctx context.Context, id int64) (Payment, error) {
	var p Payment
	err := t.tx.QueryRow(ctx, `SELECT id, number, invoice_id, amount_hard, local_rate, amount_local, method, paid_at, created_at
FROM invoice_payments WHERE id=$1 FOR UPDATE`, id).Scan(&p.ID, &p.Number, &p.InvoiceID, &p.AmountHard, &p.LocalRate, &p.AmountLocal, &p.Method, &p.PaidAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrPaymentNotFound
	}
	return p, err
}

func (t *txRepository) UpdatePayment(ctx context.Context, p Payment) error {
	_, err := t.tx.Exec(ctx, `UPDATE invoice_payments SET amount_hard=$2, amount_local=$3 WHERE id=$1`, p.ID, p.AmountHard, p.AmountLocal)
	return err
}

func (t *txRepository) DeletePayment(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM invoice_payments WHERE id=$1`, id)
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
