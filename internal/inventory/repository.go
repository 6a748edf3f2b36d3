package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists products in PostgreSQL.
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
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
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

const productColumns = `id, name, stock_qty, sale_price_hard, purchase_cost_local, last_unit_cost_local, commission_type, commission_value, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.StockQty, &p.SalePriceHard, &p.PurchaseCostLocal, &p.LastUnitCostLocal, &p.CommissionType, &p.CommissionValue, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY name ASC`)
}

func (r *Repository) ListBelow(ctx context.Context, threshold float64) ([]Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE stock_qty <= $1 ORDER BY stock_qty ASC`, threshold)
}

func (r *Repository) queryProducts(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repository) CreateProduct(ctx context.Context, input ProductInput) (Product, error) {
	now := time.Now().UTC()
	return scanProduct(r.pool.QueryRow(ctx, `INSERT INTO products (name, stock_qty, sale_price_hard, purchase_cost_local, commission_type, commission_value, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7) RETURNING `+productColumns,
		input.Name, input.InitialStock, input.SalePriceHard, input.PurchaseCostLocal, string(input.CommissionType), input.CommissionValue, now))
}

func (r *Repository) UpdateProduct(ctx context.Context, id int64, input ProductInput) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `UPDATE products
SET name=$2, sale_price_hard=$3, purchase_cost_local=$4, commission_type=$5, commission_value=$6, updated_at=NOW()
WHERE id=$1 RETURNING `+productColumns,
		id, input.Name, input.SalePriceHard, input.PurchaseCostLocal, string(input.CommissionType), input.CommissionValue))
}

func (t *txRepository) GetProductForUpdate(ctx context.Context, id int64) (Product, error) {
	return scanProduct(t.tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 FOR UPDATE`, id))
}

func (t *txRepository) UpdateProductStock(ctx context.Context, id int64, qty float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE products SET stock_qty=$2, updated_at=NOW() WHERE id=$1`, id, qty)
	return err
}

func (t *txRepository) UpdateProductStockCost(ctx context.Context, id int64, qty float64, lastUnitCostLocal decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `UPDATE products SET stock_qty=$2, last_unit_cost_local=$3, updated_at=NOW() WHERE id=$1`, id, qty, lastUnitCostLocal)
	return err
}
