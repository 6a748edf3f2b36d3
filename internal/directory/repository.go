package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists clients and sellers in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const clientColumns = `id, name, phone, email, created_at, updated_at`

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrClientNotFound
	}
	return c, err
}

func (r *Repository) GetClient(ctx context.Context, id int64) (Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id=$1`, id))
}

func (r *Repository) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	clients := []Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *Repository) CreateClient(ctx context.Context, c Client) (Client, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO clients (name, phone, email, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW()) RETURNING `+clientColumns, c.Name, c.Phone, c.Email)
	created, err := scanClient(row)
	if isUniqueViolation(err) {
		return Client{}, ErrDuplicateName
	}
	return created, err
}

func (r *Repository) UpdateClient(ctx context.Context, c Client) (Client, error) {
	row := r.pool.QueryRow(ctx, `UPDATE clients SET name=$2, phone=$3, email=$4, updated_at=NOW()
WHERE id=$1 RETURNING `+clientColumns, c.ID, c.Name, c.Phone, c.Email)
	updated, err := scanClient(row)
	if isUniqueViolation(err) {
		return Client{}, ErrDuplicateName
	}
	return updated, err
}

func (r *Repository) DeleteClient(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

const sellerColumns = `id, name, phone, commission_type, commission_value, created_at, updated_at`

func scanSeller(row pgx.Row) (Seller, error) {
	var s Seller
	err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.CommissionType, &s.CommissionValue, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Seller{}, ErrSellerNotFound
	}
	return s, err
}

func (r *Repository) GetSeller(ctx context.Context, id int64) (Seller, error) {
	return scanSeller(r.pool.QueryRow(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE id=$1`, id))
}

func (r *Repository) ListSellers(ctx context.Context) ([]Seller, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sellerColumns+` FROM sellers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sellers := []Seller{}
	for rows.Next() {
		s, err := scanSeller(rows)
		if err != nil {
			return nil, err
		}
		sellers = append(sellers, s)
	}
	return sellers, rows.Err()
}

func (r *Repository) CreateSeller(ctx context.Context, s Seller) (Seller, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO sellers (name, phone, commission_type, commission_value, created_at, updated_at)
VALUES ($1,$2,$3,$4,NOW(),NOW()) RETURNING `+sellerColumns,
		s.Name, s.Phone, string(s.CommissionType), s.CommissionValue)
	created, err := scanSeller(row)
	if isUniqueViolation(err) {
		return Seller{}, ErrDuplicateName
	}
	return created, err
}

func (r *Repository) UpdateSeller(ctx context.Context, s Seller) (Seller, error) {
	row := r.pool.QueryRow(ctx, `UPDATE sellers SET name=$2, phone=$3, commission_type=$4, commission_value=$5, updated_at=NOW()
WHERE id=$1 RETURNING `+sellerColumns,
		s.ID, s.Name, s.Phone, string(s.CommissionType), s.CommissionValue)
	updated, err := scanSeller(row)
	if isUniqueViolation(err) {
		return Seller{}, ErrDuplicateName
	}
	return updated, err
}

func (r *Repository) DeleteSeller(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sellers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSellerNotFound
	}
	return nil
}
