package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// Repository provides PostgreSQL backed persistence for customers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const customerColumns = `id, name, phone, address, status, package_id, join_date, bill_date, created_at, updated_at, deleted_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.Status, &c.PackageID, &c.JoinDate, &c.BillDate, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a customer.
func (r *Repository) Create(ctx context.Context, input CustomerInput) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, phone, address, status, package_id, join_date, bill_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING `+customerColumns,
		input.Name, input.Phone, input.Address, input.Status, input.PackageID, input.JoinDate, input.BillDate)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("customer: create: %w", err)
	}
	return c, nil
}

// Get returns a live customer by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE id = $1 AND deleted_at IS NULL`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("customer: %d: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("customer: get %d: %w", id, err)
	}
	return c, nil
}

// ListFilters narrows customer listings.
type ListFilters struct {
	Status Status
	Page   int
	Limit  int
}

// List returns customers matching filters plus pagination metadata.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Customer, shared.Pagination, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM customers WHERE deleted_at IS NULL`
	args := []any{}
	if filters.Status != "" {
		countQuery += ` AND status = $1`
		args = append(args, filters.Status)
	}
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("customer: count: %w", err)
	}
	page := shared.NewPagination(filters.Page, filters.Limit, total)

	query := `SELECT ` + customerColumns + ` FROM customers WHERE deleted_at IS NULL`
	args = []any{}
	if filters.Status != "" {
		query += ` AND status = $1`
		args = append(args, filters.Status)
	}
	query += fmt.Sprintf(` ORDER BY name LIMIT %d OFFSET %d`, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("customer: list: %w", err)
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, shared.Pagination{}, err
		}
		out = append(out, *c)
	}
	return out, page, rows.Err()
}

// Update overwrites mutable fields.
func (r *Repository) Update(ctx context.Context, id int64, input CustomerInput) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE customers
		SET name = $2, phone = $3, address = $4, package_id = $5, join_date = $6, bill_date = $7, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+customerColumns,
		id, input.Name, input.Phone, input.Address, input.PackageID, input.JoinDate, input.BillDate)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("customer: %d: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("customer: update %d: %w", id, err)
	}
	return c, nil
}

// UpdateStatus sets the subscriber status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE customers SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+customerColumns, id, status)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("customer: %d: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("customer: update status %d: %w", id, err)
	}
	return c, nil
}

// SoftDelete flags a customer as removed, preserving invoice and cashflow
// history.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("customer: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer: %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}
