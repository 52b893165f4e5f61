package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for packages.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const packageColumns = `id, name, speed, price::text, created_at, updated_at, deleted_at`

func scanPackage(row pgx.Row) (*Package, error) {
	var p Package
	var price string
	if err := row.Scan(&p.ID, &p.Name, &p.Speed, &price, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		return nil, err
	}
	var err error
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a package.
func (r *Repository) Create(ctx context.Context, input PackageInput) (*Package, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO internet_packages (name, speed, price, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, NOW(), NOW())
		RETURNING `+packageColumns,
		input.Name, input.Speed, input.Price.StringFixed(2))
	pkg, err := scanPackage(row)
	if err != nil {
		return nil, fmt.Errorf("catalog: create: %w", err)
	}
	return pkg, nil
}

// Get returns a package by id, excluding soft-deleted rows.
func (r *Repository) Get(ctx context.Context, id int64) (*Package, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+packageColumns+` FROM internet_packages
		WHERE id = $1 AND deleted_at IS NULL`, id)
	pkg, err := scanPackage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("catalog: package %d: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %d: %w", id, err)
	}
	return pkg, nil
}

// List returns all live packages ordered by name.
func (r *Repository) List(ctx context.Context) ([]Package, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+packageColumns+` FROM internet_packages
		WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()
	var out []Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pkg)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of a package.
func (r *Repository) Update(ctx context.Context, id int64, input PackageInput) (*Package, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE internet_packages
		SET name = $2, speed = $3, price = $4::numeric, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+packageColumns,
		id, input.Name, input.Speed, input.Price.StringFixed(2))
	pkg, err := scanPackage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("catalog: package %d: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: update %d: %w", id, err)
	}
	return pkg, nil
}

// SoftDelete flags a package as removed. Rows are never physically deleted
// so historical invoices keep a valid reference.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE internet_packages SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("catalog: package %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// PackageExists reports whether a live package with id exists. Used by the
// customer registry to validate references.
func (r *Repository) PackageExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM internet_packages WHERE id = $1 AND deleted_at IS NULL)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("catalog: exists %d: %w", id, err)
	}
	return exists, nil
}
