package cashflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// --- Categories ---

const categoryColumns = `id, name, is_out, note, created_at, updated_at, deleted_at`

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.IsOut, &c.Note, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cashflow_categories (name, is_out, note, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING `+categoryColumns, input.Name, input.IsOut, input.Note)
	c, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("cashflow: create category: %w", err)
	}
	return c, nil
}

// GetCategory returns one live category.
func (r *Repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM cashflow_categories
		WHERE id = $1 AND deleted_at IS NULL`, id)
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cashflow: category %d: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cashflow: get category %d: %w", id, err)
	}
	return c, nil
}

// ListCategories returns all live categories.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+categoryColumns+` FROM cashflow_categories
		WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("cashflow: list categories: %w", err)
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateCategory overwrites the mutable fields of a category.
func (r *Repository) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*Category, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE cashflow_categories
		SET name = $2, is_out = $3, note = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+categoryColumns, id, input.Name, input.IsOut, input.Note)
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cashflow: category %d: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cashflow: update category %d: %w", id, err)
	}
	return c, nil
}

// SoftDeleteCategory flags a category as removed.
func (r *Repository) SoftDeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cashflow_categories SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("cashflow: delete category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cashflow: category %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// --- Entries ---

const entryColumns = `id, category_id, amount::text, date, note, invoice_id, customer_id, source_id, created_at, updated_at, deleted_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	var amount string
	if err := row.Scan(&e.ID, &e.CategoryID, &amount, &e.Date, &e.Note, &e.InvoiceID, &e.CustomerID, &e.SourceID, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt); err != nil {
		return nil, err
	}
	var err error
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEntry inserts a manual ledger entry.
func (r *Repository) CreateEntry(ctx context.Context, input EntryInput) (*Entry, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cashflows (category_id, amount, date, note, customer_id, created_at, updated_at)
		VALUES ($1, $2::numeric, $3, $4, $5, NOW(), NOW())
		RETURNING `+entryColumns,
		input.CategoryID, input.Amount.StringFixed(2), input.Date, input.Note, input.CustomerID)
	e, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("cashflow: create entry: %w", err)
	}
	return e, nil
}

// EntryFilters narrows ledger listings.
type EntryFilters struct {
	CategoryID int64
	From       time.Time
	To         time.Time
	Page       int
	Limit      int
}

// ListEntries returns ledger entries matching filters.
func (r *Repository) ListEntries(ctx context.Context, filters EntryFilters) ([]Entry, shared.Pagination, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}

	where := `deleted_at IS NULL`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filters.CategoryID > 0 {
		where += ` AND category_id = ` + arg(filters.CategoryID)
	}
	if !filters.From.IsZero() {
		where += ` AND date >= ` + arg(filters.From)
	}
	if !filters.To.IsZero() {
		where += ` AND date <= ` + arg(filters.To)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cashflows WHERE `+where, args...).Scan(&total); err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("cashflow: count entries: %w", err)
	}
	page := shared.NewPagination(filters.Page, filters.Limit, total)

	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM cashflows WHERE `+where+
		fmt.Sprintf(` ORDER BY date DESC, id DESC LIMIT %d OFFSET %d`, page.PerPage, page.Offset()), args...)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("cashflow: list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, shared.Pagination{}, err
		}
		out = append(out, *e)
	}
	return out, page, rows.Err()
}

// SoftDeleteEntry flags an entry as removed.
func (r *Repository) SoftDeleteEntry(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cashflows SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("cashflow: delete entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cashflow: entry %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}
