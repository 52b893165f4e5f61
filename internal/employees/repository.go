package employees

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

const employeeColumns = `id, name, email, COALESCE(phone, ''), COALESCE(position, ''), is_admin, password_hash, created_at, updated_at, deleted_at`

// Repository persists employees in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEmployee(row pgx.Row) (*Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Position, &e.IsAdmin, &e.PasswordHash, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("employee: %w", httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan employee: %w", err)
	}
	return &e, nil
}

func isDuplicateEmail(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repository) Create(ctx context.Context, in EmployeeInput, passwordHash string) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO employees (name, email, phone, position, is_admin, password_hash)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
		RETURNING `+employeeColumns,
		in.Name, in.Email, in.Phone, in.Position, in.IsAdmin, passwordHash)
	emp, err := scanEmployee(row)
	if isDuplicateEmail(err) {
		return nil, fmt.Errorf("employee email %s already registered: %w", in.Email, httpx.ErrConflict)
	}
	return emp, err
}

func (r *Repository) Get(ctx context.Context, id int64) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanEmployee(row)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = $1 AND deleted_at IS NULL`, email)
	return scanEmployee(row)
}

func (r *Repository) List(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()
	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id int64, in EmployeeInput) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE employees
		SET name = $1, email = $2, phone = NULLIF($3, ''), position = NULLIF($4, ''), is_admin = $5, updated_at = now()
		WHERE id = $6 AND deleted_at IS NULL
		RETURNING `+employeeColumns,
		in.Name, in.Email, in.Phone, in.Position, in.IsAdmin, id)
	emp, err := scanEmployee(row)
	if isDuplicateEmail(err) {
		return nil, fmt.Errorf("employee email %s already registered: %w", in.Email, httpx.ErrConflict)
	}
	return emp, err
}

func (r *Repository) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE employees SET password_hash = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL`, hash, id)
	if err != nil {
		return fmt.Errorf("set employee password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE employees SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}
