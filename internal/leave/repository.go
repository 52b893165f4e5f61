package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

const requestColumns = `id, user_id, type, start_date, end_date, total_days, reason, status, approver_id, decided_at, COALESCE(rejection_reason, ''), created_at, updated_at`

// Repository persists leave requests in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRequest(row pgx.Row) (*Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.UserID, &r.Type, &r.StartDate, &r.EndDate, &r.TotalDays, &r.Reason, &r.Status, &r.ApproverID, &r.DecidedAt, &r.RejectionReason, &r.CreatedAt, &r.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("leave request: %w", httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan leave request: %w", err)
	}
	return &r, nil
}

func (r *Repository) Create(ctx context.Context, userID int64, in RequestInput, totalDays int) (*Request, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leave_requests (user_id, type, start_date, end_date, total_days, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING `+requestColumns,
		userID, in.Type, in.StartDate, in.EndDate, totalDays, in.Reason)
	return scanRequest(row)
}

func (r *Repository) Get(ctx context.Context, id int64) (*Request, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM leave_requests WHERE id = $1`, id)
	return scanRequest(row)
}

// UpdatePending rewrites the request fields while it is still pending.
func (r *Repository) UpdatePending(ctx context.Context, id, userID int64, in RequestInput, totalDays int) (*Request, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leave_requests
		SET type = $1, start_date = $2, end_date = $3, total_days = $4, reason = $5, updated_at = now()
		WHERE id = $6 AND user_id = $7 AND status = 'pending'
		RETURNING `+requestColumns,
		in.Type, in.StartDate, in.EndDate, totalDays, in.Reason, id, userID)
	return scanRequest(row)
}

// Decide moves a pending request to a terminal status.
func (r *Repository) Decide(ctx context.Context, id int64, status Status, approverID int64, rejectionReason string, decidedAt time.Time) (*Request, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leave_requests
		SET status = $1, approver_id = $2, rejection_reason = NULLIF($3, ''), decided_at = $4, updated_at = now()
		WHERE id = $5 AND status = 'pending'
		RETURNING `+requestColumns,
		status, approverID, rejectionReason, decidedAt, id)
	return scanRequest(row)
}

// DeletePending removes a request the owner no longer wants, pending only.
func (r *Repository) DeletePending(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1 AND user_id = $2 AND status = 'pending'`, id, userID)
	if err != nil {
		return fmt.Errorf("delete leave request %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("leave request %d not pending or not yours: %w", id, httpx.ErrConflict)
	}
	return nil
}

// ListFilters narrows ListByUser / ListAll.
type ListFilters struct {
	Status Status
	UserID int64
}

func (r *Repository) List(ctx context.Context, f ListFilters) ([]Request, error) {
	where := `WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		where += ` AND status = ` + arg(f.Status)
	}
	if f.UserID > 0 {
		where += ` AND user_id = ` + arg(f.UserID)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM leave_requests `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()
	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}
