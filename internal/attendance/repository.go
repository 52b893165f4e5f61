package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for attendance.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const attendanceColumns = `id, user_id, date, check_in, check_out, break_start, break_end, status, check_in_location, check_out_location, check_in_photo, check_out_photo, notes, created_at, updated_at`

func scanAttendance(row pgx.Row) (*Attendance, error) {
	var a Attendance
	if err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.CheckIn, &a.CheckOut, &a.BreakStart, &a.BreakEnd, &a.Status,
		&a.CheckInLocation, &a.CheckOutLocation, &a.CheckInPhoto, &a.CheckOutPhoto, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts the check-in row. The unique (user_id, date) constraint is
// the authoritative guard against double check-ins.
func (r *Repository) Create(ctx context.Context, att *Attendance) (*Attendance, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO attendances (user_id, date, check_in, status, check_in_location, check_in_photo, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING `+attendanceColumns,
		att.UserID, att.Date, att.CheckIn, att.Status, att.CheckInLocation, att.CheckInPhoto, att.Notes)
	created, err := scanAttendance(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("attendance: create: %w", err)
	}
	return created, nil
}

// GetByUserAndDate returns the row for (user, date), nil when absent.
func (r *Repository) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*Attendance, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+attendanceColumns+` FROM attendances
		WHERE user_id = $1 AND date = $2`, userID, date)
	a, err := scanAttendance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("attendance: get by user/date: %w", err)
	}
	return a, nil
}

// SetCheckOut completes the row with check-out details.
func (r *Repository) SetCheckOut(ctx context.Context, id int64, at time.Time, location, photo, notes string) (*Attendance, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE attendances
		SET check_out = $2, check_out_location = $3, check_out_photo = $4,
			notes = CASE WHEN $5 <> '' THEN $5 ELSE notes END, updated_at = NOW()
		WHERE id = $1 AND check_out IS NULL
		RETURNING `+attendanceColumns, id, at, location, photo, notes)
	a, err := scanAttendance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlreadyCheckedOut
	}
	if err != nil {
		return nil, fmt.Errorf("attendance: set check-out: %w", err)
	}
	return a, nil
}

// UpdateStatus overwrites the day's status (admin override).
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) (*Attendance, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE attendances SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+attendanceColumns, id, status)
	a, err := scanAttendance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("attendance: %d: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("attendance: update status %d: %w", id, err)
	}
	return a, nil
}

// ListByUser returns rows for a user within [from, to], newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]Attendance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+attendanceColumns+` FROM attendances
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("attendance: list by user: %w", err)
	}
	defer rows.Close()
	var out []Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
