package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/netmitra/netmitra/internal/platform/db"
	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// LedgerPoster consumes InvoicePaid events inside the billing transaction,
// so an invoice can never be paid without its ledger entry.
type LedgerPoster interface {
	PostInvoicePayment(ctx context.Context, tx pgx.Tx, evt InvoicePaid) error
	ReverseInvoicePayment(ctx context.Context, tx pgx.Tx, invoiceNumber string) error
}

// Repository provides PostgreSQL backed persistence for invoices.
type Repository struct {
	pool   *pgxpool.Pool
	ledger LedgerPoster
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool, ledger LedgerPoster) *Repository {
	return &Repository{pool: pool, ledger: ledger}
}

// periodLockNamespace namespaces advisory lock keys for invoice generation.
const periodLockNamespace = 7211

const invoiceColumns = `id, number, customer_id, package_id, amount::text, ppn::text, total_amount::text, status, due_date, period_month, period_year, paid_at, note, created_at, updated_at, deleted_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var amount, ppn, total string
	if err := row.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.PackageID, &amount, &ppn, &total,
		&inv.Status, &inv.DueDate, &inv.PeriodMonth, &inv.PeriodYear, &inv.PaidAt, &inv.Note,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.DeletedAt); err != nil {
		return nil, err
	}
	var err error
	if inv.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	if inv.PPN, err = decimal.NewFromString(ppn); err != nil {
		return nil, err
	}
	if inv.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	return &inv, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// WithPeriodLock runs fn while holding a session-level advisory lock scoped
// to one billing period. Concurrent generation runs for the same period
// queue up instead of interleaving.
func (r *Repository) WithPeriodLock(ctx context.Context, year, month int, fn func(context.Context) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("billing: acquire lock conn: %w", err)
	}
	defer conn.Release()

	key := int32(year*100 + month)
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1, $2)`, int32(periodLockNamespace), key); err != nil {
		return fmt.Errorf("billing: acquire period lock: %w", err)
	}
	defer func() {
		_, _ = conn.Exec(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1, $2)`, int32(periodLockNamespace), key)
	}()

	return fn(ctx)
}

// ListBillableCustomers returns ACTIVE, non-deleted customers with their
// live package price. The package join is outer so a customer whose package
// was deleted still comes back, with PackageID zero, and the generator can
// report it instead of dropping it from the batch silently.
func (r *Repository) ListBillableCustomers(ctx context.Context) ([]BillableCustomer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.join_date, c.bill_date, p.id, p.price::text
		FROM customers c
		LEFT JOIN internet_packages p ON p.id = c.package_id AND p.deleted_at IS NULL
		WHERE c.status = 'ACTIVE' AND c.deleted_at IS NULL
		ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("billing: list billable: %w", err)
	}
	defer rows.Close()

	var out []BillableCustomer
	for rows.Next() {
		var c BillableCustomer
		var pkgID *int64
		var price *string
		if err := rows.Scan(&c.ID, &c.Name, &c.JoinDate, &c.BillDate, &pkgID, &price); err != nil {
			return nil, err
		}
		if pkgID != nil && price != nil {
			c.PackageID = *pkgID
			if c.PackagePrice, err = decimal.NewFromString(*price); err != nil {
				return nil, err
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// HasInvoiceForPeriod reports whether the customer already has a live
// invoice for the period.
func (r *Repository) HasInvoiceForPeriod(ctx context.Context, customerID int64, month, year int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM invoices
			WHERE customer_id = $1 AND period_month = $2 AND period_year = $3 AND deleted_at IS NULL
		)`, customerID, month, year).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("billing: period check: %w", err)
	}
	return exists, nil
}

// CreateInvoice allocates the next sequence number for the period and
// inserts the invoice, both in one transaction. The sequence comes from an
// atomic counter upsert, never from reading the current maximum.
func (r *Repository) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error) {
	var created *Invoice
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int
		err := tx.QueryRow(ctx, `
			INSERT INTO invoice_counters (period_year, period_month, last_seq)
			VALUES ($1, $2, 1)
			ON CONFLICT (period_year, period_month)
			DO UPDATE SET last_seq = invoice_counters.last_seq + 1
			RETURNING last_seq`,
			input.PeriodYear, input.PeriodMonth).Scan(&seq)
		if err != nil {
			return fmt.Errorf("billing: allocate sequence: %w", err)
		}

		number := FormatNumber(input.PeriodYear, input.PeriodMonth, seq)
		row := tx.QueryRow(ctx, `
			INSERT INTO invoices (number, customer_id, package_id, amount, ppn, total_amount, status, due_date, period_month, period_year, note, created_at, updated_at)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, 'unpaid', $7, $8, $9, '', NOW(), NOW())
			RETURNING `+invoiceColumns,
			number, input.CustomerID, input.PackageID,
			input.Amount.StringFixed(2), input.PPN.String(), input.TotalAmount.StringFixed(2),
			input.DueDate, input.PeriodMonth, input.PeriodYear)
		created, err = scanInvoice(row)
		if isUniqueViolation(err) {
			return ErrDuplicatePeriod
		}
		if err != nil {
			return fmt.Errorf("billing: insert invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a live invoice by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE id = $1 AND deleted_at IS NULL`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("billing: invoice %d: %w", id, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("billing: get %d: %w", id, err)
	}
	return inv, nil
}

// List returns invoices matching filters plus pagination metadata.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Invoice, shared.Pagination, error) {
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
	if filters.Status != "" {
		where += ` AND status = ` + arg(filters.Status)
	}
	if filters.CustomerID > 0 {
		where += ` AND customer_id = ` + arg(filters.CustomerID)
	}
	if filters.PeriodMonth > 0 {
		where += ` AND period_month = ` + arg(filters.PeriodMonth)
	}
	if filters.PeriodYear > 0 {
		where += ` AND period_year = ` + arg(filters.PeriodYear)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE `+where, args...).Scan(&total); err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("billing: count: %w", err)
	}
	page := shared.NewPagination(filters.Page, filters.Limit, total)

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + where +
		fmt.Sprintf(` ORDER BY number DESC LIMIT %d OFFSET %d`, page.PerPage, page.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("billing: list: %w", err)
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, shared.Pagination{}, err
		}
		out = append(out, *inv)
	}
	return out, page, rows.Err()
}

// MarkPaid transitions unpaid→paid and posts the ledger entry atomically.
func (r *Repository) MarkPaid(ctx context.Context, id int64, paidAt time.Time, note string) (*Invoice, error) {
	var updated *Invoice
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE invoices
			SET status = 'paid', paid_at = $2, note = $3, updated_at = NOW()
			WHERE id = $1 AND status = 'unpaid' AND deleted_at IS NULL
			RETURNING `+invoiceColumns, id, paidAt, note)
		inv, err := scanInvoice(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.explainTransitionFailure(ctx, tx, id, StatusPaid)
		}
		if err != nil {
			return fmt.Errorf("billing: mark paid %d: %w", id, err)
		}

		if r.ledger != nil {
			err = r.ledger.PostInvoicePayment(ctx, tx, InvoicePaid{
				InvoiceRowID: inv.ID,
				Number:       inv.Number,
				CustomerID:   inv.CustomerID,
				Amount:       inv.TotalAmount,
				PaidAt:       paidAt,
			})
			if err != nil {
				return fmt.Errorf("billing: post payment ledger entry: %w", err)
			}
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkUnpaid transitions paid→unpaid and reverses the auto ledger entry in
// the same transaction.
func (r *Repository) MarkUnpaid(ctx context.Context, id int64) (*Invoice, error) {
	var updated *Invoice
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE invoices
			SET status = 'unpaid', paid_at = NULL, updated_at = NOW()
			WHERE id = $1 AND status = 'paid' AND deleted_at IS NULL
			RETURNING `+invoiceColumns, id)
		inv, err := scanInvoice(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.explainTransitionFailure(ctx, tx, id, StatusUnpaid)
		}
		if err != nil {
			return fmt.Errorf("billing: mark unpaid %d: %w", id, err)
		}

		if r.ledger != nil {
			if err := r.ledger.ReverseInvoicePayment(ctx, tx, inv.Number); err != nil {
				return fmt.Errorf("billing: reverse payment ledger entry: %w", err)
			}
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkCancelled transitions unpaid→cancelled. Paid invoices are rejected.
func (r *Repository) MarkCancelled(ctx context.Context, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE invoices
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status = 'unpaid' AND deleted_at IS NULL
		RETURNING `+invoiceColumns, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.explainTransitionFailure(ctx, nil, id, StatusCancelled)
	}
	if err != nil {
		return nil, fmt.Errorf("billing: cancel %d: %w", id, err)
	}
	return inv, nil
}

// explainTransitionFailure turns a zero-row UPDATE into the precise
// lifecycle error for the caller.
func (r *Repository) explainTransitionFailure(ctx context.Context, tx pgx.Tx, id int64, target InvoiceStatus) error {
	var status InvoiceStatus
	var row pgx.Row
	query := `SELECT status FROM invoices WHERE id = $1 AND deleted_at IS NULL`
	if tx != nil {
		row = tx.QueryRow(ctx, query, id)
	} else {
		row = r.pool.QueryRow(ctx, query, id)
	}
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("billing: invoice %d: %w", id, httpx.ErrNotFound)
		}
		return fmt.Errorf("billing: inspect invoice %d: %w", id, err)
	}
	switch target {
	case StatusPaid:
		if status == StatusPaid {
			return ErrAlreadyPaid
		}
		return ErrNotUnpaid
	case StatusUnpaid:
		return ErrNotPaid
	case StatusCancelled:
		if status == StatusPaid {
			return ErrAlreadyPaid
		}
		return ErrNotUnpaid
	}
	return fmt.Errorf("billing: invoice %d: %w", id, httpx.ErrConflict)
}

// SoftDelete flags an invoice as removed.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("billing: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("billing: invoice %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}
