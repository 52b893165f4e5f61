package cashflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/netmitra/netmitra/internal/billing"
	"github.com/netmitra/netmitra/internal/platform/httpx"
)

// Poster consumes billing payment events inside the billing transaction.
// It implements billing.LedgerPoster.
type Poster struct{}

// NewPoster constructs a Poster.
func NewPoster() *Poster {
	return &Poster{}
}

// PostInvoicePayment appends the automatic ledger entry for a paid invoice.
// The deterministic source id plus its unique index guarantee at most one
// live entry per invoice, even under a double-payment race.
func (p *Poster) PostInvoicePayment(ctx context.Context, tx pgx.Tx, evt billing.InvoicePaid) error {
	note := "Pembayaran invoice " + evt.Number
	_, err := tx.Exec(ctx, `
		INSERT INTO cashflows (category_id, amount, date, note, invoice_id, customer_id, source_id, created_at, updated_at)
		VALUES (NULL, $1::numeric, $2, $3, $4, $5, $6, NOW(), NOW())`,
		evt.Amount.StringFixed(2), evt.PaidAt, note, evt.InvoiceRowID, evt.CustomerID, PaymentSourceID(evt.Number))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("cashflow: payment entry for %s already exists: %w", evt.Number, httpx.ErrConflict)
		}
		return fmt.Errorf("cashflow: post payment for %s: %w", evt.Number, err)
	}
	return nil
}

// ReverseInvoicePayment soft-deletes the automatic entry created when the
// invoice was paid. Missing entries are tolerated: legacy data predates the
// reversal rule.
func (p *Poster) ReverseInvoicePayment(ctx context.Context, tx pgx.Tx, invoiceNumber string) error {
	_, err := tx.Exec(ctx, `
		UPDATE cashflows SET deleted_at = NOW(), updated_at = NOW()
		WHERE source_id = $1 AND deleted_at IS NULL`, PaymentSourceID(invoiceNumber))
	if err != nil {
		return fmt.Errorf("cashflow: reverse payment for %s: %w", invoiceNumber, err)
	}
	return nil
}
