// Package billing owns invoice generation and the invoice payment
// lifecycle. Invoices snapshot price and tax at creation time; later
// catalog or settings changes never alter an issued invoice.
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

// InvoiceStatus enumerates invoice lifecycle states.
type InvoiceStatus string

const (
	StatusUnpaid    InvoiceStatus = "unpaid"
	StatusPaid      InvoiceStatus = "paid"
	StatusCancelled InvoiceStatus = "cancelled"
)

// Lifecycle errors. All wrap a transport sentinel so handlers map them to
// the right HTTP status.
var (
	ErrAlreadyPaid     = fmt.Errorf("invoice already paid: %w", httpx.ErrConflict)
	ErrNotPaid         = fmt.Errorf("invoice is not paid: %w", httpx.ErrConflict)
	ErrNotUnpaid       = fmt.Errorf("only unpaid invoices can be cancelled: %w", httpx.ErrConflict)
	ErrDuplicatePeriod = fmt.Errorf("invoice already exists for this customer and period: %w", httpx.ErrConflict)
)

// Invoice is one billing document.
type Invoice struct {
	ID          int64           `json:"id"`
	Number      string          `json:"invoice_id"`
	CustomerID  int64           `json:"customer_id"`
	PackageID   int64           `json:"package_id"`
	Amount      decimal.Decimal `json:"amount"`
	PPN         decimal.Decimal `json:"ppn"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      InvoiceStatus   `json:"status"`
	DueDate     time.Time       `json:"due_date"`
	PeriodMonth int             `json:"period_month"`
	PeriodYear  int             `json:"period_year"`
	PaidAt      *time.Time      `json:"paid_at"`
	Note        string          `json:"note"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// FormatNumber renders the persisted invoice identifier, e.g.
// INV/202506/0001. The format is load-bearing for data migrations and must
// not change.
func FormatNumber(year, month, seq int) string {
	return fmt.Sprintf("INV/%04d%02d/%04d", year, month, seq)
}

// TotalWithTax applies the tax percentage to a pre-tax amount and rounds to
// two decimal places.
func TotalWithTax(amount, ppn decimal.Decimal) decimal.Decimal {
	return amount.Add(amount.Mul(ppn).Div(decimal.NewFromInt(100))).Round(2)
}

// InvoicePaid is the domain event emitted when an invoice transitions to
// paid. The ledger consumes it synchronously inside the same transaction.
type InvoicePaid struct {
	InvoiceRowID int64
	Number       string
	CustomerID   int64
	Amount       decimal.Decimal
	PaidAt       time.Time
}

// BillableCustomer is the projection the generator works from: one ACTIVE,
// non-deleted subscriber joined with its live package price. PackageID zero
// means the referenced package is missing or deleted; the generator reports
// that instead of billing.
type BillableCustomer struct {
	ID           int64
	Name         string
	JoinDate     time.Time
	BillDate     *int
	PackageID    int64
	PackagePrice decimal.Decimal
}

// CreateInvoiceInput carries the fields persisted for a generated invoice.
// The invoice number is allocated inside the repository, never by callers.
type CreateInvoiceInput struct {
	CustomerID  int64
	PackageID   int64
	Amount      decimal.Decimal
	PPN         decimal.Decimal
	TotalAmount decimal.Decimal
	DueDate     time.Time
	PeriodMonth int
	PeriodYear  int
}

// GenerationError records a single customer the generator had to skip.
type GenerationError struct {
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Reason       string `json:"reason"`
}

// GenerateResult summarises one generation run.
type GenerateResult struct {
	Created int               `json:"created_count"`
	Errors  []GenerationError `json:"errors"`
}
