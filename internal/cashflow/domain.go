// Package cashflow implements the append-oriented money ledger. Entries are
// either typed manual rows or automatic invoice-payment rows; the latter
// carry a NULL category and a deterministic source id.
package cashflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category classifies manual ledger entries.
type Category struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	IsOut     bool       `json:"is_out"`
	Note      string     `json:"note"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// CategoryInput carries create/update fields.
type CategoryInput struct {
	Name  string `json:"name" validate:"required"`
	IsOut bool   `json:"is_out"`
	Note  string `json:"note"`
}

// Entry is one ledger row. A nil CategoryID marks an automatic
// invoice-payment entry.
type Entry struct {
	ID         int64           `json:"id"`
	CategoryID *int64          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Note       string          `json:"note"`
	InvoiceID  *int64          `json:"invoice_id,omitempty"`
	CustomerID *int64          `json:"customer_id,omitempty"`
	SourceID   *uuid.UUID      `json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  *time.Time      `json:"deleted_at,omitempty"`
}

// EntryInput carries fields for a manual ledger entry. Manual entries must
// name a category; automatic ones are created by the poster only.
type EntryInput struct {
	CategoryID int64           `json:"category_id" validate:"required,gt=0"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Note       string          `json:"note"`
	CustomerID *int64          `json:"customer_id"`
}

// PaymentSourceID derives the deterministic source id for an invoice's
// automatic ledger entry. One invoice can only ever map to one live entry.
func PaymentSourceID(invoiceNumber string) uuid.UUID {
	return uuid.NewSHA1(uuid.Nil, []byte("INV:"+invoiceNumber))
}
