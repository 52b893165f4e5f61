// Package catalog manages the internet package price list referenced by
// customers and snapshotted into invoices.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package is one internet subscription product.
type Package struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Speed     int             `json:"speed"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt *time.Time      `json:"deleted_at,omitempty"`
}

// PackageInput carries create/update fields.
type PackageInput struct {
	Name  string          `json:"name" validate:"required"`
	Speed int             `json:"speed" validate:"gt=0"`
	Price decimal.Decimal `json:"price"`
}
