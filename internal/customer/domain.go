// Package customer implements the subscriber registry. Legacy data uses two
// competing status vocabularies (online/inactive/offline and
// active/inactive/paused); this package owns the canonical enum and maps
// legacy values at the boundary.
package customer

import (
	"fmt"
	"strings"
	"time"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

// Status is the canonical subscriber state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusPaused   Status = "PAUSED"
)

// ParseStatus maps a raw status value, including legacy vocabulary, onto the
// canonical enum.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active", "online":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	case "paused", "offline":
		return StatusPaused, nil
	}
	return "", fmt.Errorf("customer: unknown status %q: %w", raw, httpx.ErrValidation)
}

// Customer is one subscriber record.
type Customer struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	Status    Status     `json:"status"`
	PackageID int64      `json:"package_id"`
	JoinDate  time.Time  `json:"join_date"`
	BillDate  *int       `json:"bill_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// CustomerInput carries create/update fields. BillDate stays a pointer: a
// customer without one is never billed.
type CustomerInput struct {
	Name      string    `json:"name" validate:"required"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Status    Status    `json:"-"`
	PackageID int64     `json:"package_id" validate:"required,gt=0"`
	JoinDate  time.Time `json:"join_date" validate:"required"`
	BillDate  *int      `json:"bill_date"`
}

// ValidateBillDate enforces the 1..28 day-of-month window so a due date
// exists in every month.
func ValidateBillDate(day *int) error {
	if day == nil {
		return nil
	}
	if *day < 1 || *day > 28 {
		return fmt.Errorf("customer: bill_date must be between 1 and 28: %w", httpx.ErrValidation)
	}
	return nil
}
