// Package leave implements the employee leave-request workflow.
package leave

import (
	"fmt"
	"time"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

// Type enumerates leave categories.
type Type string

const (
	TypeAnnual    Type = "annual"
	TypeSick      Type = "sick"
	TypeMaternity Type = "maternity"
	TypePaternity Type = "paternity"
	TypeEmergency Type = "emergency"
	TypeUnpaid    Type = "unpaid"
)

// ValidType reports whether t is a known leave type.
func ValidType(t Type) bool {
	switch t {
	case TypeAnnual, TypeSick, TypeMaternity, TypePaternity, TypeEmergency, TypeUnpaid:
		return true
	}
	return false
}

// Status enumerates request states. Pending is the only mutable state;
// approved and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Workflow errors.
var (
	ErrNotPending     = fmt.Errorf("leave request is no longer pending: %w", httpx.ErrConflict)
	ErrReasonRequired = fmt.Errorf("rejection requires a reason: %w", httpx.ErrValidation)
)

// Request is one leave request.
type Request struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Type            Type       `json:"type"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	TotalDays       int        `json:"total_days"`
	Reason          string     `json:"reason"`
	Status          Status     `json:"status"`
	ApproverID      *int64     `json:"approver_id"`
	DecidedAt       *time.Time `json:"decided_at"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RequestInput carries create/update fields.
type RequestInput struct {
	Type      Type      `json:"type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
}

// BusinessDays counts the weekdays in [start, end] inclusive. Saturdays
// and Sundays are excluded.
func BusinessDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return days
}
