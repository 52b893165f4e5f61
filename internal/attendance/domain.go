// Package attendance implements the daily check-in/check-out tracker. One
// row exists per user per day; the row is created at check-in and completed
// at check-out.
package attendance

import (
	"fmt"
	"time"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

// Status classifies a day's attendance.
type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusLate    Status = "LATE"
	StatusSick    Status = "SICK"
	StatusLeave   Status = "LEAVE"
	StatusHalfDay Status = "HALF_DAY"
)

// ValidStatus reports whether s is a known attendance status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusSick, StatusLeave, StatusHalfDay:
		return true
	}
	return false
}

// Tracker errors.
var (
	ErrAlreadyCheckedIn  = fmt.Errorf("already checked in today: %w", httpx.ErrConflict)
	ErrAlreadyCheckedOut = fmt.Errorf("already checked out today: %w", httpx.ErrConflict)
	ErrNoCheckIn         = fmt.Errorf("no check-in recorded today: %w", httpx.ErrValidation)
	ErrCheckOutBeforeIn  = fmt.Errorf("check-out cannot precede check-in: %w", httpx.ErrValidation)
)

// Attendance is one user-day record.
type Attendance struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	Date             time.Time  `json:"date"`
	CheckIn          time.Time  `json:"check_in"`
	CheckOut         *time.Time `json:"check_out"`
	BreakStart       *time.Time `json:"break_start"`
	BreakEnd         *time.Time `json:"break_end"`
	Status           Status     `json:"status"`
	CheckInLocation  string     `json:"check_in_location"`
	CheckOutLocation string     `json:"check_out_location"`
	CheckInPhoto     string     `json:"check_in_photo"`
	CheckOutPhoto    string     `json:"check_out_photo"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CheckInput carries the user-supplied fields of a check-in or check-out.
// Location and photo are opaque strings; storage happens elsewhere.
type CheckInput struct {
	Location string `json:"location"`
	Photo    string `json:"photo"`
	Notes    string `json:"notes"`
}

// DateOf truncates a timestamp to its calendar day in the timestamp's
// location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
