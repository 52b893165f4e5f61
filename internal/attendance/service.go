package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// RepositoryPort defines data access methods for attendance.
type RepositoryPort interface {
	Create(ctx context.Context, att *Attendance) (*Attendance, error)
	GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*Attendance, error)
	SetCheckOut(ctx context.Context, id int64, at time.Time, location, photo, notes string) (*Attendance, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Attendance, error)
	ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]Attendance, error)
}

// Config tunes check-in classification.
type Config struct {
	// LateCutoff is the local wall-clock HH:MM after which check-in counts
	// as LATE.
	LateCutoff string
}

// Service handles attendance business logic.
type Service struct {
	repo RepositoryPort
	cfg  Config
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cfg Config) *Service {
	if cfg.LateCutoff == "" {
		cfg.LateCutoff = "09:00"
	}
	return &Service{repo: repo, cfg: cfg, now: time.Now}
}

// classify returns the status a fresh check-in gets for the given time.
func (s *Service) classify(at time.Time) Status {
	cutoff, err := time.Parse("15:04", s.cfg.LateCutoff)
	if err != nil {
		return StatusPresent
	}
	limit := time.Date(at.Year(), at.Month(), at.Day(), cutoff.Hour(), cutoff.Minute(), 0, 0, at.Location())
	if at.After(limit) {
		return StatusLate
	}
	return StatusPresent
}

// CheckIn opens today's attendance row for the user. A second check-in on
// the same day is rejected.
func (s *Service) CheckIn(ctx context.Context, userID int64, input CheckInput) (*Attendance, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("attendance: user required: %w", httpx.ErrUnauthorized)
	}
	at := s.now()
	att := &Attendance{
		UserID:          userID,
		Date:            DateOf(at),
		CheckIn:         at,
		Status:          s.classify(at),
		CheckInLocation: input.Location,
		CheckInPhoto:    input.Photo,
		Notes:           input.Notes,
	}
	return s.repo.Create(ctx, att)
}

// CheckOut completes today's attendance row. It requires an existing
// check-in, rejects double check-outs, and refuses a check-out timestamp
// earlier than the stored check-in.
func (s *Service) CheckOut(ctx context.Context, userID int64, input CheckInput) (*Attendance, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("attendance: user required: %w", httpx.ErrUnauthorized)
	}
	at := s.now()
	att, err := s.repo.GetByUserAndDate(ctx, userID, DateOf(at))
	if err != nil {
		return nil, err
	}
	if att == nil {
		return nil, ErrNoCheckIn
	}
	if att.CheckOut != nil {
		return nil, ErrAlreadyCheckedOut
	}
	if at.Before(att.CheckIn) {
		return nil, ErrCheckOutBeforeIn
	}
	return s.repo.SetCheckOut(ctx, att.ID, at, input.Location, input.Photo, input.Notes)
}

// Today returns the caller's attendance row for the current day, nil when
// none exists.
func (s *Service) Today(ctx context.Context, userID int64) (*Attendance, error) {
	return s.repo.GetByUserAndDate(ctx, userID, DateOf(s.now()))
}

// History lists a user's attendance rows in [from, to].
func (s *Service) History(ctx context.Context, userID int64, from, to time.Time) ([]Attendance, error) {
	return s.repo.ListByUser(ctx, userID, from, to)
}

// OverrideStatus lets an admin correct a day's status after the fact.
func (s *Service) OverrideStatus(ctx context.Context, id int64, status Status) (*Attendance, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("attendance: unknown status %q: %w", status, httpx.ErrValidation)
	}
	caller := shared.IdentityFromContext(ctx)
	if caller == nil {
		return nil, fmt.Errorf("attendance: %w", httpx.ErrUnauthorized)
	}
	if !caller.IsAdmin {
		return nil, fmt.Errorf("attendance: status override is admin-only: %w", httpx.ErrForbidden)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
