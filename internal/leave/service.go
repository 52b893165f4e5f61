package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// RepositoryPort is the persistence surface the service needs.
type RepositoryPort interface {
	Create(ctx context.Context, userID int64, in RequestInput, totalDays int) (*Request, error)
	Get(ctx context.Context, id int64) (*Request, error)
	UpdatePending(ctx context.Context, id, userID int64, in RequestInput, totalDays int) (*Request, error)
	Decide(ctx context.Context, id int64, status Status, approverID int64, rejectionReason string, decidedAt time.Time) (*Request, error)
	DeletePending(ctx context.Context, id, userID int64) error
	List(ctx context.Context, f ListFilters) ([]Request, error)
}

type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
	log   *slog.Logger
	now   func() time.Time
}

func NewService(repo RepositoryPort, audit *shared.AuditLogger, log *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, log: log, now: time.Now}
}

func (s *Service) validate(in RequestInput) error {
	if !ValidType(in.Type) {
		return fmt.Errorf("unknown leave type %q: %w", in.Type, httpx.ErrValidation)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date are required: %w", httpx.ErrValidation)
	}
	if in.EndDate.Before(in.StartDate) {
		return fmt.Errorf("end_date before start_date: %w", httpx.ErrValidation)
	}
	if BusinessDays(in.StartDate, in.EndDate) == 0 {
		return fmt.Errorf("range contains no business days: %w", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in RequestInput) (*Request, error) {
	caller := shared.IdentityFromContext(ctx)
	if caller == nil {
		return nil, httpx.ErrUnauthorized
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}
	req, err := s.repo.Create(ctx, caller.UserID, in, BusinessDays(in.StartDate, in.EndDate))
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "leave.create", req)
	return req, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Request, error) {
	caller := shared.IdentityFromContext(ctx)
	if caller == nil {
		return nil, httpx.ErrUnauthorized
	}
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin && caller.UserID != req.UserID {
		return nil, httpx.ErrForbidden
	}
	return req, nil
}

// Update rewrites a request the caller owns while it is still pending.
func (s *Service) Update(ctx context.Context, id int64, in RequestInput) (*Request, error) {
	caller := shared.IdentityFromContext(ctx)
	if caller == nil {
		return nil, httpx.ErrUnauthorized
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.UserID != caller.UserID {
		return nil, httpx.ErrForbidden
	}
	if current.Status != StatusPending {
		return nil, ErrNotPending
	}
	req, err := s.repo.UpdatePending(ctx, id, caller.UserID, in, BusinessDays(in.StartDate, in.EndDate))
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "leave.update", req)
	return req, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	caller := shared.IdentityFromContext(ctx)
	if caller == nil {
		return httpx.ErrUnauthorized
	}
	return s.repo.DeletePending(ctx, id, caller.UserID)
}

func (s *Service) Approve(ctx context.Context, id int64) (*Request, error) {
	return s.decide(ctx, id, StatusApproved, "")
}

func (s *Service) Reject(ctx context.Context, id int64, reason string) (*Request, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return s.decide(ctx, id, StatusRejected, reason)
}

func (s *Service) decide(ctx context.Context, id int64, status Status, reason string) (*Request, error) {
	caller := shared.IdentityFromContext(ctx)
	if caller == nil {
		return nil, httpx.ErrUnauthorized
	}
	if !caller.IsAdmin {
		return nil, httpx.ErrForbidden
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusPending {
		return nil, ErrNotPending
	}
	req, err := s.repo.Decide(ctx, id, status, caller.UserID, reason, s.now())
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "leave."+string(status), req)
	return req, nil
}

func (s *Service) List(ctx context.Context, f ListFilters) ([]Request, error) {
	caller := shared.IdentityFromContext(ctx)
	if caller == nil {
		return nil, httpx.ErrUnauthorized
	}
	if !caller.IsAdmin {
		f.UserID = caller.UserID
	}
	return s.repo.List(ctx, f)
}

func (s *Service) recordAudit(ctx context.Context, action string, req *Request) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if id := shared.IdentityFromContext(ctx); id != nil {
		actorID = id.UserID
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "leave_request",
		EntityID: fmt.Sprintf("%d", req.ID),
		Meta:     map[string]any{"status": req.Status, "total_days": req.TotalDays},
	})
	if err != nil {
		s.log.Warn("audit record failed", "action", action, "err", err)
	}
}
