package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// RepositoryPort defines data access methods for billing.
type RepositoryPort interface {
	WithPeriodLock(ctx context.Context, year, month int, fn func(context.Context) error) error
	ListBillableCustomers(ctx context.Context) ([]BillableCustomer, error)
	HasInvoiceForPeriod(ctx context.Context, customerID int64, month, year int) (bool, error)
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error)
	Get(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, filters ListFilters) ([]Invoice, shared.Pagination, error)
	MarkPaid(ctx context.Context, id int64, paidAt time.Time, note string) (*Invoice, error)
	MarkUnpaid(ctx context.Context, id int64) (*Invoice, error)
	MarkCancelled(ctx context.Context, id int64) (*Invoice, error)
	SoftDelete(ctx context.Context, id int64) error
}

// TaxSource provides the tax percentage in effect at generation time.
type TaxSource interface {
	PPN(ctx context.Context) (decimal.Decimal, error)
}

// ListFilters narrows invoice listings.
type ListFilters struct {
	Status      InvoiceStatus
	CustomerID  int64
	PeriodMonth int
	PeriodYear  int
	Page        int
	Limit       int
}

// Service handles billing business logic.
type Service struct {
	repo  RepositoryPort
	taxes TaxSource
	audit *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, taxes TaxSource, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, taxes: taxes, audit: audit}
}

// GetInvoice returns one invoice.
func (s *Service) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// ListInvoices returns invoices matching filters.
func (s *Service) ListInvoices(ctx context.Context, filters ListFilters) ([]Invoice, shared.Pagination, error) {
	return s.repo.List(ctx, filters)
}

// MarkPaid transitions an invoice to paid and posts the matching ledger
// entry in the same transaction. Paying an already-paid invoice is rejected
// so the ledger never receives a duplicate entry.
func (s *Service) MarkPaid(ctx context.Context, id int64, paidAt time.Time, note string) (*Invoice, error) {
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	inv, err := s.repo.MarkPaid(ctx, id, paidAt, note)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "invoice.paid", inv)
	return inv, nil
}

// MarkUnpaid reverts a paid invoice to unpaid and reverses the ledger entry
// created when it was paid, keeping the ledger consistent with invoice state.
func (s *Service) MarkUnpaid(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := s.repo.MarkUnpaid(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "invoice.unpaid", inv)
	return inv, nil
}

// MarkCancelled cancels an unpaid invoice. Paid invoices must be reverted
// to unpaid first.
func (s *Service) MarkCancelled(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := s.repo.MarkCancelled(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "invoice.cancelled", inv)
	return inv, nil
}

// DeleteInvoice soft-deletes an invoice.
func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, action string, inv *Invoice) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if id := shared.IdentityFromContext(ctx); id != nil {
		actorID = id.UserID
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "invoice",
		EntityID: inv.Number,
		Meta:     map[string]any{"status": inv.Status, "total": inv.TotalAmount.StringFixed(2)},
	})
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("billing: period_month must be 1-12: %w", httpx.ErrValidation)
	}
	if year < 2000 {
		return fmt.Errorf("billing: period_year must be 2000 or later: %w", httpx.ErrValidation)
	}
	return nil
}
