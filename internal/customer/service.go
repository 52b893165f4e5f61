package customer

import (
	"context"
	"fmt"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// RepositoryPort defines data access methods for customers.
type RepositoryPort interface {
	Create(ctx context.Context, input CustomerInput) (*Customer, error)
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context, filters ListFilters) ([]Customer, shared.Pagination, error)
	Update(ctx context.Context, id int64, input CustomerInput) (*Customer, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Customer, error)
	SoftDelete(ctx context.Context, id int64) error
}

// PackageChecker verifies package references without importing the catalog
// repository directly.
type PackageChecker interface {
	PackageExists(ctx context.Context, id int64) (bool, error)
}

// Service handles customer business logic.
type Service struct {
	repo     RepositoryPort
	packages PackageChecker
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, packages PackageChecker) *Service {
	return &Service{repo: repo, packages: packages}
}

func (s *Service) validateInput(ctx context.Context, input CustomerInput) error {
	if input.Name == "" {
		return fmt.Errorf("customer: name required: %w", httpx.ErrValidation)
	}
	if input.JoinDate.IsZero() {
		return fmt.Errorf("customer: join_date required: %w", httpx.ErrValidation)
	}
	if err := ValidateBillDate(input.BillDate); err != nil {
		return err
	}
	if s.packages != nil {
		ok, err := s.packages.PackageExists(ctx, input.PackageID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("customer: package %d: %w", input.PackageID, httpx.ErrNotFound)
		}
	}
	return nil
}

// CreateCustomer registers a subscriber, defaulting status to ACTIVE.
func (s *Service) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = StatusActive
	}
	return s.repo.Create(ctx, input)
}

// GetCustomer returns one subscriber.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// ListCustomers returns subscribers matching filters.
func (s *Service) ListCustomers(ctx context.Context, filters ListFilters) ([]Customer, shared.Pagination, error) {
	return s.repo.List(ctx, filters)
}

// UpdateCustomer updates subscriber details.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, input CustomerInput) (*Customer, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, input)
}

// ChangeStatus moves a subscriber to the given canonical status.
func (s *Service) ChangeStatus(ctx context.Context, id int64, raw string) (*Customer, error) {
	status, err := ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// DeleteCustomer soft-deletes a subscriber.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}
