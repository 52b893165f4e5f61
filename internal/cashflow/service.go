package cashflow

import (
	"context"
	"fmt"
	"time"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// RepositoryPort defines data access methods for the ledger.
type RepositoryPort interface {
	CreateCategory(ctx context.Context, input CategoryInput) (*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*Category, error)
	SoftDeleteCategory(ctx context.Context, id int64) error

	CreateEntry(ctx context.Context, input EntryInput) (*Entry, error)
	ListEntries(ctx context.Context, filters EntryFilters) ([]Entry, shared.Pagination, error)
	SoftDeleteEntry(ctx context.Context, id int64) error
}

// Service handles ledger business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateCategory validates and stores a category.
func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("cashflow: category name required: %w", httpx.ErrValidation)
	}
	return s.repo.CreateCategory(ctx, input)
}

// ListCategories returns all live categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// UpdateCategory validates and updates a category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*Category, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("cashflow: category name required: %w", httpx.ErrValidation)
	}
	return s.repo.UpdateCategory(ctx, id, input)
}

// DeleteCategory soft-deletes a category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.SoftDeleteCategory(ctx, id)
}

// CreateEntry records a manual ledger entry. Automatic invoice-payment
// entries never pass through here; the billing transaction posts them via
// the Poster.
func (s *Service) CreateEntry(ctx context.Context, input EntryInput) (*Entry, error) {
	if input.CategoryID <= 0 {
		return nil, fmt.Errorf("cashflow: manual entries require a category: %w", httpx.ErrValidation)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("cashflow: amount must be positive: %w", httpx.ErrValidation)
	}
	if _, err := s.repo.GetCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	return s.repo.CreateEntry(ctx, input)
}

// ListEntries returns ledger entries matching filters.
func (s *Service) ListEntries(ctx context.Context, filters EntryFilters) ([]Entry, shared.Pagination, error) {
	return s.repo.ListEntries(ctx, filters)
}

// DeleteEntry soft-deletes a ledger entry.
func (s *Service) DeleteEntry(ctx context.Context, id int64) error {
	return s.repo.SoftDeleteEntry(ctx, id)
}
