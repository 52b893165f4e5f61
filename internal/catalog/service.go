package catalog

import (
	"context"
	"fmt"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

// RepositoryPort defines data access methods for the catalog.
type RepositoryPort interface {
	Create(ctx context.Context, input PackageInput) (*Package, error)
	Get(ctx context.Context, id int64) (*Package, error)
	List(ctx context.Context) ([]Package, error)
	Update(ctx context.Context, id int64, input PackageInput) (*Package, error)
	SoftDelete(ctx context.Context, id int64) error
}

// Service handles catalog business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func validateInput(input PackageInput) error {
	if input.Name == "" {
		return fmt.Errorf("catalog: name required: %w", httpx.ErrValidation)
	}
	if input.Speed <= 0 {
		return fmt.Errorf("catalog: speed must be positive: %w", httpx.ErrValidation)
	}
	if input.Price.IsNegative() {
		return fmt.Errorf("catalog: price must not be negative: %w", httpx.ErrValidation)
	}
	return nil
}

// CreatePackage validates and stores a new package.
func (s *Service) CreatePackage(ctx context.Context, input PackageInput) (*Package, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, input)
}

// GetPackage returns one package.
func (s *Service) GetPackage(ctx context.Context, id int64) (*Package, error) {
	return s.repo.Get(ctx, id)
}

// ListPackages returns all live packages.
func (s *Service) ListPackages(ctx context.Context) ([]Package, error) {
	return s.repo.List(ctx)
}

// UpdatePackage validates and updates a package.
func (s *Service) UpdatePackage(ctx context.Context, id int64, input PackageInput) (*Package, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, input)
}

// DeletePackage soft-deletes a package.
func (s *Service) DeletePackage(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}
