package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

// RepositoryPort defines data access methods for settings.
type RepositoryPort interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]Setting, error)
}

// Service handles settings business logic.
type Service struct {
	repo  RepositoryPort
	cache *Cache
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Get returns the value for key, going through the cache.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	return s.cache.Get(ctx, key, func(ctx context.Context) (string, error) {
		return s.repo.Get(ctx, key)
	})
}

// Set stores a value and invalidates the cached copy.
func (s *Service) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("settings: key required: %w", httpx.ErrValidation)
	}
	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, key)
	return nil
}

// List returns all settings.
func (s *Service) List(ctx context.Context) ([]Setting, error) {
	return s.repo.List(ctx)
}

// PPN returns the current tax percentage, falling back to the default when
// the key is unset or unparsable.
func (s *Service) PPN(ctx context.Context) (decimal.Decimal, error) {
	fallback, _ := decimal.NewFromString(DefaultPPN)
	raw, err := s.Get(ctx, KeyPPN)
	if errors.Is(err, httpx.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return decimal.Decimal{}, err
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return fallback, nil
	}
	return rate, nil
}
