package employees

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

// RepositoryPort defines data access methods for employees.
type RepositoryPort interface {
	Create(ctx context.Context, in EmployeeInput, passwordHash string) (*Employee, error)
	Get(ctx context.Context, id int64) (*Employee, error)
	GetByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
	Update(ctx context.Context, id int64, in EmployeeInput) (*Employee, error)
	SetPasswordHash(ctx context.Context, id int64, hash string) error
	SoftDelete(ctx context.Context, id int64) error
}

// Service handles employee account management.
type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Create registers a new employee. A password is required at creation.
func (s *Service) Create(ctx context.Context, in EmployeeInput) (*Employee, error) {
	if in.Password == "" {
		return nil, fmt.Errorf("password required: %w", httpx.ErrValidation)
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in, hash)
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	return s.repo.List(ctx)
}

// Update changes profile fields. Password changes go through SetPassword.
func (s *Service) Update(ctx context.Context, id int64, in EmployeeInput) (*Employee, error) {
	return s.repo.Update(ctx, id, in)
}

// SetPassword replaces the stored bcrypt hash.
func (s *Service) SetPassword(ctx context.Context, id int64, plain string) error {
	if len(plain) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", httpx.ErrValidation)
	}
	hash, err := hashPassword(plain)
	if err != nil {
		return err
	}
	return s.repo.SetPasswordHash(ctx, id, hash)
}

// VerifyPassword checks a candidate password against the stored hash.
func (s *Service) VerifyPassword(ctx context.Context, email, plain string) (*Employee, error) {
	emp, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, httpx.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(plain)) != nil {
		return nil, httpx.ErrUnauthorized
	}
	return emp, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}
