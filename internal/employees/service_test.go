package employees

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

type memoryEmployeeRepo struct {
	nextID    int64
	employees map[int64]*Employee
}

func newMemoryEmployeeRepo() *memoryEmployeeRepo {
	return &memoryEmployeeRepo{nextID: 1, employees: map[int64]*Employee{}}
}

func (m *memoryEmployeeRepo) Create(_ context.Context, in EmployeeInput, hash string) (*Employee, error) {
	for _, e := range m.employees {
		if e.Email == in.Email {
			return nil, httpx.ErrConflict
		}
	}
	emp := &Employee{ID: m.nextID, Name: in.Name, Email: in.Email, Phone: in.Phone, Position: in.Position, IsAdmin: in.IsAdmin, PasswordHash: hash}
	m.employees[emp.ID] = emp
	m.nextID++
	copied := *emp
	return &copied, nil
}

func (m *memoryEmployeeRepo) Get(_ context.Context, id int64) (*Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *emp
	return &copied, nil
}

func (m *memoryEmployeeRepo) GetByEmail(_ context.Context, email string) (*Employee, error) {
	for _, e := range m.employees {
		if e.Email == email {
			copied := *e
			return &copied, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *memoryEmployeeRepo) List(_ context.Context) ([]Employee, error) {
	var out []Employee
	for _, e := range m.employees {
		out = append(out, *e)
	}
	return out, nil
}

func (m *memoryEmployeeRepo) Update(_ context.Context, id int64, in EmployeeInput) (*Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	emp.Name, emp.Email, emp.Phone, emp.Position, emp.IsAdmin = in.Name, in.Email, in.Phone, in.Position, in.IsAdmin
	copied := *emp
	return &copied, nil
}

func (m *memoryEmployeeRepo) SetPasswordHash(_ context.Context, id int64, hash string) error {
	emp, ok := m.employees[id]
	if !ok {
		return httpx.ErrNotFound
	}
	emp.PasswordHash = hash
	return nil
}

func (m *memoryEmployeeRepo) SoftDelete(_ context.Context, id int64) error {
	if _, ok := m.employees[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newMemoryEmployeeRepo()
	svc := NewService(repo)

	emp, err := svc.Create(context.Background(), EmployeeInput{
		Name:     "Budi Santoso",
		Email:    "budi@example.com",
		Position: "technician",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	require.NotEqual(t, "hunter2hunter2", emp.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte("hunter2hunter2")))
}

func TestCreateRequiresPassword(t *testing.T) {
	svc := NewService(newMemoryEmployeeRepo())
	_, err := svc.Create(context.Background(), EmployeeInput{Name: "Budi", Email: "budi@example.com"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestVerifyPassword(t *testing.T) {
	repo := newMemoryEmployeeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, EmployeeInput{Name: "Budi", Email: "budi@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	emp, err := svc.VerifyPassword(ctx, "budi@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, "budi@example.com", emp.Email)

	_, err = svc.VerifyPassword(ctx, "budi@example.com", "wrong")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)

	_, err = svc.VerifyPassword(ctx, "nobody@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestSetPasswordRejectsShort(t *testing.T) {
	repo := newMemoryEmployeeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	emp, err := svc.Create(ctx, EmployeeInput{Name: "Budi", Email: "budi@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.SetPassword(ctx, emp.ID, "short"), httpx.ErrValidation)
	require.NoError(t, svc.SetPassword(ctx, emp.ID, "anotherlongone"))

	_, err = svc.VerifyPassword(ctx, "budi@example.com", "anotherlongone")
	require.NoError(t, err)
}
