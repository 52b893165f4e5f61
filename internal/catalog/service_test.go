package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

type memoryCatalogRepo struct {
	packages map[int64]*Package
	nextID   int64
}

func newMemoryCatalogRepo() *memoryCatalogRepo {
	return &memoryCatalogRepo{packages: make(map[int64]*Package)}
}

func (r *memoryCatalogRepo) Create(ctx context.Context, input PackageInput) (*Package, error) {
	r.nextID++
	p := &Package{ID: r.nextID, Name: input.Name, Speed: input.Speed, Price: input.Price, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.packages[p.ID] = p
	return p, nil
}

func (r *memoryCatalogRepo) Get(ctx context.Context, id int64) (*Package, error) {
	p, ok := r.packages[id]
	if !ok || p.DeletedAt != nil {
		return nil, fmt.Errorf("catalog: package %d: %w", id, httpx.ErrNotFound)
	}
	return p, nil
}

func (r *memoryCatalogRepo) List(ctx context.Context) ([]Package, error) {
	var out []Package
	for _, p := range r.packages {
		if p.DeletedAt == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryCatalogRepo) Update(ctx context.Context, id int64, input PackageInput) (*Package, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name, p.Speed, p.Price = input.Name, input.Speed, input.Price
	return p, nil
}

func (r *memoryCatalogRepo) SoftDelete(ctx context.Context, id int64) error {
	p, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now()
	p.DeletedAt = &now
	return nil
}

func TestCreatePackageRejectsNegativePrice(t *testing.T) {
	svc := NewService(newMemoryCatalogRepo())
	_, err := svc.CreatePackage(context.Background(), PackageInput{
		Name:  "Home 20",
		Speed: 20,
		Price: decimal.NewFromInt(-1),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeletePackageIsSoft(t *testing.T) {
	repo := newMemoryCatalogRepo()
	svc := NewService(repo)
	ctx := context.Background()

	pkg, err := svc.CreatePackage(ctx, PackageInput{Name: "Home 20", Speed: 20, Price: decimal.NewFromInt(150000)})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePackage(ctx, pkg.ID))

	_, err = svc.GetPackage(ctx, pkg.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	// Row still exists for historical references.
	require.NotNil(t, repo.packages[pkg.ID].DeletedAt)
}
