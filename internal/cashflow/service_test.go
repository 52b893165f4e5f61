package cashflow

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

type memoryCashflowRepo struct {
	nextCategoryID int64
	nextEntryID    int64
	categories     map[int64]*Category
	entries        map[int64]*Entry
}

func newMemoryCashflowRepo() *memoryCashflowRepo {
	return &memoryCashflowRepo{
		nextCategoryID: 1,
		nextEntryID:    1,
		categories:     map[int64]*Category{},
		entries:        map[int64]*Entry{},
	}
}

func (m *memoryCashflowRepo) CreateCategory(_ context.Context, input CategoryInput) (*Category, error) {
	c := &Category{ID: m.nextCategoryID, Name: input.Name, IsOut: input.IsOut, Note: input.Note}
	m.categories[c.ID] = c
	m.nextCategoryID++
	copied := *c
	return &copied, nil
}

func (m *memoryCashflowRepo) GetCategory(_ context.Context, id int64) (*Category, error) {
	c, ok := m.categories[id]
	if !ok || c.DeletedAt != nil {
		return nil, httpx.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memoryCashflowRepo) ListCategories(_ context.Context) ([]Category, error) {
	var out []Category
	for _, c := range m.categories {
		if c.DeletedAt == nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memoryCashflowRepo) UpdateCategory(_ context.Context, id int64, input CategoryInput) (*Category, error) {
	c, ok := m.categories[id]
	if !ok || c.DeletedAt != nil {
		return nil, httpx.ErrNotFound
	}
	c.Name, c.IsOut, c.Note = input.Name, input.IsOut, input.Note
	copied := *c
	return &copied, nil
}

func (m *memoryCashflowRepo) SoftDeleteCategory(_ context.Context, id int64) error {
	c, ok := m.categories[id]
	if !ok || c.DeletedAt != nil {
		return httpx.ErrNotFound
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

func (m *memoryCashflowRepo) CreateEntry(_ context.Context, input EntryInput) (*Entry, error) {
	categoryID := input.CategoryID
	e := &Entry{
		ID:         m.nextEntryID,
		CategoryID: &categoryID,
		Amount:     input.Amount,
		Date:       input.Date,
		Note:       input.Note,
		CustomerID: input.CustomerID,
	}
	m.entries[e.ID] = e
	m.nextEntryID++
	copied := *e
	return &copied, nil
}

func (m *memoryCashflowRepo) ListEntries(_ context.Context, filters EntryFilters) ([]Entry, shared.Pagination, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.DeletedAt != nil {
			continue
		}
		if filters.CategoryID > 0 && (e.CategoryID == nil || *e.CategoryID != filters.CategoryID) {
			continue
		}
		out = append(out, *e)
	}
	return out, shared.Pagination{Total: len(out)}, nil
}

func (m *memoryCashflowRepo) SoftDeleteEntry(_ context.Context, id int64) error {
	e, ok := m.entries[id]
	if !ok || e.DeletedAt != nil {
		return httpx.ErrNotFound
	}
	now := time.Now()
	e.DeletedAt = &now
	return nil
}

func TestCreateEntryValidation(t *testing.T) {
	repo := newMemoryCashflowRepo()
	svc := NewService(repo)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "Sewa bandwidth", IsOut: true})
	require.NoError(t, err)

	// Manual entries require a category.
	_, err = svc.CreateEntry(ctx, EntryInput{Amount: decimal.NewFromInt(500000)})
	require.ErrorIs(t, err, httpx.ErrValidation)

	// And a positive amount.
	_, err = svc.CreateEntry(ctx, EntryInput{CategoryID: cat.ID, Amount: decimal.Zero})
	require.ErrorIs(t, err, httpx.ErrValidation)

	// And the category must exist.
	_, err = svc.CreateEntry(ctx, EntryInput{CategoryID: 999, Amount: decimal.NewFromInt(500000)})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	entry, err := svc.CreateEntry(ctx, EntryInput{CategoryID: cat.ID, Amount: decimal.NewFromInt(500000), Note: "Juni"})
	require.NoError(t, err)
	require.NotNil(t, entry.CategoryID)
	require.Equal(t, cat.ID, *entry.CategoryID)
	require.False(t, entry.Date.IsZero(), "date defaults to now")
}

func TestCategoryNameRequired(t *testing.T) {
	svc := NewService(newMemoryCashflowRepo())
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CategoryInput{})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.UpdateCategory(ctx, 1, CategoryInput{})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteEntryIsSoft(t *testing.T) {
	repo := newMemoryCashflowRepo()
	svc := NewService(repo)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "Perawatan alat", IsOut: true})
	require.NoError(t, err)
	entry, err := svc.CreateEntry(ctx, EntryInput{CategoryID: cat.ID, Amount: decimal.NewFromInt(75000)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntry(ctx, entry.ID))
	require.NotNil(t, repo.entries[entry.ID].DeletedAt, "row survives as soft-deleted")

	listed, _, err := svc.ListEntries(ctx, EntryFilters{})
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestPaymentSourceIDIsDeterministic(t *testing.T) {
	a := PaymentSourceID("INV/202506/0001")
	b := PaymentSourceID("INV/202506/0001")
	c := PaymentSourceID("INV/202506/0002")
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}
