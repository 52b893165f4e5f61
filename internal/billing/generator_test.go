package billing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

type periodKey struct {
	customerID  int64
	month, year int
}

// memoryBillingRepo emulates the Postgres repository: per-period counters,
// the unique customer/period constraint, and in-transaction ledger posting.
type memoryBillingRepo struct {
	nextID    int64
	counters  map[[2]int]int
	invoices  map[int64]*Invoice
	byPeriod  map[periodKey]int64
	ledger    map[string]int
	customers []BillableCustomer
	lockCalls int
}

func newMemoryBillingRepo() *memoryBillingRepo {
	return &memoryBillingRepo{
		nextID:   1,
		counters: map[[2]int]int{},
		invoices: map[int64]*Invoice{},
		byPeriod: map[periodKey]int64{},
		ledger:   map[string]int{},
	}
}

func (m *memoryBillingRepo) WithPeriodLock(ctx context.Context, year, month int, fn func(context.Context) error) error {
	m.lockCalls++
	return fn(ctx)
}

func (m *memoryBillingRepo) ListBillableCustomers(_ context.Context) ([]BillableCustomer, error) {
	return m.customers, nil
}

func (m *memoryBillingRepo) HasInvoiceForPeriod(_ context.Context, customerID int64, month, year int) (bool, error) {
	_, ok := m.byPeriod[periodKey{customerID, month, year}]
	return ok, nil
}

func (m *memoryBillingRepo) CreateInvoice(_ context.Context, input CreateInvoiceInput) (*Invoice, error) {
	key := periodKey{input.CustomerID, input.PeriodMonth, input.PeriodYear}
	if _, ok := m.byPeriod[key]; ok {
		return nil, ErrDuplicatePeriod
	}
	counterKey := [2]int{input.PeriodYear, input.PeriodMonth}
	m.counters[counterKey]++
	inv := &Invoice{
		ID:          m.nextID,
		Number:      FormatNumber(input.PeriodYear, input.PeriodMonth, m.counters[counterKey]),
		CustomerID:  input.CustomerID,
		PackageID:   input.PackageID,
		Amount:      input.Amount,
		PPN:         input.PPN,
		TotalAmount: input.TotalAmount,
		Status:      StatusUnpaid,
		DueDate:     input.DueDate,
		PeriodMonth: input.PeriodMonth,
		PeriodYear:  input.PeriodYear,
		CreatedAt:   time.Now(),
	}
	m.invoices[inv.ID] = inv
	m.byPeriod[key] = inv.ID
	m.nextID++
	copied := *inv
	return &copied, nil
}

func (m *memoryBillingRepo) Get(_ context.Context, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.DeletedAt != nil {
		return nil, httpx.ErrNotFound
	}
	copied := *inv
	return &copied, nil
}

func (m *memoryBillingRepo) List(_ context.Context, filters ListFilters) ([]Invoice, shared.Pagination, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		if inv.DeletedAt != nil {
			continue
		}
		if filters.Status != "" && inv.Status != filters.Status {
			continue
		}
		if filters.CustomerID > 0 && inv.CustomerID != filters.CustomerID {
			continue
		}
		out = append(out, *inv)
	}
	return out, shared.Pagination{Total: len(out)}, nil
}

func (m *memoryBillingRepo) MarkPaid(_ context.Context, id int64, paidAt time.Time, note string) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.DeletedAt != nil {
		return nil, httpx.ErrNotFound
	}
	switch inv.Status {
	case StatusPaid:
		return nil, ErrAlreadyPaid
	case StatusCancelled:
		return nil, ErrNotUnpaid
	}
	inv.Status = StatusPaid
	inv.PaidAt = &paidAt
	inv.Note = note
	m.ledger[inv.Number]++
	copied := *inv
	return &copied, nil
}

func (m *memoryBillingRepo) MarkUnpaid(_ context.Context, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.DeletedAt != nil {
		return nil, httpx.ErrNotFound
	}
	if inv.Status != StatusPaid {
		return nil, ErrNotPaid
	}
	inv.Status = StatusUnpaid
	inv.PaidAt = nil
	delete(m.ledger, inv.Number)
	copied := *inv
	return &copied, nil
}

func (m *memoryBillingRepo) MarkCancelled(_ context.Context, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.DeletedAt != nil {
		return nil, httpx.ErrNotFound
	}
	if inv.Status != StatusUnpaid {
		if inv.Status == StatusPaid {
			return nil, ErrNotUnpaid
		}
		return nil, ErrNotUnpaid
	}
	inv.Status = StatusCancelled
	copied := *inv
	return &copied, nil
}

func (m *memoryBillingRepo) SoftDelete(_ context.Context, id int64) error {
	inv, ok := m.invoices[id]
	if !ok || inv.DeletedAt != nil {
		return httpx.ErrNotFound
	}
	now := time.Now()
	inv.DeletedAt = &now
	return nil
}

type fixedTax struct{ rate decimal.Decimal }

func (f fixedTax) PPN(context.Context) (decimal.Decimal, error) { return f.rate, nil }

func billDay(d int) *int { return &d }

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newBillingService(repo *memoryBillingRepo, ppn string) *Service {
	return NewService(repo, fixedTax{rate: decimal.RequireFromString(ppn)}, nil)
}

func TestGenerateCreatesInvoiceWithSnapshot(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo, "11")
	repo.customers = []BillableCustomer{{
		ID:           1,
		Name:         "Siti Rahma",
		JoinDate:     time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		BillDate:     billDay(10),
		PackageID:    4,
		PackagePrice: mustDec(t, "100000"),
	}}

	result, err := svc.Generate(context.Background(), 3, 2025)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	require.Empty(t, result.Errors)

	inv, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "INV/202503/0001", inv.Number)
	require.Equal(t, StatusUnpaid, inv.Status)
	require.True(t, inv.TotalAmount.Equal(mustDec(t, "111000.00")), "total %s", inv.TotalAmount)
	require.True(t, inv.Amount.Equal(mustDec(t, "100000")))
	require.True(t, inv.PPN.Equal(mustDec(t, "11")))
	require.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), inv.DueDate)
}

func TestGenerateIsIdempotent(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo, "11")
	repo.customers = []BillableCustomer{{
		ID:           1,
		Name:         "Siti Rahma",
		JoinDate:     time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
		BillDate:     billDay(2),
		PackageID:    4,
		PackagePrice: mustDec(t, "150000"),
	}}

	first, err := svc.Generate(context.Background(), 6, 2025)
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)

	second, err := svc.Generate(context.Background(), 6, 2025)
	require.NoError(t, err)
	require.Zero(t, second.Created)
	require.Empty(t, second.Errors)
	require.Len(t, repo.invoices, 1)
	require.Equal(t, 2, repo.lockCalls)
}

func TestGenerateSequenceIsGapless(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo, "11")
	join := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	repo.customers = []BillableCustomer{
		{ID: 1, Name: "A", JoinDate: join, BillDate: billDay(1), PackageID: 4, PackagePrice: mustDec(t, "100000")},
		{ID: 2, Name: "B", JoinDate: join, BillDate: billDay(5), PackageID: 4, PackagePrice: mustDec(t, "100000")},
	}

	result, err := svc.Generate(context.Background(), 6, 2025)
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)

	numbers := map[string]bool{}
	for _, inv := range repo.invoices {
		numbers[inv.Number] = true
	}
	require.True(t, numbers["INV/202506/0001"])
	require.True(t, numbers["INV/202506/0002"])
}

func TestGenerateSkipsIneligibleCustomers(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo, "11")
	repo.customers = []BillableCustomer{
		// No bill date configured.
		{ID: 1, Name: "No Bill Date", JoinDate: time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC), PackageID: 4, PackagePrice: mustDec(t, "100000")},
		// Joined in a different month.
		{ID: 2, Name: "Wrong Month", JoinDate: time.Date(2025, time.May, 3, 0, 0, 0, 0, time.UTC), BillDate: billDay(3), PackageID: 4, PackagePrice: mustDec(t, "100000")},
	}

	result, err := svc.Generate(context.Background(), 6, 2025)
	require.NoError(t, err)
	require.Zero(t, result.Created)
	require.Empty(t, result.Errors, "ineligible customers are skipped silently")
}

func TestGenerateReportsMissingPackage(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo, "11")
	join := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	repo.customers = []BillableCustomer{
		// Package soft-deleted after the customer was registered.
		{ID: 1, Name: "Orphaned", JoinDate: join, BillDate: billDay(5)},
		{ID: 2, Name: "Fine", JoinDate: join, BillDate: billDay(5), PackageID: 4, PackagePrice: mustDec(t, "100000")},
	}

	result, err := svc.Generate(context.Background(), 6, 2025)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 1)
	require.Equal(t, int64(1), result.Errors[0].CustomerID)
	require.Contains(t, result.Errors[0].Reason, "package")
}

func TestGenerateCollectsPerCustomerErrors(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo, "11")
	join := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	repo.customers = []BillableCustomer{
		// Day 30 does not exist in February; this one is reported.
		{ID: 1, Name: "Bad Due Day", JoinDate: join, BillDate: billDay(30), PackageID: 4, PackagePrice: mustDec(t, "100000")},
		{ID: 2, Name: "Fine", JoinDate: join, BillDate: billDay(1), PackageID: 4, PackagePrice: mustDec(t, "100000")},
	}

	result, err := svc.Generate(context.Background(), 2, 2025)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 1)
	require.Equal(t, int64(1), result.Errors[0].CustomerID)
}

func TestGenerateRejectsBadPeriod(t *testing.T) {
	svc := newBillingService(newMemoryBillingRepo(), "11")

	_, err := svc.Generate(context.Background(), 13, 2025)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Generate(context.Background(), 1, 1999)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestTotalWithTaxRounding(t *testing.T) {
	require.Equal(t, "111000.00", TotalWithTax(mustDec(t, "100000"), mustDec(t, "11")).StringFixed(2))
	// 99.59 * 1.11 = 110.5449, which rounds down at two decimals.
	require.Equal(t, "110.54", TotalWithTax(mustDec(t, "99.59"), mustDec(t, "11")).StringFixed(2))
	require.Equal(t, "110.56", TotalWithTax(mustDec(t, "99.6"), mustDec(t, "11")).StringFixed(2))
	require.Equal(t, "100000.00", TotalWithTax(mustDec(t, "100000"), decimal.Zero).StringFixed(2))
}

func TestFormatNumberPadding(t *testing.T) {
	require.Equal(t, "INV/202506/0001", FormatNumber(2025, 6, 1))
	require.Equal(t, "INV/202512/0123", FormatNumber(2025, 12, 123))
}
