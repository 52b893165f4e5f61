package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

func generatedInvoice(t *testing.T, repo *memoryBillingRepo, svc *Service) *Invoice {
	t.Helper()
	repo.customers = []BillableCustomer{{
		ID:           1,
		Name:         "Siti Rahma",
		JoinDate:     time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		BillDate:     billDay(10),
		PackageID:    4,
		PackagePrice: mustDec(t, "100000"),
	}}
	result, err := svc.Generate(context.Background(), 6, 2025)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	inv, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	return inv
}

func TestMarkPaidPostsExactlyOneLedgerEntry(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo, "11")
	inv := generatedInvoice(t, repo, svc)
	ctx := context.Background()

	paidAt := time.Date(2025, time.June, 12, 9, 30, 0, 0, time.UTC)
	paid, err := svc.MarkPaid(ctx, inv.ID, paidAt, "transfer BCA")
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	require.Equal(t, paidAt, *paid.PaidAt)
	require.Equal(t, 1, repo.ledger[inv.Number])

	// A second payment attempt is rejected and the ledger stays untouched.
	_, err = svc.MarkPaid(ctx, inv.ID, time.Now(), "")
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Equal(t, 1, repo.ledger[inv.Number])
}

func TestMarkUnpaidReversesLedgerEntry(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo, "11")
	inv := generatedInvoice(t, repo, svc)
	ctx := context.Background()

	_, err := svc.MarkPaid(ctx, inv.ID, time.Now(), "")
	require.NoError(t, err)

	reverted, err := svc.MarkUnpaid(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusUnpaid, reverted.Status)
	require.Nil(t, reverted.PaidAt)
	require.Zero(t, repo.ledger[inv.Number])

	// Re-paying after a revert posts a fresh entry.
	_, err = svc.MarkPaid(ctx, inv.ID, time.Now(), "")
	require.NoError(t, err)
	require.Equal(t, 1, repo.ledger[inv.Number])
}

func TestMarkUnpaidRequiresPaidStatus(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo, "11")
	inv := generatedInvoice(t, repo, svc)

	_, err := svc.MarkUnpaid(context.Background(), inv.ID)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestMarkCancelledOnlyFromUnpaid(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo, "11")
	inv := generatedInvoice(t, repo, svc)
	ctx := context.Background()

	_, err := svc.MarkPaid(ctx, inv.ID, time.Now(), "")
	require.NoError(t, err)

	_, err = svc.MarkCancelled(ctx, inv.ID)
	require.ErrorIs(t, err, httpx.ErrConflict)

	_, err = svc.MarkUnpaid(ctx, inv.ID)
	require.NoError(t, err)

	cancelled, err := svc.MarkCancelled(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	// Cancelled invoices cannot be paid.
	_, err = svc.MarkPaid(ctx, inv.ID, time.Now(), "")
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestDeleteInvoiceHidesIt(t *testing.T) {
	repo := newMemoryBillingRepo()
	svc := newBillingService(repo, "11")
	inv := generatedInvoice(t, repo, svc)
	ctx := context.Background()

	require.NoError(t, svc.DeleteInvoice(ctx, inv.ID))
	_, err := svc.GetInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
