package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/netmitra/netmitra/internal/billing"
)

type fakeGenerator struct {
	month, year int
	result      billing.GenerateResult
	err         error
}

func (f *fakeGenerator) Generate(_ context.Context, month, year int) (billing.GenerateResult, error) {
	f.month, f.year = month, year
	return f.result, f.err
}

func TestInvoiceGenerateJobUsesPayloadPeriod(t *testing.T) {
	gen := &fakeGenerator{result: billing.GenerateResult{Created: 3}}
	job := NewInvoiceGenerateJob(gen, slog.Default(), nil)

	task, err := NewInvoiceGenerateTask(InvoiceGeneratePayload{Month: 6, Year: 2025})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 6, gen.month)
	require.Equal(t, 2025, gen.year)
}

func TestInvoiceGenerateJobResolvesCurrentPeriod(t *testing.T) {
	gen := &fakeGenerator{}
	job := NewInvoiceGenerateJob(gen, slog.Default(), nil)
	job.clock = func() time.Time { return time.Date(2025, time.March, 1, 1, 0, 0, 0, time.UTC) }

	task, err := NewInvoiceGenerateTask(InvoiceGeneratePayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 3, gen.month)
	require.Equal(t, 2025, gen.year)
}

func TestInvoiceGenerateJobSkipsMalformedPayload(t *testing.T) {
	gen := &fakeGenerator{}
	job := NewInvoiceGenerateJob(gen, slog.Default(), nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskTypeInvoiceGenerate, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, gen.month)
}
