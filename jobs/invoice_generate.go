package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/netmitra/netmitra/internal/billing"
	jobmetrics "github.com/netmitra/netmitra/internal/jobs"
)

// InvoiceGenerator is implemented by the billing service.
type InvoiceGenerator interface {
	Generate(ctx context.Context, month, year int) (billing.GenerateResult, error)
}

// InvoiceGenerateJob runs the monthly invoice batch from the queue.
type InvoiceGenerateJob struct {
	Generator InvoiceGenerator
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewInvoiceGenerateJob initialises the invoice batch handler.
func NewInvoiceGenerateJob(gen InvoiceGenerator, logger *slog.Logger, metrics *jobmetrics.Metrics) *InvoiceGenerateJob {
	return &InvoiceGenerateJob{
		Generator: gen,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the batch for the requested period.
func (j *InvoiceGenerateJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Generator == nil {
		return errors.New("invoice generate: handler not configured")
	}
	var payload InvoiceGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Month == 0 || payload.Year == 0 {
		now := j.clock()
		payload.Month = int(now.Month())
		payload.Year = now.Year()
	}

	started := j.clock()
	tracker := j.Metrics.Track("invoice_generate")
	result, err := j.Generator.Generate(ctx, payload.Month, payload.Year)
	if err != nil {
		j.Logger.Error("invoice batch failed",
			slog.Int("month", payload.Month),
			slog.Int("year", payload.Year),
			slog.Any("error", err))
		return tracker.End(err)
	}
	j.Metrics.AddInvoices("created", result.Created)
	j.Metrics.AddInvoices("skipped", len(result.Errors))

	j.Logger.Info("invoice batch finished",
		slog.Int("month", payload.Month),
		slog.Int("year", payload.Year),
		slog.Int("created", result.Created),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("took", j.clock().Sub(started)))
	for _, genErr := range result.Errors {
		j.Logger.Warn("invoice skipped",
			slog.Int64("customer", genErr.CustomerID),
			slog.String("reason", genErr.Reason))
	}
	return tracker.End(nil)
}
