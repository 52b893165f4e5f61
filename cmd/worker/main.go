package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/netmitra/netmitra/internal/app"
	"github.com/netmitra/netmitra/internal/billing"
	"github.com/netmitra/netmitra/internal/cashflow"
	jobmetrics "github.com/netmitra/netmitra/internal/jobs"
	"github.com/netmitra/netmitra/internal/platform/cache"
	"github.com/netmitra/netmitra/internal/platform/db"
	"github.com/netmitra/netmitra/internal/settings"
	"github.com/netmitra/netmitra/internal/shared"
	"github.com/netmitra/netmitra/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	settingsRepo := settings.NewRepository(pool)
	settingsCache := settings.NewCache(redisClient, cfg.SettingsCacheTTL)
	settingsService := settings.NewService(settingsRepo, settingsCache)

	ledgerPoster := cashflow.NewPoster()
	billingRepo := billing.NewRepository(pool, ledgerPoster)
	billingService := billing.NewService(billingRepo, settingsService, auditLogger)

	generateJob := jobs.NewInvoiceGenerateJob(billingService, logger, jobmetrics.NewMetrics(nil))

	// The scheduled task carries a zero period so the handler resolves the
	// month at execution time.
	generateTask, err := jobs.NewInvoiceGenerateTask(jobs.InvoiceGeneratePayload{})
	if err != nil {
		logger.Error("build invoice task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeInvoiceGenerate, Handler: generateJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.InvoiceCronSpec, Task: generateTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
