package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/netmitra/netmitra/internal/app"
	"github.com/netmitra/netmitra/internal/attendance"
	"github.com/netmitra/netmitra/internal/billing"
	"github.com/netmitra/netmitra/internal/cashflow"
	"github.com/netmitra/netmitra/internal/catalog"
	"github.com/netmitra/netmitra/internal/customer"
	"github.com/netmitra/netmitra/internal/employees"
	"github.com/netmitra/netmitra/internal/leave"
	"github.com/netmitra/netmitra/internal/observability"
	"github.com/netmitra/netmitra/internal/platform/cache"
	"github.com/netmitra/netmitra/internal/platform/db"
	"github.com/netmitra/netmitra/internal/settings"
	"github.com/netmitra/netmitra/internal/shared"
	"github.com/netmitra/netmitra/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	auditLogger := shared.NewAuditLogger(dbpool)

	settingsRepo := settings.NewRepository(dbpool)
	settingsCache := settings.NewCache(redisClient, cfg.SettingsCacheTTL)
	settingsService := settings.NewService(settingsRepo, settingsCache)
	settingsHandler := settings.NewHandler(logger, settingsService)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	customerRepo := customer.NewRepository(dbpool)
	customerService := customer.NewService(customerRepo, catalogRepo)
	customerHandler := customer.NewHandler(logger, customerService)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect jobs queue", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	ledgerPoster := cashflow.NewPoster()
	billingRepo := billing.NewRepository(dbpool, ledgerPoster)
	billingService := billing.NewService(billingRepo, settingsService, auditLogger)
	billingHandler := billing.NewHandler(logger, billingService, func(ctx context.Context, month, year int) (string, error) {
		info, err := jobsClient.EnqueueInvoiceGenerate(ctx, jobs.InvoiceGeneratePayload{Month: month, Year: year})
		if err != nil {
			return "", err
		}
		return info.ID, nil
	})

	cashflowRepo := cashflow.NewRepository(dbpool)
	cashflowService := cashflow.NewService(cashflowRepo)
	cashflowHandler := cashflow.NewHandler(logger, cashflowService)

	attendanceRepo := attendance.NewRepository(dbpool)
	attendanceService := attendance.NewService(attendanceRepo, attendance.Config{LateCutoff: cfg.AttendanceLateCutoff})
	attendanceHandler := attendance.NewHandler(logger, attendanceService)

	leaveRepo := leave.NewRepository(dbpool)
	leaveService := leave.NewService(leaveRepo, auditLogger, logger)
	leaveHandler := leave.NewHandler(logger, leaveService)

	employeeRepo := employees.NewRepository(dbpool)
	employeeService := employees.NewService(employeeRepo)
	employeeHandler := employees.NewHandler(logger, employeeService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SettingsHandler:   settingsHandler,
		CatalogHandler:    catalogHandler,
		CustomerHandler:   customerHandler,
		BillingHandler:    billingHandler,
		CashflowHandler:   cashflowHandler,
		AttendanceHandler: attendanceHandler,
		LeaveHandler:      leaveHandler,
		EmployeesHandler:  employeeHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
