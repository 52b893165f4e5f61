package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/netmitra/netmitra/internal/attendance"
	"github.com/netmitra/netmitra/internal/billing"
	"github.com/netmitra/netmitra/internal/cashflow"
	"github.com/netmitra/netmitra/internal/catalog"
	"github.com/netmitra/netmitra/internal/customer"
	"github.com/netmitra/netmitra/internal/employees"
	"github.com/netmitra/netmitra/internal/leave"
	"github.com/netmitra/netmitra/internal/observability"
	"github.com/netmitra/netmitra/internal/settings"
	"github.com/netmitra/netmitra/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SettingsHandler   *settings.Handler
	CatalogHandler    *catalog.Handler
	CustomerHandler   *customer.Handler
	BillingHandler    *billing.Handler
	CashflowHandler   *cashflow.Handler
	AttendanceHandler *attendance.Handler
	LeaveHandler      *leave.Handler
	EmployeesHandler  *employees.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with the API surface.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/settings", params.SettingsHandler.MountRoutes)
		r.Route("/packages", params.CatalogHandler.MountRoutes)
		r.Route("/customers", params.CustomerHandler.MountRoutes)
		r.Route("/invoices", params.BillingHandler.MountRoutes)
		r.Route("/cashflow", params.CashflowHandler.MountRoutes)
		r.Route("/attendance", params.AttendanceHandler.MountRoutes)
		r.Route("/leave-requests", params.LeaveHandler.MountRoutes)
		r.Route("/employees", params.EmployeesHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
