package billing

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// GenerateEnqueuer submits an invoice batch to the background queue and
// returns the queued task id.
type GenerateEnqueuer func(ctx context.Context, month, year int) (string, error)

// Handler manages invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueue  GenerateEnqueuer
	validate *validator.Validate
}

// NewHandler builds a Handler instance. enqueue may be nil when no queue
// backend is wired; the async endpoint then reports unavailability.
func NewHandler(logger *slog.Logger, service *Service, enqueue GenerateEnqueuer) *Handler {
	return &Handler{logger: logger, service: service, enqueue: enqueue, validate: validator.New()}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireAuth)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireAdmin)
		r.Post("/generate", h.generate)
		r.Post("/generate/async", h.generateAsync)
		r.Post("/{id}/pay", h.pay)
		r.Post("/{id}/unpay", h.unpay)
		r.Post("/{id}/cancel", h.cancel)
		r.Delete("/{id}", h.delete)
	})
}

type generatePayload struct {
	PeriodMonth int `json:"period_month" validate:"required,min=1,max=12"`
	PeriodYear  int `json:"period_year" validate:"required,min=2000"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var payload generatePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.RespondError(w, httpx.NewFieldErrors(err))
		return
	}

	result, err := h.service.Generate(r.Context(), payload.PeriodMonth, payload.PeriodYear)
	if err != nil {
		h.logger.Error("generate invoices", slog.Any("error", err),
			slog.Int("month", payload.PeriodMonth), slog.Int("year", payload.PeriodYear))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("invoice generation finished",
		slog.Int("month", payload.PeriodMonth), slog.Int("year", payload.PeriodYear),
		slog.Int("created", result.Created), slog.Int("skipped_with_error", len(result.Errors)))
	httpx.OK(w, result)
}

// generateAsync queues the batch instead of running it in-request. Large
// periods go through here so the HTTP timeout never truncates a run.
func (h *Handler) generateAsync(w http.ResponseWriter, r *http.Request) {
	var payload generatePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.RespondError(w, httpx.NewFieldErrors(err))
		return
	}
	if h.enqueue == nil {
		httpx.Fail(w, http.StatusServiceUnavailable, "background queue is not available", nil)
		return
	}

	taskID, err := h.enqueue(r.Context(), payload.PeriodMonth, payload.PeriodYear)
	if err != nil {
		h.logger.Error("enqueue invoice generation", slog.Any("error", err),
			slog.Int("month", payload.PeriodMonth), slog.Int("year", payload.PeriodYear))
		httpx.Fail(w, http.StatusServiceUnavailable, "failed to queue invoice generation", nil)
		return
	}
	httpx.JSON(w, http.StatusAccepted, httpx.Envelope{Success: true, Data: map[string]any{
		"task_id":      taskID,
		"period_month": payload.PeriodMonth,
		"period_year":  payload.PeriodYear,
	}})
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{Status: InvoiceStatus(q.Get("status"))}
	filters.CustomerID, _ = strconv.ParseInt(q.Get("customer_id"), 10, 64)
	filters.PeriodMonth, _ = strconv.Atoi(q.Get("period_month"))
	filters.PeriodYear, _ = strconv.Atoi(q.Get("period_year"))
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))

	invoices, page, err := h.service.ListInvoices(r.Context(), filters)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"invoices": invoices, "pagination": page})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid invoice id", nil)
		return
	}
	inv, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, inv)
}

type payPayload struct {
	PaidAt string `json:"paid_at"`
	Note   string `json:"note"`
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid invoice id", nil)
		return
	}
	var payload payPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	var paidAt time.Time
	if payload.PaidAt != "" {
		paidAt, err = time.Parse(time.RFC3339, payload.PaidAt)
		if err != nil {
			httpx.Fail(w, http.StatusUnprocessableEntity, "paid_at must be RFC3339", map[string]string{"paid_at": "invalid timestamp"})
			return
		}
	}

	inv, err := h.service.MarkPaid(r.Context(), id, paidAt, payload.Note)
	if err != nil {
		h.logger.Warn("mark invoice paid", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, inv)
}

func (h *Handler) unpay(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid invoice id", nil)
		return
	}
	inv, err := h.service.MarkUnpaid(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, inv)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid invoice id", nil)
		return
	}
	inv, err := h.service.MarkCancelled(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, inv)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid invoice id", nil)
		return
	}
	if err := h.service.DeleteInvoice(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}
