package attendance

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// Handler manages attendance endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers attendance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireAuth)
		r.Post("/check-in", h.checkIn)
		r.Post("/check-out", h.checkOut)
		r.Get("/today", h.today)
		r.Get("/history", h.history)
	})
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireAdmin)
		r.Put("/{id}/status", h.overrideStatus)
	})
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	caller := shared.IdentityFromContext(r.Context())
	var input CheckInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	att, err := h.service.CheckIn(r.Context(), caller.UserID, input)
	if err != nil {
		h.logger.Warn("check-in", slog.Any("error", err), slog.Int64("user", caller.UserID))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, att)
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	caller := shared.IdentityFromContext(r.Context())
	var input CheckInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	att, err := h.service.CheckOut(r.Context(), caller.UserID, input)
	if err != nil {
		h.logger.Warn("check-out", slog.Any("error", err), slog.Int64("user", caller.UserID))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, att)
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	caller := shared.IdentityFromContext(r.Context())
	att, err := h.service.Today(r.Context(), caller.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, att)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	caller := shared.IdentityFromContext(r.Context())
	q := r.URL.Query()

	to := time.Now()
	from := to.AddDate(0, -1, 0)
	if raw := q.Get("from"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			from = parsed
		}
	}
	if raw := q.Get("to"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			to = parsed
		}
	}

	items, err := h.service.History(r.Context(), caller.UserID, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, items)
}

type statusPayload struct {
	Status Status `json:"status"`
}

func (h *Handler) overrideStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid attendance id", nil)
		return
	}
	var payload statusPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	att, err := h.service.OverrideStatus(r.Context(), id, payload.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, att)
}
