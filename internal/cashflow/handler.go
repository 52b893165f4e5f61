package cashflow

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// Handler manages ledger endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers cashflow routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireAuth)
		r.Get("/categories", h.listCategories)
		r.Get("/entries", h.listEntries)
	})
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireAdmin)
		r.Post("/categories", h.createCategory)
		r.Put("/categories/{id}", h.updateCategory)
		r.Delete("/categories/{id}", h.deleteCategory)
		r.Post("/entries", h.createEntry)
		r.Delete("/entries/{id}", h.deleteEntry)
	})
}

// entryView adds the display amount the mobile app renders directly.
type entryView struct {
	Entry
	AmountDisplay string `json:"amount_display"`
}

func viewEntries(entries []Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView{Entry: e, AmountDisplay: shared.FormatRupiah(e.Amount)})
	}
	return out
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list cashflow categories", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.RespondError(w, httpx.NewFieldErrors(err))
		return
	}
	c, err := h.service.CreateCategory(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid category id", nil)
		return
	}
	var input CategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	c, err := h.service.UpdateCategory(r.Context(), id, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid category id", nil)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

type entryPayload struct {
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
	Amount     string `json:"amount" validate:"required"`
	Date       string `json:"date"`
	Note       string `json:"note"`
	CustomerID *int64 `json:"customer_id"`
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var payload entryPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.RespondError(w, httpx.NewFieldErrors(err))
		return
	}
	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "amount must be a decimal number", map[string]string{"amount": "invalid decimal"})
		return
	}
	var date time.Time
	if payload.Date != "" {
		date, err = time.Parse("2006-01-02", payload.Date)
		if err != nil {
			httpx.Fail(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD", map[string]string{"date": "invalid date"})
			return
		}
	}

	entry, err := h.service.CreateEntry(r.Context(), EntryInput{
		CategoryID: payload.CategoryID,
		Amount:     amount,
		Date:       date,
		Note:       payload.Note,
		CustomerID: payload.CustomerID,
	})
	if err != nil {
		h.logger.Error("create cashflow entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, entryView{Entry: *entry, AmountDisplay: shared.FormatRupiah(entry.Amount)})
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := EntryFilters{}
	filters.CategoryID, _ = strconv.ParseInt(q.Get("category_id"), 10, 64)
	if raw := q.Get("from"); raw != "" {
		filters.From, _ = time.Parse("2006-01-02", raw)
	}
	if raw := q.Get("to"); raw != "" {
		filters.To, _ = time.Parse("2006-01-02", raw)
	}
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))

	entries, page, err := h.service.ListEntries(r.Context(), filters)
	if err != nil {
		h.logger.Error("list cashflow entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"entries": viewEntries(entries), "pagination": page})
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid entry id", nil)
		return
	}
	if err := h.service.DeleteEntry(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}
