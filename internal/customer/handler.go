package customer

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/netmitra/netmitra/internal/platform/httpx"
	"github.com/netmitra/netmitra/internal/shared"
)

// Handler manages customer endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireAuth)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireAdmin)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Post("/{id}/status", h.changeStatus)
		r.Delete("/{id}", h.delete)
	})
}

type customerPayload struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Status    string `json:"status"`
	PackageID int64  `json:"package_id" validate:"required,gt=0"`
	JoinDate  string `json:"join_date" validate:"required"`
	BillDate  *int   `json:"bill_date"`
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (CustomerInput, bool) {
	var payload customerPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body", nil)
		return CustomerInput{}, false
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.RespondError(w, httpx.NewFieldErrors(err))
		return CustomerInput{}, false
	}
	joinDate, err := time.Parse("2006-01-02", payload.JoinDate)
	if err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "join_date must be YYYY-MM-DD", map[string]string{"join_date": "invalid date"})
		return CustomerInput{}, false
	}
	input := CustomerInput{
		Name:      payload.Name,
		Phone:     payload.Phone,
		Address:   payload.Address,
		PackageID: payload.PackageID,
		JoinDate:  joinDate,
		BillDate:  payload.BillDate,
	}
	if payload.Status != "" {
		status, err := ParseStatus(payload.Status)
		if err != nil {
			httpx.RespondError(w, err)
			return CustomerInput{}, false
		}
		input.Status = status
	}
	return input, true
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		filters.Status = status
	}
	filters.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filters.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	customers, page, err := h.service.ListCustomers(r.Context(), filters)
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"customers": customers, "pagination": page})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid customer id", nil)
		return
	}
	c, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	c, err := h.service.CreateCustomer(r.Context(), input)
	if err != nil {
		h.logger.Error("create customer", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid customer id", nil)
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	c, err := h.service.UpdateCustomer(r.Context(), id, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, c)
}

type statusPayload struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid customer id", nil)
		return
	}
	var payload statusPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	c, err := h.service.ChangeStatus(r.Context(), id, payload.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid customer id", nil)
		return
	}
	if err := h.service.DeleteCustomer(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}
