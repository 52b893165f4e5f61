package billing

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/netmitra/netmitra/internal/shared"
)

func adminRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(shared.ContextWithIdentity(req.Context(),
		&shared.Identity{UserID: 1, Name: "Admin", IsAdmin: true}))
}

func TestGenerateAsyncQueuesBatch(t *testing.T) {
	var gotMonth, gotYear int
	enqueue := func(_ context.Context, month, year int) (string, error) {
		gotMonth, gotYear = month, year
		return "task-42", nil
	}
	h := NewHandler(slog.Default(), newBillingService(newMemoryBillingRepo(), "11"), enqueue)
	r := chi.NewRouter()
	h.MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, adminRequest(http.MethodPost, "/generate/async", `{"period_month":6,"period_year":2025}`))

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, 6, gotMonth)
	require.Equal(t, 2025, gotYear)
	require.Contains(t, rr.Body.String(), "task-42")
}

func TestGenerateAsyncValidatesPayload(t *testing.T) {
	called := false
	enqueue := func(_ context.Context, _, _ int) (string, error) {
		called = true
		return "", nil
	}
	h := NewHandler(slog.Default(), newBillingService(newMemoryBillingRepo(), "11"), enqueue)
	r := chi.NewRouter()
	h.MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, adminRequest(http.MethodPost, "/generate/async", `{"period_month":13,"period_year":2025}`))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.False(t, called)
}

func TestGenerateAsyncWithoutQueueBackend(t *testing.T) {
	h := NewHandler(slog.Default(), newBillingService(newMemoryBillingRepo(), "11"), nil)
	r := chi.NewRouter()
	h.MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, adminRequest(http.MethodPost, "/generate/async", `{"period_month":6,"period_year":2025}`))

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
