package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granaflow/backend/internal/categorize"
	"github.com/granaflow/backend/internal/config"
	"github.com/granaflow/backend/internal/service"
	"github.com/granaflow/backend/internal/store"
)

func newTestHandler(t *testing.T, cronSecret string) http.Handler {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := config.DefaultConfig()
	cfg.CronSecret = cronSecret

	categories := service.NewCategoryService(st)
	reconcile := service.NewReconcileService(st)
	srv := New(
		cfg,
		service.NewExpenseService(st),
		service.NewRecurringService(st),
		service.NewForecastService(st),
		service.NewForecastJobs(st),
		reconcile,
		service.NewImportService(st, categories, categorize.Disabled{}, reconcile),
		categories,
		service.NewSplitService(st),
	)
	return srv.Handler()
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateRecurringEndToEnd(t *testing.T) {
	h := newTestHandler(t, "")

	body := `{
		"description": "Rent",
		"amount": -1500,
		"frequency": "monthly",
		"dayOfMonth": 1,
		"startDate": "2025-03-10T00:00:00Z",
		"forecastMonths": 6
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/recurring-expenses/", strings.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"isActive":true`)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/recurring-expenses/", nil)
	req.Header.Set("X-User-ID", "user-1")
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rent")
}

func TestValidationErrorsMapTo400(t *testing.T) {
	h := newTestHandler(t, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/recurring-expenses/",
		strings.NewReader(`{"description":"x","amount":-10,"frequency":"monthly"}`))
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "dayOfMonth")
}

func TestNotFoundMapsTo404(t *testing.T) {
	h := newTestHandler(t, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recurring-expenses/nope/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenseEndpoints(t *testing.T) {
	h := newTestHandler(t, "")

	// Creating a monthly template populates expenses (as forecasts).
	body := `{
		"description": "Gym",
		"amount": -80,
		"frequency": "monthly",
		"dayOfMonth": 5,
		"startDate": "2025-03-10T00:00:00Z",
		"forecastMonths": 3
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/recurring-expenses/", strings.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/expenses/?limit=2", nil)
	req.Header.Set("X-User-ID", "user-1")
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gym")

	// Another user sees nothing and cannot fetch by id.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/expenses/does-not-exist", nil)
	req.Header.Set("X-User-ID", "user-2")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCronEndpointsRequireSecret(t *testing.T) {
	h := newTestHandler(t, "s3cret")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cron/mature-forecasts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cron/mature-forecasts", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/cron/mature-forecasts", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"matured":0`)
}

func TestCronExtendReportsCounts(t *testing.T) {
	h := newTestHandler(t, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cron/extend-forecasts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"templates":0`)
}
