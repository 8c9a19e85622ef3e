package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/blace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthOK(_ context.Context) error { return nil }

func healthErr(msg string) func(context.Context) error {
	return func(_ context.Context) error { return errors.New(msg) }
}

func TestHandleStartup(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/startup", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, &mockAppService{},
		withHealthChecks(HealthCheck{Name: "storage", Check: healthOK}),
	)

	err := srv.handleStartup(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","live_games":0}`, rec.Body.String())
}

func TestHandleStartup_StorageDown(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/startup", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, &mockAppService{},
		withHealthChecks(HealthCheck{Name: "storage", Check: healthErr("connection refused")}),
	)

	err := srv.handleStartup(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), `"failed_check":"storage"`)
}

func TestHandleLiveness(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, &mockAppService{},
		withHealthChecks(HealthCheck{Name: "storage", Check: healthErr("down")}),
	)
	err := srv.handleLiveness(c)

	// liveness ignores dependencies
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"status":"ok"`)
	assert.Contains(t, body, `"uptime"`)
}

func TestHandleReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     []HealthCheck
		wantStatus int
		wantFailed string
	}{
		{
			name:       "no checks",
			wantStatus: http.StatusOK,
		},
		{
			name:       "storage healthy",
			checks:     []HealthCheck{{Name: "storage", Check: healthOK}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "storage down",
			checks:     []HealthCheck{{Name: "storage", Check: healthErr("pebble: database closed")}},
			wantStatus: http.StatusServiceUnavailable,
			wantFailed: "storage",
		},
		{
			name: "first failing check is reported",
			checks: []HealthCheck{
				{Name: "storage", Check: healthOK},
				{Name: "hub", Check: healthErr("stopped")},
				{Name: "other", Check: healthErr("also down")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantFailed: "hub",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			srv := newTestServer(t, &mockAppService{}, withHealthChecks(tt.checks...))
			err := srv.handleReadiness(c)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantFailed != "" {
				assert.Contains(t, rec.Body.String(), `"failed_check":"`+tt.wantFailed+`"`)
			}
		})
	}
}

func TestHandleReadiness_ReportsLiveGames(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, &mockAppService{})
	srv.registry.Subscribe(uuid.New(), uuid.New(), make(chan domain.PixelUpdate, 1))

	require.NoError(t, srv.handleReadiness(c))
	assert.JSONEq(t, `{"status":"ready","live_games":1}`, rec.Body.String())
}

func TestHandleVersion(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, &mockAppService{})
	err := srv.handleVersion(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"version"`)
	assert.Contains(t, body, `"commit"`)
	assert.Contains(t, body, `"build_time"`)
	assert.Contains(t, body, `"go_version"`)
}
