package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerlens/internal/services"
	"careerlens/internal/shared/testutil"
)

func TestHealthHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewHealthHandler(services.NewHealthService("v1.0.0-test", "", "", nil, nil, logger), logger)

	r := chi.NewRouter()
	r.Mount("/api/health", handler.Routes())
	r.Get("/api/version", handler.Version)

	tests := []struct {
		name          string
		endpoint      string
		checkResponse func(t *testing.T, body map[string]any)
	}{
		{
			name:     "health check endpoint",
			endpoint: "/api/health",
			checkResponse: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "ok", body["status"])
				assert.Contains(t, body, "timestamp")
				assert.Equal(t, "v1.0.0-test", body["version"])
			},
		},
		{
			name:     "readiness check endpoint",
			endpoint: "/api/health/ready",
			checkResponse: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "ready", body["status"])
			},
		},
		{
			name:     "liveness check endpoint",
			endpoint: "/api/health/live",
			checkResponse: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "alive", body["status"])
				assert.Contains(t, body, "runtime")
			},
		},
		{
			name:     "version endpoint",
			endpoint: "/api/version",
			checkResponse: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "v1.0.0-test", body["version"])
				assert.Contains(t, body, "go_version")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.endpoint, nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			tt.checkResponse(t, body)
		})
	}
}
