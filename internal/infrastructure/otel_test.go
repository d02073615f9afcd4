package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"careerlens/internal/shared/testutil"
)

func TestInitializeOTelMetrics(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "careerlens-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		EnableMetrics:  true,
		SampleRatio:    1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { providers.Shutdown(context.Background()) })

	require.NotNil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.Tracer)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.UploadsTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("view", "student"), attribute.String("outcome", "accepted")))
	require.NoError(t, RegisterRuntimeMetrics(providers.Meter, time.Now()))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "uploads_total")
	assert.Contains(t, rec.Body.String(), "system_goroutines")
}

func TestInitializeOTelRejectsUnknownExporter(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	_, err := InitializeOTel(&OTelConfig{TraceExporter: "zipkin"}, logger)
	assert.Error(t, err)
}

func TestNoopProviders(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers := NoopProviders(logger)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.ExportsTotal.Add(context.Background(), 1)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	span.End()
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestReadRuntimeStats(t *testing.T) {
	stats := ReadRuntimeStats(time.Now().Add(-time.Second))
	assert.Positive(t, stats.Goroutines)
	assert.GreaterOrEqual(t, stats.UptimeSeconds, 1.0)
	assert.NotEmpty(t, stats.GoVersion)
}
