package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"careerlens/internal/infrastructure"
)

// OTelMiddleware traces requests through otelhttp and records the
// application's HTTP instruments labelled by chi route pattern.
type OTelMiddleware struct {
	providers *infrastructure.OTelProviders
	metrics   *infrastructure.BusinessMetrics
}

// NewOTelMiddleware creates a new OpenTelemetry middleware
func NewOTelMiddleware(providers *infrastructure.OTelProviders, metrics *infrastructure.BusinessMetrics) *OTelMiddleware {
	return &OTelMiddleware{providers: providers, metrics: metrics}
}

// Handler returns the middleware handler function
func (m *OTelMiddleware) Handler(next http.Handler) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		m.metrics.HTTPActiveRequests.Add(ctx, 1)
		defer m.metrics.HTTPActiveRequests.Add(ctx, -1)

		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		trace.SpanFromContext(ctx).SetName(fmt.Sprintf("%s %s", r.Method, route))

		attrs := metric.WithAttributes(
			attribute.String("method", r.Method),
			attribute.String("route", route),
			attribute.Int("status_code", status),
		)
		m.metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
		m.metrics.HTTPRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		if status >= http.StatusInternalServerError {
			m.metrics.SystemErrors.Add(ctx, 1, metric.WithAttributes(
				attribute.String("component", "http"),
				attribute.String("route", route),
			))
		}
	})

	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	}
	if m.providers.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(m.providers.TracerProvider))
	}
	if m.providers.MeterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(m.providers.MeterProvider))
	}
	return otelhttp.NewHandler(inner, "http.server", opts...)
}

// routePattern returns the matched chi pattern, or the raw path before routing.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
