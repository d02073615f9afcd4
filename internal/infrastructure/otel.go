package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"careerlens/internal/config"
)

// InstrumentationName names the tracer and meter.
const InstrumentationName = "careerlens"

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout" or "none"
	EnableMetrics  bool
	SampleRatio    float64
}

// OTelConfigFrom maps the telemetry section of the application config.
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: config.AppVersion,
		Environment:    cfg.Environment,
		TraceExporter:  cfg.TraceExporter,
		EnableMetrics:  cfg.MetricsEnabled,
		SampleRatio:    cfg.SampleRatio,
	}
}

// OTelProviders holds the OpenTelemetry providers. Tracer and Meter are
// always usable; they are no-ops when the matching signal is disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel initializes tracing and metrics and installs them globally.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	ctx := context.Background()

	logger.InfoContext(ctx, "initializing opentelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", instanceID()),
	)

	providers := &OTelProviders{
		Tracer: otel.Tracer(InstrumentationName),
		Meter:  noop.NewMeterProvider().Meter(InstrumentationName),
		Logger: logger,
	}

	if err := initializeTracing(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if cfg.EnableMetrics {
		if err := initializeMetrics(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	switch cfg.TraceExporter {
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		exporter = exp
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)
	return nil
}

func initializeMetrics(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	providers.PrometheusHTTP = promhttp.Handler()
	otel.SetMeterProvider(mp)
	return nil
}

// Shutdown flushes and stops whichever providers were started.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	p.Logger.InfoContext(ctx, "opentelemetry shutdown complete")
	return nil
}

// NoopProviders returns providers that record nothing, for tests and the CLI.
func NoopProviders(logger *slog.Logger) *OTelProviders {
	return &OTelProviders{
		Tracer: otel.Tracer(InstrumentationName),
		Meter:  noop.NewMeterProvider().Meter(InstrumentationName),
		Logger: logger,
	}
}

func instanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// BusinessMetrics holds the application's instruments.
type BusinessMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	UploadsTotal      metric.Int64Counter
	UploadRows        metric.Int64Histogram
	DecodeDuration    metric.Float64Histogram
	ActiveDatasets    metric.Int64UpDownCounter
	FilterChanges     metric.Int64Counter
	MetricEvaluations metric.Int64Counter
	MetricDuration    metric.Float64Histogram
	ExportsTotal      metric.Int64Counter

	WebSocketClients  metric.Int64UpDownCounter
	WebSocketMessages metric.Int64Counter

	SystemErrors metric.Int64Counter
}

// CreateBusinessMetrics registers every instrument on meter.
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m    BusinessMetrics
		errs []error
	)
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	updown := func(name, desc string) metric.Int64UpDownCounter {
		c, err := meter.Int64UpDownCounter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		errs = append(errs, err)
		return h
	}

	m.HTTPRequestsTotal = counter("http_requests_total", "Total number of HTTP requests")
	m.HTTPRequestDuration = seconds("http_request_duration_seconds", "HTTP request duration")
	m.HTTPActiveRequests = updown("http_active_requests", "Number of in-flight HTTP requests")

	m.UploadsTotal = counter("uploads_total", "Uploads by view and outcome")
	rows, err := meter.Int64Histogram("upload_rows", metric.WithDescription("Rows per accepted upload"))
	errs = append(errs, err)
	m.UploadRows = rows
	m.DecodeDuration = seconds("upload_decode_duration_seconds", "Time spent decoding and validating an upload")
	m.ActiveDatasets = updown("active_datasets", "Datasets currently held in memory")
	m.FilterChanges = counter("filter_changes_total", "Filter state changes by view")
	m.MetricEvaluations = counter("metric_evaluations_total", "Metric evaluations by view and metric")
	m.MetricDuration = seconds("metric_evaluation_duration_seconds", "Time to evaluate a metric request")
	m.ExportsTotal = counter("exports_total", "Exports by view and format")

	m.WebSocketClients = updown("websocket_clients", "Connected websocket clients")
	m.WebSocketMessages = counter("websocket_messages_total", "Websocket events broadcast")

	m.SystemErrors = counter("system_errors_total", "Server errors by component")

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return &m, nil
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
