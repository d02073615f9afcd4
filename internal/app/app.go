package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"

	"careerlens/internal/config"
	apierrors "careerlens/internal/errors"
	"careerlens/internal/infrastructure"
	customMiddleware "careerlens/internal/middleware"
	"careerlens/internal/services"
	handlers "careerlens/internal/transport/http"
	"careerlens/internal/validation"
	ws "careerlens/internal/websocket"
	"careerlens/pkg/contracts"
)

// maxWorkspaceLength bounds the ?workspace= value of websocket subscribers.
const maxWorkspaceLength = 64

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	Metrics         *infrastructure.BusinessMetrics
	ErrorHandler    *apierrors.ErrorHandler
	WebSocketHub    *ws.Hub
	AnalysisService *services.AnalysisService
	HealthService   *services.HealthService

	cors      customMiddleware.CORSConfig
	upgrader  websocket.Upgrader
	startTime time.Time
}

// NewApplication loads configuration, sets up logging and telemetry and
// wires the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()))

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	return New(cfg, logger, providers)
}

// New wires an application from already initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
		startTime:     time.Now(),
	}

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}
	a.Metrics = metrics
	if err := infrastructure.RegisterRuntimeMetrics(providers.Meter, a.startTime); err != nil {
		return nil, fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	a.initializeServices()
	a.setupRouter()
	a.createServer()
	return a, nil
}

func (a *Application) initializeServices() {
	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)

	a.AnalysisService = services.NewAnalysisService(
		services.AnalysisOptionsFrom(a.Config),
		a.Logger,
		services.WithPublisher(a.WebSocketHub),
		services.WithTelemetry(a.OTelProviders.Tracer, a.Metrics),
	)

	a.HealthService = services.NewHealthService(
		contracts.Version,
		contracts.BuildTime,
		contracts.GitCommit,
		a.WebSocketHub,
		a.AnalysisService,
		a.Logger,
	)

	a.cors = a.getCORSConfig()
	a.upgrader = websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || a.cors.OriginAllowed(origin)
		},
	}
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Middleware that does not wrap the ResponseWriter, safe for upgrades.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Get(config.WebSocketEndpoint, a.handleWebSocket)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)
		r.Use(customMiddleware.CORS(a.cors))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.ErrorHandler,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.AuditLog(a.Logger))

		a.setupAPIRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	files := validation.NewFileValidator(a.Logger, a.Config.Upload.MaxBytes, a.Config.Upload.Extensions)
	requests := validation.NewRequestValidator()

	analysisHandler := handlers.NewAnalysisHandler(a.AnalysisService, files, requests, a.ErrorHandler, a.Config.Upload.MaxBytes, a.Logger)
	viewsHandler := handlers.NewViewsHandler(a.AnalysisService, requests, a.ErrorHandler, a.Logger)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(customMiddleware.Compress(5, "application/json", "text/csv"))

		r.Mount("/analysis", analysisHandler.Routes())
		r.Mount("/views", viewsHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cors := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
	if a.Config.Security.EnableCORS {
		cors.AllowedOrigins = a.Config.Security.AllowedOrigins
	} else {
		cors.AllowedOrigins = []string{
			fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
			fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
		}
	}
	a.Logger.Info("CORS configured", slog.Any("allowed_origins", cors.AllowedOrigins))
	return cors
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start runs the websocket hub and the HTTP server in the background.
// cancel is called if the server fails.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go a.WebSocketHub.Run()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Duration("uptime", time.Since(a.startTime)))
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}
	return a.Stop(ctx)
}

// handleWebSocket upgrades GET /ws?workspace=... and subscribes the
// connection to that workspace's events.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workspace := r.URL.Query().Get("workspace")
	if workspace == "" || len(workspace) > maxWorkspaceLength {
		a.ErrorHandler.HandleError(w, r, apierrors.ErrValidation("workspace",
			fmt.Sprintf("workspace query parameter is required and at most %d characters", maxWorkspaceLength)))
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		a.Logger.WarnContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	client := ws.NewClient(a.WebSocketHub, ws.WrapConn(conn), workspace, a.Config.WebSocket, a.Logger)
	a.Logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("workspace", workspace))
	go client.Serve()
}
