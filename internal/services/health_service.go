package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"careerlens/internal/infrastructure"
)

// ClientCounter reports connected websocket clients.
type ClientCounter interface {
	ClientCount() int
}

// DatasetCounter reports datasets held in memory.
type DatasetCounter interface {
	DatasetCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	gitCommit string
	clients   ClientCounter
	datasets  DatasetCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth     `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count"`
}

// VersionInfo is returned by the version endpoint.
type VersionInfo struct {
	Version     string    `json:"version"`
	BuildTime   string    `json:"build_time,omitempty"`
	GitCommit   string    `json:"git_commit,omitempty"`
	GoVersion   string    `json:"go_version"`
	OS          string    `json:"os"`
	Arch        string    `json:"arch"`
	Uptime      float64   `json:"uptime_seconds"`
	StartTime   time.Time `json:"start_time"`
	CurrentTime time.Time `json:"current_time"`
}

// NewHealthService creates a health service. clients and datasets may be
// nil, in which case their readiness entries are omitted.
func NewHealthService(version, buildTime, gitCommit string, clients ClientCounter, datasets DatasetCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("git_commit", gitCommit))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		clients:   clients,
		datasets:  datasets,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.Duration("uptime", time.Since(hs.startTime)))
	return status
}

// ReadinessCheck reports each dependency. The service is ready as soon
// as it is constructed; the entries are informational.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth),
	}
	if hs.clients != nil {
		status.Services["websocket"] = ServiceHealth{Status: "ready", Count: hs.clients.ClientCount()}
	}
	if hs.datasets != nil {
		status.Services["analysis"] = ServiceHealth{Status: "ready", Count: hs.datasets.DatasetCount()}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	stats := infrastructure.ReadRuntimeStats(hs.startTime)
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   &stats,
	}
}

// Version returns version information
func (hs *HealthService) Version() VersionInfo {
	now := time.Now()
	return VersionInfo{
		Version:     hs.version,
		BuildTime:   hs.buildTime,
		GitCommit:   hs.gitCommit,
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		Uptime:      now.Sub(hs.startTime).Seconds(),
		StartTime:   hs.startTime,
		CurrentTime: now,
	}
}
