package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a point-in-time snapshot of the Go runtime.
type RuntimeStats struct {
	Goroutines     int     `json:"goroutines"`
	HeapAllocBytes uint64  `json:"heap_alloc_bytes"`
	SysBytes       uint64  `json:"sys_bytes"`
	NumGC          uint32  `json:"num_gc"`
	CPUCount       int     `json:"cpu_count"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	GoVersion      string  `json:"go_version"`
	OS             string  `json:"os"`
	Arch           string  `json:"arch"`
}

// ReadRuntimeStats collects a snapshot; uptime is measured from start.
func ReadRuntimeStats(start time.Time) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return RuntimeStats{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		SysBytes:       mem.Sys,
		NumGC:          mem.NumGC,
		CPUCount:       runtime.NumCPU(),
		UptimeSeconds:  time.Since(start).Seconds(),
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
	}
}

// RegisterRuntimeMetrics exposes goroutine, heap and uptime gauges that are
// sampled on each collection.
func RegisterRuntimeMetrics(meter metric.Meter, start time.Time) error {
	goroutines, err := meter.Int64ObservableGauge("system_goroutines",
		metric.WithDescription("Number of active goroutines"))
	if err != nil {
		return err
	}
	heap, err := meter.Int64ObservableGauge("system_memory_heap_bytes",
		metric.WithDescription("Heap bytes allocated and in use"),
		metric.WithUnit("By"))
	if err != nil {
		return err
	}
	uptime, err := meter.Float64ObservableGauge("system_uptime_seconds",
		metric.WithDescription("Seconds since the process started"),
		metric.WithUnit("s"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := ReadRuntimeStats(start)
		o.ObserveInt64(goroutines, int64(stats.Goroutines))
		o.ObserveInt64(heap, int64(stats.HeapAllocBytes))
		o.ObserveFloat64(uptime, stats.UptimeSeconds)
		return nil
	}, goroutines, heap, uptime)
	return err
}
