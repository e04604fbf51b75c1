package infrastructure

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics records Go runtime figures once per pipeline run
type RuntimeMetrics struct {
	goroutines metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
	totalAlloc metric.Int64Gauge
	gcCount    metric.Int64Gauge
	gcPause    metric.Float64Histogram
}

// RuntimeStats is a snapshot of the Go runtime
type RuntimeStats struct {
	Goroutines  int64
	HeapAlloc   int64
	TotalAlloc  int64
	GCCount     uint32
	LastGCPause time.Duration
	Timestamp   time.Time
}

// NewRuntimeMetrics creates the runtime instruments on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goroutines, err := meter.Int64Gauge(
		"fxcpi_runtime_goroutines",
		metric.WithDescription("Number of goroutines at the end of the run"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"fxcpi_runtime_heap_alloc_bytes",
		metric.WithDescription("Heap bytes in use at the end of the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	totalAlloc, err := meter.Int64Gauge(
		"fxcpi_runtime_total_alloc_bytes",
		metric.WithDescription("Cumulative heap bytes allocated"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"fxcpi_runtime_gc_cycles",
		metric.WithDescription("Completed GC cycles"),
	)
	if err != nil {
		return nil, err
	}

	gcPause, err := meter.Float64Histogram(
		"fxcpi_runtime_gc_pause_seconds",
		metric.WithDescription("Duration of the most recent GC pause"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goroutines: goroutines,
		heapAlloc:  heapAlloc,
		totalAlloc: totalAlloc,
		gcCount:    gcCount,
		gcPause:    gcPause,
	}, nil
}

// ReadRuntimeStats takes a snapshot of the runtime
func ReadRuntimeStats() *RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return &RuntimeStats{
		Goroutines:  int64(runtime.NumGoroutine()),
		HeapAlloc:   int64(mem.HeapAlloc),
		TotalAlloc:  int64(mem.TotalAlloc),
		GCCount:     mem.NumGC,
		LastGCPause: time.Duration(mem.PauseNs[(mem.NumGC+255)%256]),
		Timestamp:   time.Now(),
	}
}

// Collect takes a snapshot and records it. A nil receiver only reads the stats.
func (rm *RuntimeMetrics) Collect(ctx context.Context) *RuntimeStats {
	stats := ReadRuntimeStats()
	if rm == nil {
		return stats
	}

	rm.goroutines.Record(ctx, stats.Goroutines)
	rm.heapAlloc.Record(ctx, stats.HeapAlloc)
	rm.totalAlloc.Record(ctx, stats.TotalAlloc)
	rm.gcCount.Record(ctx, int64(stats.GCCount))
	if stats.GCCount > 0 {
		rm.gcPause.Record(ctx, stats.LastGCPause.Seconds())
	}

	return stats
}

// LogAttrs renders the snapshot as log attributes
func (s *RuntimeStats) LogAttrs() []any {
	return []any{
		slog.Int64("goroutines", s.Goroutines),
		slog.Int64("heap_alloc_bytes", s.HeapAlloc),
		slog.Int64("total_alloc_bytes", s.TotalAlloc),
		slog.Int("gc_cycles", int(s.GCCount)),
	}
}
