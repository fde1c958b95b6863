package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OptimizePasses counts optimization passes by organization
	OptimizePasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_optimize_passes_total", Help: "Optimization passes run."},
		[]string{"org"},
	)
	// OptimizeDuration tracks optimization pass latency in seconds
	OptimizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "dispatch_optimize_duration_seconds", Help: "Optimization pass duration in seconds.", Buckets: []float64{.005, .01, .05, .1, .5, 1, 5}},
	)
	// OptimizeEfficiency observes the efficiency score of each pass
	OptimizeEfficiency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "dispatch_optimize_efficiency", Help: "Efficiency score per pass (0-100).", Buckets: []float64{10, 25, 50, 75, 90, 100}},
	)
	// OptimizeWarnings counts emitted warnings by type and severity
	OptimizeWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_optimize_warnings_total", Help: "Optimization warnings by type and severity."},
		[]string{"type", "severity"},
	)
)

// RegisterDefault registers collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizePasses)
		Registry.MustRegister(OptimizeDuration)
		Registry.MustRegister(OptimizeEfficiency)
		Registry.MustRegister(OptimizeWarnings)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
