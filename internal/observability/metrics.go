package observability

import (
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolshed_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "toolshed_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ToolRequestsCreated counts successfully created tool requests.
	ToolRequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "toolshed_tool_requests_created_total",
		Help: "Total number of tool requests created",
	})

	// ToolRequestConflicts counts create attempts rejected by the active-code unique index.
	ToolRequestConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "toolshed_tool_request_conflicts_total",
		Help: "Total number of tool request creations rejected as duplicates",
	})

	// ToolRequestStatusChanges counts status writes by resulting status.
	ToolRequestStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolshed_tool_request_status_changes_total",
		Help: "Total number of tool request status changes by new status",
	}, []string{"status"})

	// ActiveWebSockets tracks currently connected websocket clients.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "toolshed_websocket_connections",
		Help: "Number of active websocket connections",
	})

	// WebSocketDrops counts messages dropped due to backpressure.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolshed_websocket_drops_total",
		Help: "Total number of websocket messages dropped",
	}, []string{"reason"})
)

var (
	httpMetrics     *fiberprometheus.FiberPrometheus
	httpMetricsOnce sync.Once
)

// InitMetrics returns the process-wide HTTP metrics middleware. It registers in
// the default registry next to the domain collectors, so /metrics serves both.
// Registration happens once per process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.NewWithDefaultRegistry(serviceName)
	})
	return httpMetrics
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
