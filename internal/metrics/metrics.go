// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meteo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meteo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Sensor source metrics
	SensorLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meteo_sensor_lookups_total",
			Help: "Sensor source lookups by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meteo_cache_lookups_total",
			Help: "Cache lookups by result",
		},
		[]string{"result"},
	)

	// Visibility metrics
	VisibilityRowsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meteo_visibility_rows_created_total",
			Help: "Visibility rows created by synchronization trigger",
		},
		[]string{"trigger"},
	)

	DiscoveryRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meteo_parameter_discovery_runs_total",
			Help: "Parameter discovery passes by result",
		},
		[]string{"result"},
	)
)

const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
