package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides HTTP-level observability shared by all modules.
type Metrics struct {
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// New registers and returns the shared HTTP metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eventhub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by method, route and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
		RequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "eventhub_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}),
	}
}
