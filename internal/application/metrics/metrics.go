package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the application module.
type Metrics struct {
	ApplicationsSubmitted prometheus.Counter
	ApplicationsApproved  prometheus.Counter
	ApplicationsRejected  prometheus.Counter
	ApplicationsCancelled prometheus.Counter
	ApproveDuration       prometheus.Histogram
}

// New creates a Metrics instance with all application module metrics registered.
func New() *Metrics {
	return &Metrics{
		ApplicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_applications_submitted_total",
			Help: "Total number of registration applications submitted",
		}),
		ApplicationsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_applications_approved_total",
			Help: "Total number of applications approved",
		}),
		ApplicationsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_applications_rejected_total",
			Help: "Total number of applications rejected",
		}),
		ApplicationsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_applications_cancelled_total",
			Help: "Total number of applications cancelled",
		}),
		ApproveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventhub_application_approve_duration_seconds",
			Help:    "Duration of Approve operations (slot reservation critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementSubmitted() { m.ApplicationsSubmitted.Inc() }
func (m *Metrics) IncrementApproved()  { m.ApplicationsApproved.Inc() }
func (m *Metrics) IncrementRejected()  { m.ApplicationsRejected.Inc() }
func (m *Metrics) IncrementCancelled() { m.ApplicationsCancelled.Inc() }

// ObserveApprove records the duration of an Approve operation. Call with
// time.Now() at the start of the operation.
func (m *Metrics) ObserveApprove(start time.Time) {
	m.ApproveDuration.Observe(time.Since(start).Seconds())
}
