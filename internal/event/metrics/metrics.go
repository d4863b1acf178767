package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the event module.
type Metrics struct {
	EventsCreated     prometheus.Counter
	EventsPublished   prometheus.Counter
	EventsCancelled   prometheus.Counter
	EventsCompleted   prometheus.Counter
	CapacityExhausted prometheus.Counter
}

// New creates a Metrics instance with all event module metrics registered.
func New() *Metrics {
	return &Metrics{
		EventsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_events_created_total",
			Help: "Total number of events created",
		}),
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_events_published_total",
			Help: "Total number of events published",
		}),
		EventsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_events_cancelled_total",
			Help: "Total number of events cancelled",
		}),
		EventsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_events_completed_total",
			Help: "Total number of events marked completed",
		}),
		CapacityExhausted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventhub_event_capacity_exhausted_total",
			Help: "Total number of slot reservations refused because the event was full",
		}),
	}
}

func (m *Metrics) IncrementCreated()           { m.EventsCreated.Inc() }
func (m *Metrics) IncrementPublished()         { m.EventsPublished.Inc() }
func (m *Metrics) IncrementCancelled()         { m.EventsCancelled.Inc() }
func (m *Metrics) IncrementCompleted()         { m.EventsCompleted.Inc() }
func (m *Metrics) IncrementCapacityExhausted() { m.CapacityExhausted.Inc() }
