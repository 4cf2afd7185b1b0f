package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Total number of bookings successfully created",
	})

	BookingsConflict = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_conflict_total",
		Help: "Total number of booking attempts rejected as duplicates",
	})

	BookingsCanceled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_canceled_total",
		Help: "Total number of bookings canceled by their owner",
	})

	EventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "events_created_total",
		Help: "Total number of events created",
	})
)

// Handler exposes the default registry at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
