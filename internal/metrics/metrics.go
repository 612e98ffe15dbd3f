// Package metrics holds the Prometheus collectors of the service.  They are
// registered on the default registry and exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by method, route template and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema",
			Name:      "http_requests_total",
			Help:      "The total number of handled HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cinema",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of handled HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// BookingsCreated counts committed bookings.
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cinema",
		Name:      "bookings_created_total",
		Help:      "The total number of bookings created",
	})

	// SeatConflicts counts bookings rejected because a seat was already taken.
	SeatConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cinema",
		Name:      "seat_conflicts_total",
		Help:      "The total number of booking writes rejected for taken seats",
	})

	// BuddyUpserts counts buddy profile writes; result is created, updated or conflict.
	BuddyUpserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema",
			Name:      "buddy_upserts_total",
			Help:      "The total number of movie-buddy profile upserts",
		},
		[]string{"result"},
	)

	// EventsPublished counts outbound events per channel (amqp, realtime).
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema",
			Name:      "events_published_total",
			Help:      "The total number of published events",
		},
		[]string{"channel", "result"},
	)
)
