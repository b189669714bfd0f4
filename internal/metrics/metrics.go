package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationCommitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "penzion",
			Name:      "reservation_committed_total",
			Help:      "Count of committed reservations by date mode.",
		},
		[]string{"mode"},
	)

	reservationRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "penzion",
			Name:      "reservation_rejected_total",
			Help:      "Count of rejected booking attempts by reason.",
		},
		[]string{"reason"},
	)

	conflictsFound = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "penzion",
			Name:      "room_conflicts_found_total",
			Help:      "Count of room/date conflicts reported to callers.",
		},
	)

	requestCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "penzion",
			Name:      "request_created_total",
			Help:      "Count of submitted stay requests.",
		},
	)

	requestPromoted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "penzion",
			Name:      "request_promoted_total",
			Help:      "Count of request promotions by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "penzion",
			Name:      "http_requests_total",
			Help:      "Count of API requests by handler.",
		},
		[]string{"handler"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationCommitted, reservationRejected, conflictsFound,
			requestCreated, requestPromoted, httpRequests,
		)
	})
}

func IncReservationCommitted(mode string) {
	reservationCommitted.WithLabelValues(mode).Inc()
}

func IncReservationRejected(reason string) {
	reservationRejected.WithLabelValues(reason).Inc()
}

func AddConflictsFound(n int) {
	conflictsFound.Add(float64(n))
}

func IncRequestCreated() {
	requestCreated.Inc()
}

func IncRequestPromoted(outcome string) {
	requestPromoted.WithLabelValues(outcome).Inc()
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}
