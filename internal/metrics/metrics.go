package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "payment_reconciliations_total",
			Help:      "Payment reconciliation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "availability_conflicts_total",
			Help:      "Booking attempts rejected for date-range overlap.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, reconciliations, bookingConflicts)
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int, latency time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(latency.Seconds())
}

// IncReconciliation records a reconciliation attempt outcome
// (applied, duplicate, error).
func IncReconciliation(outcome string) {
	reconciliations.WithLabelValues(outcome).Inc()
}

// IncBookingConflict records a rejected double-booking attempt.
func IncBookingConflict() {
	bookingConflicts.Inc()
}
