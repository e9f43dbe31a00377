package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Bookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chairline_bookings_total",
			Help: "Booking attempts by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	Cancellations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chairline_cancellations_total",
			Help: "Cancellation attempts by outcome",
		},
		[]string{"outcome"},
	)

	WaitlistDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chairline_waitlist_depth",
			Help: "Entries currently waiting in the queue",
		},
	)

	StoreFaults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chairline_store_faults_total",
			Help: "Persistence faults by store and operation",
		},
		[]string{"store", "op"},
	)

	GRPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chairline_grpc_requests_total",
			Help: "gRPC requests by method and status code",
		},
		[]string{"method", "code"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chairline_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chairline_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

const (
	OutcomeBooked     = "booked"
	OutcomeNotFound   = "not_found"
	OutcomeConflict   = "conflict"
	OutcomeInvalid    = "invalid"
	OutcomeFailed     = "failed"
	OutcomeCancelled  = "cancelled"
	OutcomeForbidden  = "forbidden"
	OutcomeEmptyQueue = "empty_queue"
)

func RecordBooking(path, outcome string) {
	Bookings.WithLabelValues(path, outcome).Inc()
}

func RecordCancellation(outcome string) {
	Cancellations.WithLabelValues(outcome).Inc()
}

func SetWaitlistDepth(n int) {
	WaitlistDepth.Set(float64(n))
}

func RecordStoreFault(store, op string) {
	StoreFaults.WithLabelValues(store, op).Inc()
}

func RecordGRPCRequest(method, code string) {
	GRPCRequests.WithLabelValues(method, code).Inc()
}

func RecordHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
