// Package metrics defines the Prometheus collectors exported on /metrics.
//
//   - http_requests_total: requests by route, method and status
//   - http_request_duration_seconds: latency distribution by route and method
//   - students_created_total / students_deleted_total: successful procedure calls
//   - database_errors_total: failed storage calls by operation and kind
//     (kind is "business" for database-signaled errors, "system" otherwise)
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Error kinds for DatabaseErrors.
const (
	KindBusiness = "business"
	KindSystem   = "system"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests by route, method and status."},
		[]string{"path", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"path", "method"},
	)
	StudentsCreated = prometheus.NewCounter(prometheus.CounterOpts{Name: "students_created_total", Help: "Students inserted through INSERT_STUDENT."})
	StudentsDeleted = prometheus.NewCounter(prometheus.CounterOpts{Name: "students_deleted_total", Help: "Successful DELETE_STUDENT calls."})
	DatabaseErrors  = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "database_errors_total", Help: "Failed storage calls by operation and error kind."},
		[]string{"operation", "kind"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency, StudentsCreated, StudentsDeleted, DatabaseErrors)
}

// Exposer returns the standard Prometheus exposition handler.
func Exposer() http.Handler { return promhttp.Handler() }
