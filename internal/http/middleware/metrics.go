package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/student-registration-api/internal/metrics"
)

// unmatched labels every request that did not resolve to a registered
// route, whatever its path or method.
const unmatched = "unmatched"

var routeMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Metrics records request count and latency per registered route. The
// path label is the route pattern the mux resolves for the lowercased
// path, so casing variants share one series; preflights, unknown paths
// and unknown methods all collapse into "unmatched".
func Metrics(mux *http.ServeMux) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path, method := routeLabels(mux, r)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			metrics.HTTPLatency.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
			metrics.HTTPRequests.WithLabelValues(path, method, strconv.Itoa(rec.status)).Inc()
		})
	}
}

// routeLabels returns the (path, method) label pair for r.
func routeLabels(mux *http.ServeMux, r *http.Request) (string, string) {
	if r.Method == http.MethodOptions {
		return unmatched, unmatched
	}

	_, pattern := mux.Handler(lowercasePath(r))
	if pattern == "" {
		return unmatched, unmatched
	}

	// Routes are registered as "METHOD /path". Anything else (a redirect
	// to a cleaned path, for one) is the client's path, not a route.
	method, path, ok := strings.Cut(pattern, " ")
	if !ok || !routeMethods[method] {
		return unmatched, unmatched
	}
	if method == http.MethodGet && r.Method == http.MethodHead {
		method = http.MethodHead
	}
	return path, method
}
