package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"time"
)

// RequestLogger writes one structured access-log line per request
// (method, path, status, latency, client IP, request id).
func RequestLogger(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
				slog.String("ip", clientIP(r)),
				slog.String("request_id", RequestIDFrom(r.Context())),
			}
			if rec.status >= http.StatusInternalServerError {
				log.Warn("request completed with errors", attrs...)
				return
			}
			log.Info("request completed", attrs...)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
