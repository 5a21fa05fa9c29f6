package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-registration-api/internal/utils/response"
)

// Recover turns a handler panic into a 500 JSON error instead of a
// dropped connection.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
					slog.String("request_id", RequestIDFrom(r.Context())))
				response.WriteJSON(w, http.StatusInternalServerError,
					response.GeneralError(errors.New("internal server error")))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
