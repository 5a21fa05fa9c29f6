// Package health serves the liveness/readiness probe.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/student-registration-api/internal/utils/response"
)

// pingTimeout bounds the probe so a hung database cannot hang the checker.
const pingTimeout = 2 * time.Second

// Pinger is the one storage method the probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check handles GET /healthz: 200 {"status":"ok"} when the database
// answers a ping, 503 with the error otherwise.
func Check(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			if errors.Is(err, context.DeadlineExceeded) {
				err = errors.New("database ping timed out")
			}
			response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Response{Status: response.StatusOK})
	}
}
