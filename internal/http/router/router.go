// Package router wires handlers and middleware into one http.Handler.
//
// Route table (paths are matched case-insensitively):
//
//	GET    /api/student/GetGenders         → reference list
//	GET    /api/student/GetQualifications  → reference list
//	GET    /api/student/GetModes           → reference list
//	GET    /api/student/GetAllStudents     → joined student listing
//	POST   /api/student/addstudent         → INSERT_STUDENT
//	DELETE /api/student/deletestudent      → DELETE_STUDENT
//	GET    /healthz                        → database ping
//	GET    /metrics                        → Prometheus exposition
package router

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-registration-api/internal/config"
	"github.com/aanand-mishra/student-registration-api/internal/http/handlers/health"
	"github.com/aanand-mishra/student-registration-api/internal/http/handlers/student"
	"github.com/aanand-mishra/student-registration-api/internal/http/middleware"
	"github.com/aanand-mishra/student-registration-api/internal/metrics"
	"github.com/aanand-mishra/student-registration-api/internal/storage"
)

// New registers every route on a fresh ServeMux and wraps it in the
// middleware stack. Patterns are lowercase because CaseInsensitivePaths
// lowercases the path before the mux sees it.
func New(cfg *config.Config, store storage.Storage, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/student/getgenders", student.GetGenders(store))
	mux.HandleFunc("GET /api/student/getqualifications", student.GetQualifications(store))
	mux.HandleFunc("GET /api/student/getmodes", student.GetModes(store))
	mux.HandleFunc("GET /api/student/getallstudents", student.GetAllStudents(store))
	mux.HandleFunc("POST /api/student/addstudent", student.Add(store))
	mux.HandleFunc("DELETE /api/student/deletestudent", student.Delete(store))

	mux.HandleFunc("GET /healthz", health.Check(store))
	mux.Handle("GET /metrics", metrics.Exposer())

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogger(log),
		middleware.Metrics(mux),
		middleware.Recover(log),
		middleware.CORS(cfg.CORS.AllowedOrigin),
		middleware.CaseInsensitivePaths,
	)
}
