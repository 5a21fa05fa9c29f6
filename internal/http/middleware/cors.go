package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS admits browser requests from exactly one frontend origin, with any
// header and any method.
func CORS(allowedOrigin string) Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler
}
