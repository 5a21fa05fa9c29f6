package middleware

import (
	"net/http"
	"strings"
)

// CaseInsensitivePaths lowercases the request path before routing, so
// /api/Student/GetGenders and /api/student/getgenders reach the same
// route. Routes must therefore be registered in lowercase.
func CaseInsensitivePaths(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, lowercasePath(r))
	})
}

// lowercasePath returns r unchanged when its path is already lowercase,
// otherwise a shallow copy with a lowercased URL path.
func lowercasePath(r *http.Request) *http.Request {
	lower := strings.ToLower(r.URL.Path)
	if lower == r.URL.Path {
		return r
	}
	u := *r.URL
	u.Path = lower
	u.RawPath = ""
	r2 := r.WithContext(r.Context())
	r2.URL = &u
	return r2
}
