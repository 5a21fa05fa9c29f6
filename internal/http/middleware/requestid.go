package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID is read from the request and echoed on the response.
const HeaderRequestID = "X-Request-Id"

// maxRequestIDLen caps a caller-supplied id.
const maxRequestIDLen = 128

type requestIDKey struct{}

// RequestID reuses the caller's X-Request-Id when it is a usable id, or
// generates one, stores it in the request context and writes it back as a
// response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(HeaderRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, rid)

		ctx := context.WithValue(r.Context(), requestIDKey{}, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the id stored by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}

// validRequestID accepts 1 to maxRequestIDLen printable ASCII characters
// without spaces.
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if rid[i] <= ' ' || rid[i] > '~' {
			return false
		}
	}
	return true
}
