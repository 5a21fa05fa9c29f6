// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Consistent response shapes also make life easier for API consumers —
// they always know what error responses look like.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-registration-api/internal/storage"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a list, an id, a message…).
// Error responses look like one of:
//
//	{ "status": "error", "error": "Id is required." }
//	{ "status": "error", "errorCode": "23505", "errorMessage": "duplicate key value ..." }
//
// The second form carries a database-signaled (business) error verbatim.
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Status string constants — use these instead of raw string literals so
// a typo is caught by the compiler rather than silently sending "eroor".
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// fallbackBody is sent when data cannot be encoded at all.
const fallbackBody = `{"status":"error","error":"failed to encode response"}` + "\n"

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// The body is encoded in full BEFORE anything is written, so a client
// either gets the whole document or, if encoding fails, a 500 with a
// fixed error document. A truncated body never goes out under a success status.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallbackBody))
		return fmt.Errorf("encode response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Trailing newline, as json.Encoder would add.
	_, err = w.Write(append(body, '\n'))
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// GeneralError wraps any Go error into our standard Response shape.
// Use this for unexpected errors (DB failures, decode errors, etc.)
//
//	response.WriteJSON(w, http.StatusInternalServerError,
//	    response.GeneralError(err))
//
// ─────────────────────────────────────────────────────────────────────────────
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// BusinessError surfaces a database-signaled error with its native code
// and message.
func BusinessError(be *storage.BusinessError) Response {
	return Response{
		Status:       StatusError,
		ErrorCode:    be.Code,
		ErrorMessage: be.Message,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts a slice of validator.FieldError values into
// a single human-readable Response.
//
// Field names come from the validator's tag-name function, so a struct
// field tagged label:"Id" reads as "Id" here.
//
// Example output:
//
//	{ "status": "error", "error": "Id is required." }
//
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("%s is required.", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("%s must be a valid email address.", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("%s is invalid.", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, " "),
	}
}
