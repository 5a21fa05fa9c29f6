// Package student contains all HTTP handlers related to student
// registration.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// To inject the storage dependency each exported function is a factory:
// it accepts storage.Storage ONCE at startup and returns the handler that
// runs on EVERY request.
//
//	mux.HandleFunc("GET /api/student/getgenders", student.GetGenders(store))
//
// Handlers hold no state of their own. Each request does exactly one
// storage call, and the storage layer scopes the database connection to
// that call.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-registration-api/internal/metrics"
	"github.com/aanand-mishra/student-registration-api/internal/storage"
	"github.com/aanand-mishra/student-registration-api/internal/types"
	"github.com/aanand-mishra/student-registration-api/internal/utils/response"
)

// validate is shared: a *validator.Validate caches struct metadata and is
// safe for concurrent use.
var validate = newValidator()

// newValidator reports fields by their label:"..." tag when present, so
// messages read "Id is required." rather than "ID is required.".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// GetGenders handles GET /api/student/GetGenders
//
// Success response (200 OK):
//
//	[ { "genderId": 1, "gender": "Male" }, ... ]
//
// GetQualifications and GetModes are identical over their own tables.
// All three return [] (not null) when the table is empty, and 500 when
// the database cannot be reached.
// ─────────────────────────────────────────────────────────────────────────────
func GetGenders(storage storage.Storage) http.HandlerFunc {
	return list("ListGenders", storage.ListGenders)
}

func GetQualifications(storage storage.Storage) http.HandlerFunc {
	return list("ListQualifications", storage.ListQualifications)
}

func GetModes(storage storage.Storage) http.HandlerFunc {
	return list("ListModes", storage.ListModes)
}

// ─────────────────────────────────────────────────────────────────────────────
// GetAllStudents handles GET /api/student/GetAllStudents
//
// Success response (200 OK):
//
//	[
//	  { "id": 7, "fullName": "Jane Doe", "email": "jane@x.com", "phone": "555-0100",
//	    "gender": "Female", "qualification": "Diploma", "mode": "Full-time",
//	    "startDate": "01-09-2024" }
//	]
//
// ─────────────────────────────────────────────────────────────────────────────
func GetAllStudents(storage storage.Storage) http.HandlerFunc {
	return list("ListStudents", storage.ListStudents)
}

// list builds a read-only handler around one storage listing call.
func list[T any](op string, fetch func(ctx context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing", slog.String("operation", op))

		items, err := fetch(r.Context())
		if err != nil {
			writeStorageError(w, op, err)
			return
		}

		// Storage promises a non-nil slice; guard anyway so the body is
		// always a JSON array.
		if items == nil {
			items = []T{}
		}
		response.WriteJSON(w, http.StatusOK, items)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Add handles POST /api/student/addstudent
// Registers a student through the INSERT_STUDENT procedure.
//
// Request body (JSON):
//
//	{ "fullName": "Jane Doe", "email": "jane@x.com", "phoneNumber": "555-0100",
//	  "address": "1 Main St", "dateOfBirth": "1990-01-01", "genderId": 1,
//	  "qualificationId": 2, "modeId": 1, "courseStartDate": "2024-09-01" }
//
// Success response (200 OK):
//
//	{ "studentId": 7 }
//
// Error responses:
//
//	400 Bad Request  — empty/malformed body, or a rule the database rejected
//	                   { "status": "error", "errorCode": "...", "errorMessage": "..." }
//	500 Internal     — any other failure { "status": "error", "error": "..." }
//
// The handler does not validate fields itself; the procedure owns the rules.
// ─────────────────────────────────────────────────────────────────────────────
func Add(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("adding a student")

		var student types.Student
		err := json.NewDecoder(r.Body).Decode(&student)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		id, err := storage.AddStudent(r.Context(), student)
		if err != nil {
			writeStorageError(w, "AddStudent", err)
			return
		}

		metrics.StudentsCreated.Inc()
		slog.Info("student added", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, types.StudentCreated{StudentID: id})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/student/deletestudent
// Removes a student through the DELETE_STUDENT procedure.
//
// Request body (JSON):
//
//	{ "id": 7 }
//
// Success response (200 OK):
//
//	{ "message": "Student with id 7 deleted", "id": 7 }
//
// Error responses:
//
//	400 Bad Request  — body empty or id missing/null: "Id is required."
//	                   or a database-signaled error (errorCode/errorMessage)
//	500 Internal     — any other failure
//
// Success means "the procedure raised no error". An id that matches no
// row still gets the success body; when the backend reports that nothing
// was removed, a warning is logged.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.DeleteStudentRequest

		// An empty body is the same as {"id": null}: fall through to the
		// required check.
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validate.Struct(req); err != nil {
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.ValidationError(validateErrs))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		id := *req.ID
		slog.Info("deleting a student", slog.Int64("id", id))

		removed, err := storage.DeleteStudent(r.Context(), id)
		if err != nil {
			writeStorageError(w, "DeleteStudent", err)
			return
		}

		if removed == 0 {
			slog.Warn("delete reported success but removed no rows", slog.Int64("id", id))
		} else {
			metrics.StudentsDeleted.Inc()
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, types.StudentDeleted{
			Message: fmt.Sprintf("Student with id %d deleted", id),
			ID:      id,
		})
	}
}

// writeStorageError applies the two-tier taxonomy: a database-signaled
// *storage.BusinessError becomes 400 with its code and message, anything
// else becomes 500 with the raw error text.
func writeStorageError(w http.ResponseWriter, op string, err error) {
	if be, ok := storage.AsBusinessError(err); ok {
		metrics.DatabaseErrors.WithLabelValues(op, metrics.KindBusiness).Inc()
		slog.Warn("database rejected request",
			slog.String("operation", op),
			slog.String("code", be.Code),
			slog.String("error", be.Message))
		response.WriteJSON(w, http.StatusBadRequest, response.BusinessError(be))
		return
	}

	metrics.DatabaseErrors.WithLabelValues(op, metrics.KindSystem).Inc()
	slog.Error("storage call failed",
		slog.String("operation", op),
		slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
