// Package storage defines the Storage interface, the contract every
// database backend satisfies for this application, and the
// error taxonomy shared by every backend.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers (HTTP layer) should not know or care which database they are
// talking to. The registration schema lives in PostgreSQL, MySQL or (for
// local development) SQLite, and all three satisfy this one contract.
// Tests pass a fake that satisfies the interface; no real database needed.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-registration-api/internal/types"
)

// Procedure names shared by the procedure-backed drivers.
const (
	ProcInsertStudent = "INSERT_STUDENT"
	ProcDeleteStudent = "DELETE_STUDENT"
)

// RowsUnknown is returned by DeleteStudent when the backend cannot report
// how many rows the procedure removed.
const RowsUnknown int64 = -1

// Storage is the database contract.
//
// Every method acquires one connection from the pool for the duration of
// the call and releases it on every exit path.
type Storage interface {
	// ListGenders returns every gender reference row.
	// Returns an empty slice (not nil) if the table is empty.
	ListGenders(ctx context.Context) ([]types.Gender, error)

	ListQualifications(ctx context.Context) ([]types.Qualification, error)

	ListModes(ctx context.Context) ([]types.Mode, error)

	// ListStudents joins students with their three reference rows.
	// StartDate is already formatted as dd-MM-yyyy.
	ListStudents(ctx context.Context) ([]types.StudentRecord, error)

	// AddStudent calls INSERT_STUDENT and returns the generated id.
	// Rule violations raised by the database come back as *BusinessError.
	AddStudent(ctx context.Context, student types.Student) (int64, error)

	// DeleteStudent calls DELETE_STUDENT. It returns the number of rows
	// removed, or RowsUnknown when the backend cannot tell. A missing id
	// is not an error.
	DeleteStudent(ctx context.Context, id int64) (int64, error)

	// Ping checks that a connection can be established.
	Ping(ctx context.Context) error

	Close() error
}

// ─────────────────────────────────────────────────────────────────────────────
// BusinessError is an error signaled by the database itself: a constraint
// violation or an error raised explicitly by a stored procedure.
//
// Code is the database's native code (SQLSTATE for PostgreSQL, the error
// number for MySQL, the extended result code for SQLite). Handlers map it
// to 400 Bad Request and surface Code and Message verbatim.
//
// Any error that is NOT a *BusinessError is a system error (connectivity,
// driver, unexpected failure) and maps to 500.
// ─────────────────────────────────────────────────────────────────────────────
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("database error %s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error { return e.Err }

// AsBusinessError reports whether err (or anything it wraps) is a
// *BusinessError.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
