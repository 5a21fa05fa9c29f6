package response

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registration-api/internal/storage"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteJSON(rec, http.StatusOK, map[string]int{"studentId": 7}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"studentId": 7}`, rec.Body.String())
}

func TestWriteJSONUnencodableFallsBackTo500(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteJSON(rec, http.StatusOK, math.Inf(1))
	require.Error(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"failed to encode response"}`, rec.Body.String())
}

func TestGeneralError(t *testing.T) {
	got := GeneralError(errors.New("connection refused"))
	assert.Equal(t, Response{Status: StatusError, Error: "connection refused"}, got)
}

func TestBusinessError(t *testing.T) {
	got := BusinessError(&storage.BusinessError{Code: "1644", Message: "Email already registered"})
	assert.Equal(t, Response{Status: StatusError, ErrorCode: "1644", ErrorMessage: "Email already registered"}, got)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Id    *int64 `validate:"required"`
		Email string `validate:"required,email"`
		Age   int    `validate:"min=18"`
	}

	err := validator.New().Struct(payload{Email: "not-an-email", Age: 3})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	got := ValidationError(verrs)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "Id is required. Email must be a valid email address. Age is invalid.", got.Error)
}
