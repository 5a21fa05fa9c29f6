package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsBusinessErrorThroughWrapping(t *testing.T) {
	cause := errors.New("driver error")
	be := &BusinessError{Code: "P0001", Message: "Email already registered", Err: cause}
	wrapped := fmt.Errorf("AddStudent: call %s: %w", ProcInsertStudent, be)

	got, ok := AsBusinessError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "P0001", got.Code)
	assert.Equal(t, "Email already registered", got.Message)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "database error P0001: Email already registered", be.Error())
}

func TestAsBusinessErrorSystemError(t *testing.T) {
	_, ok := AsBusinessError(fmt.Errorf("ListGenders: %w", errors.New("connection refused")))
	assert.False(t, ok)

	_, ok = AsBusinessError(nil)
	assert.False(t, ok)
}
