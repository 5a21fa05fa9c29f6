package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registration-api/internal/storage"
)

func TestClassifyBusinessErrors(t *testing.T) {
	cases := map[pq.ErrorCode]string{
		"P0001": "Email already registered",                                 // RAISE EXCEPTION
		"23503": "insert or update on table \"student_reg\" violates foreign key constraint",
		"23505": "duplicate key value violates unique constraint",
		"22007": "invalid input syntax for type date",
	}

	for code, msg := range cases {
		err := classify(fmt.Errorf("scan: %w", &pq.Error{Code: code, Message: msg}))

		be, ok := storage.AsBusinessError(err)
		require.True(t, ok, string(code))
		assert.Equal(t, string(code), be.Code)
		assert.Equal(t, msg, be.Message)
	}
}

func TestClassifySystemErrors(t *testing.T) {
	for _, code := range []pq.ErrorCode{"08006", "28P01", "53300", "57P01", "XX000"} {
		err := classify(&pq.Error{Code: code, Message: "server trouble"})
		_, ok := storage.AsBusinessError(err)
		assert.False(t, ok, string(code))
	}

	plain := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	assert.Same(t, plain, classify(plain))
}
