package mysql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registration-api/internal/storage"
)

func TestClassifyBusinessErrors(t *testing.T) {
	cases := map[uint16]string{
		1644: "Email already registered", // SIGNAL SQLSTATE '45000'
		1452: "Cannot add or update a child row: a foreign key constraint fails",
		1062: "Duplicate entry 'jane@x.com' for key 'email'",
	}

	for number, msg := range cases {
		err := classify(fmt.Errorf("exec: %w", &mysql.MySQLError{Number: number, Message: msg}))

		be, ok := storage.AsBusinessError(err)
		require.True(t, ok, number)
		assert.Equal(t, fmt.Sprint(number), be.Code)
		assert.Equal(t, msg, be.Message)
	}
}

func TestClassifySystemErrors(t *testing.T) {
	for _, number := range []uint16{1040, 1045, 1226} {
		err := classify(&mysql.MySQLError{Number: number, Message: "server trouble"})
		_, ok := storage.AsBusinessError(err)
		assert.False(t, ok, number)
	}

	assert.Same(t, mysql.ErrInvalidConn, classify(mysql.ErrInvalidConn))
	plain := errors.New("i/o timeout")
	assert.Same(t, plain, classify(plain))
}
