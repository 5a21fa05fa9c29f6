// Package mysql provides a MySQL-backed implementation of the
// storage.Storage interface on top of go-sql-driver/mysql.
//
// MySQL has no way to return a procedure OUT parameter to the client
// directly. The OUT argument is bound to a session variable (@p_s_id) and
// read back with a second SELECT on the SAME connection, so every
// call runs inside sqlstore.WithConn.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/aanand-mishra/student-registration-api/internal/config"
	"github.com/aanand-mishra/student-registration-api/internal/storage"
	"github.com/aanand-mishra/student-registration-api/internal/storage/sqlstore"
	"github.com/aanand-mishra/student-registration-api/internal/types"
)

const (
	resetOutID        = "SET @p_s_id = NULL"
	callInsertStudent = "CALL insert_student(@p_s_id, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	selectOutID       = "SELECT @p_s_id"
	callDeleteStudent = "CALL delete_student(?)"
)

// MySQL is the concrete implementation of storage.Storage.
type MySQL struct {
	*sqlstore.Store
}

// New parses the go-sql-driver DSN from cfg.Database, forces parseTime so
// DATE columns scan as time.Time, and verifies the pool with a ping.
func New(cfg *config.Config) (*MySQL, error) {
	dsn, err := mysql.ParseDSN(cfg.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("mysql.New: parse dsn: %w", err)
	}
	dsn.ParseTime = true

	connector, err := mysql.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql.New: connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql.New: ping: %w", err)
	}

	return &MySQL{Store: sqlstore.New(db)}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// AddStudent calls insert_student and reads the generated id back from the
// @p_s_id session variable.
//
// The variable is cleared first: connections are pooled, and a value left
// behind by an earlier request must never be mistaken for this one's id.
// ─────────────────────────────────────────────────────────────────────────────
func (m *MySQL) AddStudent(ctx context.Context, student types.Student) (int64, error) {
	var id sql.NullInt64

	err := m.WithConn(ctx, "AddStudent", func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, resetOutID); err != nil {
			return fmt.Errorf("reset out param: %w", err)
		}

		if _, err := conn.ExecContext(ctx, callInsertStudent,
			student.FullName,
			student.Email,
			student.PhoneNumber,
			student.Address,
			student.DateOfBirth.Format(types.DateLayout),
			student.GenderID,
			student.QualificationID,
			student.ModeID,
			student.CourseStartDate.Format(types.DateLayout),
		); err != nil {
			return fmt.Errorf("call %s: %w", storage.ProcInsertStudent, classify(err))
		}

		if err := conn.QueryRowContext(ctx, selectOutID).Scan(&id); err != nil {
			return fmt.Errorf("read out param: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("AddStudent: %w", err)
	}

	if !id.Valid {
		return 0, fmt.Errorf("AddStudent: %s did not set p_s_id", storage.ProcInsertStudent)
	}
	return id.Int64, nil
}

// DeleteStudent calls delete_student. For CALL the driver reports the
// affected-row count of the last statement the procedure ran.
func (m *MySQL) DeleteStudent(ctx context.Context, id int64) (int64, error) {
	var affected int64

	err := m.WithConn(ctx, "DeleteStudent", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, callDeleteStudent, id)
		if err != nil {
			return fmt.Errorf("call %s: %w", storage.ProcDeleteStudent, classify(err))
		}

		affected, err = res.RowsAffected()
		if err != nil {
			affected = storage.RowsUnknown
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("DeleteStudent: %w", err)
	}

	return affected, nil
}

// Server error numbers that describe connectivity, authentication or
// resource limits rather than the data being written.
var systemErrors = map[uint16]struct{}{
	1040: {}, // ER_CON_COUNT_ERROR
	1044: {}, // ER_DBACCESS_DENIED_ERROR
	1045: {}, // ER_ACCESS_DENIED_ERROR
	1129: {}, // ER_HOST_IS_BLOCKED
	1130: {}, // ER_HOST_NOT_PRIVILEGED
	1203: {}, // ER_TOO_MANY_USER_CONNECTIONS
	1226: {}, // ER_USER_LIMIT_REACHED
}

// classify turns server-raised data errors (SIGNAL in a procedure = 1644,
// foreign key = 1452, duplicate key = 1062, ...) into
// *storage.BusinessError and leaves everything else untouched.
func classify(err error) error {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return err
	}

	if _, ok := systemErrors[myErr.Number]; ok {
		return err
	}

	return &storage.BusinessError{
		Code:    strconv.Itoa(int(myErr.Number)),
		Message: myErr.Message,
		Err:     err,
	}
}
