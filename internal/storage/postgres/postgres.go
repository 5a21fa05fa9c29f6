// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Storage interface on top of lib/pq.
//
// Student writes go through two procedures in the student_pkg schema:
//
//	student_pkg.insert_student(p_full_name, ..., p_start_date, OUT p_s_id)
//	student_pkg.delete_student(p_s_id)
//
// PostgreSQL returns procedure OUT parameters as a single result row, so
// the generated id is read with QueryRow + Scan.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/aanand-mishra/student-registration-api/internal/config"
	"github.com/aanand-mishra/student-registration-api/internal/storage"
	"github.com/aanand-mishra/student-registration-api/internal/storage/sqlstore"
	"github.com/aanand-mishra/student-registration-api/internal/types"
)

const (
	callInsertStudent = `CALL student_pkg.insert_student(
		p_full_name  => $1,
		p_email      => $2,
		p_phone_no   => $3,
		p_address    => $4,
		p_dob        => $5::date,
		p_gender_id  => $6,
		p_q_id       => $7,
		p_mode_id    => $8,
		p_start_date => $9::date,
		p_s_id       => NULL)`

	callDeleteStudent = "CALL student_pkg.delete_student(p_s_id => $1)"
)

// Postgres is the concrete implementation of storage.Storage.
type Postgres struct {
	*sqlstore.Store
}

// New opens the pool described by cfg.Database and verifies it with a
// ping.
func New(cfg *config.Config) (*Postgres, error) {
	connector, err := pq.NewConnector(cfg.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse connection string: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Postgres{Store: sqlstore.New(db)}, nil
}

// AddStudent calls student_pkg.insert_student and returns p_s_id.
func (p *Postgres) AddStudent(ctx context.Context, student types.Student) (int64, error) {
	var id int64

	err := p.WithConn(ctx, "AddStudent", func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, callInsertStudent,
			student.FullName,
			student.Email,
			student.PhoneNumber,
			student.Address,
			student.DateOfBirth.Format(types.DateLayout),
			student.GenderID,
			student.QualificationID,
			student.ModeID,
			student.CourseStartDate.Format(types.DateLayout),
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("AddStudent: call %s: %w", storage.ProcInsertStudent, classify(err))
	}

	return id, nil
}

// DeleteStudent calls student_pkg.delete_student. CALL does not report
// how many rows the procedure touched, so the count is always RowsUnknown.
func (p *Postgres) DeleteStudent(ctx context.Context, id int64) (int64, error) {
	err := p.WithConn(ctx, "DeleteStudent", func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, callDeleteStudent, id)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("DeleteStudent: call %s: %w", storage.ProcDeleteStudent, classify(err))
	}

	return storage.RowsUnknown, nil
}

// SQLSTATE classes that describe the server or the connection rather than
// the data: connection exception, invalid authorization, insufficient
// resources, operator intervention, system error, internal error.
var systemClasses = map[pq.ErrorClass]struct{}{
	"08": {},
	"28": {},
	"53": {},
	"57": {},
	"58": {},
	"XX": {},
}

// classify turns server-raised data errors (integrity violations,
// RAISE EXCEPTION in a procedure, bad input values) into
// *storage.BusinessError and leaves everything else untouched.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	if _, ok := systemClasses[pqErr.Code.Class()]; ok {
		return err
	}

	return &storage.BusinessError{
		Code:    string(pqErr.Code),
		Message: pqErr.Message,
		Err:     err,
	}
}
