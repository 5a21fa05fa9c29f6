// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver, so it backs local runs and tests.
//
// SQLite has no stored procedures. INSERT_STUDENT and DELETE_STUDENT are
// emulated here as single statements, and the rules a procedure would
// enforce live in the schema instead: foreign keys, UNIQUE and CHECK
// constraints, and a trigger that raises an application error. Violations
// surface as *storage.BusinessError exactly like a procedure error would.
//
// Importing go-sqlite3 also registers the "sqlite3" driver with
// database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-registration-api/internal/config"
	"github.com/aanand-mishra/student-registration-api/internal/storage"
	"github.com/aanand-mishra/student-registration-api/internal/storage/sqlstore"
	"github.com/aanand-mishra/student-registration-api/internal/types"
)

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	*sqlstore.Store
}

// schema is idempotent and runs on every startup.
//
// Dates are stored as TEXT in yyyy-MM-dd form; ISO dates compare correctly
// as strings, which the CHECK constraint relies on.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS gender (
		gender_id INTEGER PRIMARY KEY,
		gender    TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS qualification (
		q_id   INTEGER PRIMARY KEY,
		q_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS mode_of_study (
		m_id   INTEGER PRIMARY KEY,
		m_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS student_reg (
		s_id       INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name  TEXT    NOT NULL CHECK (length(trim(full_name)) > 0),
		email      TEXT    NOT NULL UNIQUE,
		phone_no   TEXT    NOT NULL,
		address    TEXT    NOT NULL,
		dob        DATE    NOT NULL,
		gender_id  INTEGER NOT NULL REFERENCES gender(gender_id),
		q_id       INTEGER NOT NULL REFERENCES qualification(q_id),
		mode_id    INTEGER NOT NULL REFERENCES mode_of_study(m_id),
		start_date DATE    NOT NULL,
		CHECK (start_date > dob)
	)`,
	`CREATE TRIGGER IF NOT EXISTS student_reg_dob_not_future
	BEFORE INSERT ON student_reg
	WHEN NEW.dob > date('now')
	BEGIN
		SELECT RAISE(ABORT, 'Date of birth cannot be in the future');
	END`,
}

// seed fills the reference tables on first start. INSERT OR IGNORE keeps
// rows an operator has renamed or added.
var seed = []string{
	`INSERT OR IGNORE INTO gender (gender_id, gender) VALUES
		(1, 'Male'), (2, 'Female'), (3, 'Other')`,
	`INSERT OR IGNORE INTO qualification (q_id, q_name) VALUES
		(1, 'High School'), (2, 'Diploma'), (3, 'Bachelor''s Degree'), (4, 'Master''s Degree')`,
	`INSERT OR IGNORE INTO mode_of_study (m_id, m_name) VALUES
		(1, 'Full-time'), (2, 'Part-time'), (3, 'Online')`,
}

const (
	insertStudent = `INSERT INTO student_reg
		(full_name, email, phone_no, address, dob, gender_id, q_id, mode_id, start_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	deleteStudent = "DELETE FROM student_reg WHERE s_id = ?"
)

// New opens the SQLite database at cfg.Database.ConnectionString, creates
// the schema if it does not already exist, seeds the reference tables
// unless SkipSeed is set, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", withForeignKeys(cfg.Database.ConnectionString))
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite.New: create schema: %w", err)
		}
	}

	if !cfg.Database.SkipSeed {
		for _, stmt := range seed {
			if _, err := db.Exec(stmt); err != nil {
				db.Close()
				return nil, fmt.Errorf("sqlite.New: seed reference data: %w", err)
			}
		}
	}

	return &SQLite{Store: sqlstore.New(db)}, nil
}

// withForeignKeys turns on FK enforcement for every connection the pool
// opens. SQLite leaves it off by default.
func withForeignKeys(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// AddStudent is the INSERT_STUDENT equivalent: one INSERT, returning the
// AUTOINCREMENT key.
func (s *SQLite) AddStudent(ctx context.Context, student types.Student) (int64, error) {
	var id int64

	err := s.WithConn(ctx, "AddStudent", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, insertStudent,
			student.FullName,
			student.Email,
			student.PhoneNumber,
			student.Address,
			student.DateOfBirth.Format(types.DateLayout),
			student.GenderID,
			student.QualificationID,
			student.ModeID,
			student.CourseStartDate.Format(types.DateLayout),
		)
		if err != nil {
			return fmt.Errorf("exec: %w", classify(err))
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("AddStudent: %w", err)
	}

	return id, nil
}

// DeleteStudent is the DELETE_STUDENT equivalent. An unknown id deletes
// nothing and is not an error; the returned count is 0.
func (s *SQLite) DeleteStudent(ctx context.Context, id int64) (int64, error) {
	var affected int64

	err := s.WithConn(ctx, "DeleteStudent", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, deleteStudent, id)
		if err != nil {
			return fmt.Errorf("exec: %w", classify(err))
		}

		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("DeleteStudent: %w", err)
	}

	return affected, nil
}

// classify maps constraint failures (FK, UNIQUE, CHECK, NOT NULL and
// trigger RAISE) to *storage.BusinessError keyed by the extended result
// code. I/O, locking and open failures stay system errors.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	// Mask to the primary code in case the connection reports extended
	// codes in Code as well.
	if sqliteErr.Code&0xff != sqlite3.ErrConstraint {
		return err
	}

	return &storage.BusinessError{
		Code:    strconv.Itoa(int(sqliteErr.ExtendedCode)),
		Message: sqliteErr.Error(),
		Err:     err,
	}
}
