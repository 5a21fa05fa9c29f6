// Package sqlstore holds the database/sql plumbing shared by every
// storage backend: the reference-table lookups and the student listing
// are plain SELECTs that read the same on PostgreSQL, MySQL and SQLite.
//
// Backends embed *Store and add the two procedure calls (AddStudent and
// DeleteStudent), which differ per database.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aanand-mishra/student-registration-api/internal/types"
)

// Fixed statements. Explicit column lists so Scan order never drifts.
const (
	queryGenders        = "SELECT gender_id, gender FROM gender ORDER BY gender_id"
	queryQualifications = "SELECT q_id, q_name FROM qualification ORDER BY q_id"
	queryModes          = "SELECT m_id, m_name FROM mode_of_study ORDER BY m_id"
	queryStudents       = `
		SELECT s.s_id, s.full_name, s.email, s.phone_no, g.gender, q.q_name, m.m_name, s.start_date
		FROM student_reg s
		JOIN gender g        ON s.gender_id = g.gender_id
		JOIN qualification q ON s.q_id = q.q_id
		JOIN mode_of_study m ON s.mode_id = m.m_id
		ORDER BY s.s_id`
)

// Store wraps the *sql.DB pool. A single *sql.DB is safe for concurrent
// use by multiple goroutines.
type Store struct {
	DB *sql.DB
}

// New returns a Store over db.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// ─────────────────────────────────────────────────────────────────────────────
// WithConn acquires one connection from the pool, runs fn on it and hands
// the connection back to the pool on every exit path, panics included.
//
// Using a dedicated *sql.Conn (instead of s.DB directly) matters for the
// MySQL backend: a procedure OUT parameter lives in a session variable and
// can only be read back on the same connection.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Store) WithConn(ctx context.Context, op string, fn func(conn *sql.Conn) error) error {
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%s: acquire connection: %w", op, err)
	}
	defer conn.Close()

	return fn(conn)
}

// ListGenders reads every row of the gender table.
func (s *Store) ListGenders(ctx context.Context) ([]types.Gender, error) {
	genders := make([]types.Gender, 0)

	err := s.WithConn(ctx, "ListGenders", func(conn *sql.Conn) error {
		return queryPairs(ctx, conn, queryGenders, func(id int64, name string) {
			genders = append(genders, types.Gender{ID: id, Name: name})
		})
	})
	if err != nil {
		return nil, fmt.Errorf("ListGenders: %w", err)
	}
	return genders, nil
}

// ListQualifications reads every row of the qualification table.
func (s *Store) ListQualifications(ctx context.Context) ([]types.Qualification, error) {
	qualifications := make([]types.Qualification, 0)

	err := s.WithConn(ctx, "ListQualifications", func(conn *sql.Conn) error {
		return queryPairs(ctx, conn, queryQualifications, func(id int64, name string) {
			qualifications = append(qualifications, types.Qualification{ID: id, Name: name})
		})
	})
	if err != nil {
		return nil, fmt.Errorf("ListQualifications: %w", err)
	}
	return qualifications, nil
}

// ListModes reads every row of the mode_of_study table.
func (s *Store) ListModes(ctx context.Context) ([]types.Mode, error) {
	modes := make([]types.Mode, 0)

	err := s.WithConn(ctx, "ListModes", func(conn *sql.Conn) error {
		return queryPairs(ctx, conn, queryModes, func(id int64, name string) {
			modes = append(modes, types.Mode{ID: id, Name: name})
		})
	})
	if err != nil {
		return nil, fmt.Errorf("ListModes: %w", err)
	}
	return modes, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ListStudents returns the joined listing projection.
//
// start_date is scanned through dateValue so that DATE, DATETIME and TEXT
// storage all render the same dd-MM-yyyy string.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Store) ListStudents(ctx context.Context) ([]types.StudentRecord, error) {
	students := make([]types.StudentRecord, 0)

	err := s.WithConn(ctx, "ListStudents", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, queryStudents)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				rec   types.StudentRecord
				start dateValue
			)
			if err := rows.Scan(
				&rec.ID,
				&rec.FullName,
				&rec.Email,
				&rec.Phone,
				&rec.Gender,
				&rec.Qualification,
				&rec.Mode,
				&start,
			); err != nil {
				return fmt.Errorf("scan row: %w", err)
			}
			rec.StartDate = types.FormatDisplayDate(start.Time)
			students = append(students, rec)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows iteration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ListStudents: %w", err)
	}
	return students, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// queryPairs runs an (id, name) SELECT and feeds each row to add.
func queryPairs(ctx context.Context, conn *sql.Conn, query string, add func(id int64, name string)) error {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		add(id, name)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration: %w", err)
	}
	return nil
}

// dateValue scans a DATE/DATETIME column whatever the driver hands back:
// time.Time (lib/pq, go-sqlite3 on DATE columns, MySQL with parseTime=true)
// or raw text (MySQL without parseTime).
type dateValue struct {
	time.Time
}

var textDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func (d *dateValue) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	case nil:
		return fmt.Errorf("date column is NULL")
	default:
		return fmt.Errorf("unsupported date column type %T", src)
	}
}

func (d *dateValue) parse(s string) error {
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unparseable date %q", s)
}
