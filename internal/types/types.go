// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date layouts.
//
//	DateLayout    — what clients send and what the database receives ("2024-09-01")
//	DisplayLayout — what the student listing renders ("01-09-2024")
const (
	DateLayout    = "2006-01-02"
	DisplayLayout = "02-01-2006"
)

// acceptedLayouts are tried in order when decoding a Date from JSON.
// Frontends often send a full timestamp from a date picker; only the
// calendar part is kept.
var acceptedLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Date is a calendar date with no time-of-day or zone.
// It embeds time.Time so callers can hand it straight to a database driver
// via d.Time.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "yyyy-MM-dd" or an RFC 3339 / ISO timestamp and
// truncates it to the calendar date.
func ParseDate(s string) (Date, error) {
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected yyyy-MM-dd", s)
}

// UnmarshalJSON decodes a JSON string into a Date. A JSON null leaves the
// zero value in place.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid date: must be a string")
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON encodes the date as "yyyy-MM-dd".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

// FormatDisplayDate renders t as dd-MM-yyyy regardless of the precision
// the database stored it with.
func FormatDisplayDate(t time.Time) string {
	return t.Format(DisplayLayout)
}

// Student is the registration payload accepted by POST addstudent.
//
// There are deliberately no validate:"..." tags here: field rules (valid
// foreign keys, duplicate emails, date sanity) are enforced by the
// INSERT_STUDENT procedure and surfaced as database errors.
type Student struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Address         string `json:"address"`
	DateOfBirth     Date   `json:"dateOfBirth"`
	GenderID        int64  `json:"genderId"`
	QualificationID int64  `json:"qualificationId"`
	ModeID          int64  `json:"modeId"`
	CourseStartDate Date   `json:"courseStartDate"`
}

// Gender, Qualification and Mode are read-only reference rows owned by
// the database.
type Gender struct {
	ID   int64  `json:"genderId"`
	Name string `json:"gender"`
}

type Qualification struct {
	ID   int64  `json:"qualificationId"`
	Name string `json:"qualification"`
}

type Mode struct {
	ID   int64  `json:"modeId"`
	Name string `json:"mode"`
}

// StudentRecord is the listing projection: a student joined with the
// names of its gender, qualification and study mode.
type StudentRecord struct {
	ID            int64  `json:"id"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Gender        string `json:"gender"`
	Qualification string `json:"qualification"`
	Mode          string `json:"mode"`
	StartDate     string `json:"startDate"`
}

// DeleteStudentRequest is the body of DELETE deletestudent.
// ID is a pointer so that a missing or null id can be told apart from 0.
type DeleteStudentRequest struct {
	ID *int64 `json:"id" validate:"required" label:"Id"`
}

// StudentCreated is the success body of POST addstudent.
type StudentCreated struct {
	StudentID int64 `json:"studentId"`
}

// StudentDeleted is the success body of DELETE deletestudent.
type StudentDeleted struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
