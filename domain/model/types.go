// Package model provides the domain model for tabsniff: dialect sniffing,
// tokenizing, type inference and the Schema they produce.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ColumnType is the semantic type inferred for a column.
type ColumnType int

const (
	// ColumnTypeString is the fallback type for text data
	ColumnTypeString ColumnType = iota
	// ColumnTypeBoolean represents boolean literal spellings such as true/false or y/n
	ColumnTypeBoolean
	// ColumnTypeInteger represents base-10 integers
	ColumnTypeInteger
	// ColumnTypeDecimal represents fixed-point or exponential real numbers
	ColumnTypeDecimal
	// ColumnTypeDate represents calendar dates without a time of day
	ColumnTypeDate
	// ColumnTypeTime represents a time of day without a date
	ColumnTypeTime
	// ColumnTypeDatetime represents a date combined with a time of day
	ColumnTypeDatetime
)

var columnTypeNames = [...]string{
	ColumnTypeString:   "String",
	ColumnTypeBoolean:  "Boolean",
	ColumnTypeInteger:  "Integer",
	ColumnTypeDecimal:  "Decimal",
	ColumnTypeDate:     "Date",
	ColumnTypeTime:     "Time",
	ColumnTypeDatetime: "Datetime",
}

// String returns the snapshot spelling of the column type
func (ct ColumnType) String() string {
	if ct < 0 || int(ct) >= len(columnTypeNames) {
		return columnTypeNames[ColumnTypeString]
	}
	return columnTypeNames[ct]
}

// IsTemporal reports whether values of this type carry a format pattern
func (ct ColumnType) IsTemporal() bool {
	return ct == ColumnTypeDate || ct == ColumnTypeTime || ct == ColumnTypeDatetime
}

// ParseColumnType parses a snapshot spelling (case-insensitive) into a ColumnType
func ParseColumnType(s string) (ColumnType, error) {
	for i, name := range columnTypeNames {
		if strings.EqualFold(name, s) {
			return ColumnType(i), nil
		}
	}
	return ColumnTypeString, fmt.Errorf("%w: %q", ErrUnknownColumnType, s)
}

// MarshalText implements encoding.TextMarshaler
func (ct ColumnType) MarshalText() ([]byte, error) {
	return []byte(ct.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (ct *ColumnType) UnmarshalText(text []byte) error {
	parsed, err := ParseColumnType(string(text))
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// Status is the outcome of schema inference.
type Status int

const (
	// StatusOK means a usable tabular structure was found
	StatusOK Status = iota
	// StatusInvalidFile means no consistent dialect or no columns were found
	StatusInvalidFile
	// StatusMalformedQuoting means the sample ended inside a quoted field
	StatusMalformedQuoting
	// StatusUnreadable means the source bytes could not be read
	StatusUnreadable
)

var statusNames = [...]string{
	StatusOK:               "OK",
	StatusInvalidFile:      "INVALID_FILE",
	StatusMalformedQuoting: "MALFORMED_QUOTING",
	StatusUnreadable:       "UNREADABLE",
}

// String returns the snapshot spelling of the status
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return statusNames[StatusInvalidFile]
	}
	return statusNames[s]
}

// ParseStatus parses a snapshot spelling into a Status
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}
	return StatusInvalidFile, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Column describes one field position of a tabular source.
type Column struct {
	Index  int
	Name   string
	Type   ColumnType
	Format string // strftime pattern, only for Date/Time/Datetime
	IsList bool
}

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a Date from a time.Time, dropping the clock and zone
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String returns the date in ISO 8601 form
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// TimeOfDay is a wall clock time without a date.
type TimeOfDay struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// NewTimeOfDay creates a TimeOfDay from the clock of a time.Time
func NewTimeOfDay(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond()}
}

// String returns the time as HH:MM:SS with a fraction when present
func (t TimeOfDay) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Nanosecond != 0 {
		s += strings.TrimRight(fmt.Sprintf(".%09d", t.Nanosecond), "0")
	}
	return s
}

// Record is one logical record produced by the Tokenizer.
type Record struct {
	Fields  []string
	Line    int  // 1-based physical line where the record starts
	Comment bool // the record is a comment line; Fields holds the raw line
}

// IsBlank reports whether the record carries no data at all
func (r Record) IsBlank() bool {
	if r.Comment {
		return false
	}
	for _, f := range r.Fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
