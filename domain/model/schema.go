package model

import (
	"encoding/json"
	"unicode/utf8"
)

// Schema is the inferred structural description of a tabular source.
// Dialect fields are empty when absent, and always empty for sources that
// have no text dialect (spreadsheets, Parquet).
type Schema struct {
	Status            Status
	Charset           string
	Delimiter         string
	Newline           string
	Comment           string
	QuoteChar         string
	EscapeChar        string
	FirstDataRow      int
	RemoveNullStrings bool
	Columns           []Column
}

// NewSchema returns a schema that has not been inferred yet
func NewSchema() *Schema {
	return &Schema{Status: StatusInvalidFile}
}

// Reset clears every inferred field and keeps the caller options
func (s *Schema) Reset() {
	*s = Schema{Status: StatusInvalidFile, RemoveNullStrings: s.RemoveNullStrings}
}

// OK reports whether inference found a usable table
func (s *Schema) OK() bool {
	return s.Status == StatusOK && len(s.Columns) > 0
}

// Len returns the number of columns
func (s *Schema) Len() int {
	return len(s.Columns)
}

// ColumnNames returns the column names in order
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnByName returns the column with the given name
func (s *Schema) ColumnByName(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// SetDialect stores the dialect parameters as snapshot strings
func (s *Schema) SetDialect(d Dialect) {
	s.Delimiter = runeString(d.Delimiter)
	s.QuoteChar = runeString(d.Quote)
	s.EscapeChar = runeString(d.Escape)
	s.Newline = d.Newline
	s.Comment = d.Comment
}

// Dialect returns the dialect described by the schema
func (s *Schema) Dialect() Dialect {
	return Dialect{
		Delimiter: firstRune(s.Delimiter),
		Quote:     firstRune(s.QuoteChar),
		Escape:    firstRune(s.EscapeChar),
		Newline:   s.Newline,
		Comment:   s.Comment,
	}
}

// Fail marks the schema as failed with the given status and drops its columns
func (s *Schema) Fail(status Status) {
	s.Status = status
	s.Columns = nil
}

// Clone returns a deep copy of the schema
func (s *Schema) Clone() *Schema {
	c := *s
	c.Columns = append([]Column(nil), s.Columns...)
	return &c
}

// MarshalJSON encodes the schema as its snapshot
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalJSON decodes a snapshot into the schema
func (s *Schema) UnmarshalJSON(data []byte) error {
	snap, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	parsed, err := snap.Schema()
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

func runeString(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}

func firstRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
