package model

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the persisted form of a Schema. Keys are emitted in a fixed
// order and every key is always present; absent values are null.
type Snapshot struct {
	Status            Status           `json:"status"`
	Charset           *string          `json:"charset"`
	Delimiter         *string          `json:"delimiter"`
	Newline           *string          `json:"newline"`
	Comment           *string          `json:"comment"`
	QuoteChar         *string          `json:"quote_char"`
	EscapeChar        *string          `json:"escape_char"`
	FirstDataRow      int              `json:"first_data_row"`
	RemoveNullStrings bool             `json:"remove_null_strings"`
	Columns           []ColumnSnapshot `json:"columns"`
}

// ColumnSnapshot is the persisted form of a Column
type ColumnSnapshot struct {
	Index      int        `json:"index"`
	ColumnName string     `json:"column_name"`
	ColumnType ColumnType `json:"column_type"`
	Format     *string    `json:"format"`
	IsList     bool       `json:"is_list"`
}

// EqualOptions controls snapshot comparison
type EqualOptions struct {
	// IgnoreLineEndings tolerates delimiter and newline differences caused by
	// line-ending rewriting of a persisted baseline
	IgnoreLineEndings bool
}

// Snapshot converts the schema to its persisted form
func (s *Schema) Snapshot() Snapshot {
	snap := Snapshot{
		Status:            s.Status,
		Charset:           optional(s.Charset),
		Delimiter:         optional(s.Delimiter),
		Newline:           optional(s.Newline),
		Comment:           optional(s.Comment),
		QuoteChar:         optional(s.QuoteChar),
		EscapeChar:        optional(s.EscapeChar),
		FirstDataRow:      s.FirstDataRow,
		RemoveNullStrings: s.RemoveNullStrings,
		Columns:           make([]ColumnSnapshot, len(s.Columns)),
	}
	for i, c := range s.Columns {
		snap.Columns[i] = ColumnSnapshot{
			Index:      c.Index,
			ColumnName: c.Name,
			ColumnType: c.Type,
			Format:     optional(c.Format),
			IsList:     c.IsList,
		}
	}
	return snap
}

// ParseSnapshot decodes a snapshot from JSON
func ParseSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode schema snapshot: %w", err)
	}
	if snap.Columns == nil {
		snap.Columns = []ColumnSnapshot{}
	}
	return snap, nil
}

// Schema converts the snapshot back to a Schema
func (snap Snapshot) Schema() (*Schema, error) {
	s := &Schema{
		Status:            snap.Status,
		Charset:           value(snap.Charset),
		Delimiter:         value(snap.Delimiter),
		Newline:           value(snap.Newline),
		Comment:           value(snap.Comment),
		QuoteChar:         value(snap.QuoteChar),
		EscapeChar:        value(snap.EscapeChar),
		FirstDataRow:      snap.FirstDataRow,
		RemoveNullStrings: snap.RemoveNullStrings,
	}
	for i, c := range snap.Columns {
		if c.Index != i {
			return nil, fmt.Errorf("schema snapshot: column %q has index %d at position %d", c.ColumnName, c.Index, i)
		}
		s.Columns = append(s.Columns, Column{
			Index:  c.Index,
			Name:   c.ColumnName,
			Type:   c.ColumnType,
			Format: value(c.Format),
			IsList: c.IsList,
		})
	}
	return s, nil
}

// JSON encodes the snapshot with two-space indentation
func (snap Snapshot) JSON() ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// Diff lists the keys whose values differ between two snapshots
func (snap Snapshot) Diff(other Snapshot, opts EqualOptions) []string {
	var diff []string
	check := func(key string, equal bool) {
		if !equal {
			diff = append(diff, key)
		}
	}
	check("status", snap.Status == other.Status)
	check("charset", value(snap.Charset) == value(other.Charset))
	if !opts.IgnoreLineEndings {
		check("delimiter", value(snap.Delimiter) == value(other.Delimiter))
		check("newline", value(snap.Newline) == value(other.Newline))
	}
	check("comment", value(snap.Comment) == value(other.Comment))
	check("quote_char", value(snap.QuoteChar) == value(other.QuoteChar))
	check("escape_char", value(snap.EscapeChar) == value(other.EscapeChar))
	check("first_data_row", snap.FirstDataRow == other.FirstDataRow)
	check("remove_null_strings", snap.RemoveNullStrings == other.RemoveNullStrings)

	if len(snap.Columns) != len(other.Columns) {
		return append(diff, "columns")
	}
	for i, c := range snap.Columns {
		o := other.Columns[i]
		prefix := fmt.Sprintf("columns[%d].", i)
		check(prefix+"index", c.Index == o.Index)
		check(prefix+"column_name", c.ColumnName == o.ColumnName)
		check(prefix+"column_type", c.ColumnType == o.ColumnType)
		check(prefix+"format", value(c.Format) == value(o.Format))
		check(prefix+"is_list", c.IsList == o.IsList)
	}
	return diff
}

// Equal reports whether two snapshots describe the same schema
func (snap Snapshot) Equal(other Snapshot, opts EqualOptions) bool {
	return len(snap.Diff(other, opts)) == 0
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
