package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// nullStrings are the spellings treated as null when RemoveNullStrings is set
var nullStrings = map[string]struct{}{
	"NULL": {},
	"null": {},
}

// IsNullString reports whether v is a null spelling
func IsNullString(v string) bool {
	_, ok := nullStrings[strings.TrimSpace(v)]
	return ok
}

// NormalizeNull returns "" for null spellings when removeNull is set, v otherwise
func NormalizeNull(v string, removeNull bool) string {
	if removeNull && IsNullString(v) {
		return ""
	}
	return v
}

// FieldConverter converts raw field text to the typed value of one column.
type FieldConverter struct {
	column     Column
	layout     *Layout
	removeNull bool
}

// NewFieldConverter prepares a converter for col
func NewFieldConverter(col Column, removeNull bool) (*FieldConverter, error) {
	fc := &FieldConverter{column: col, removeNull: removeNull}
	if col.Type.IsTemporal() {
		layout, err := CompileLayout(col.Format)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		fc.layout = layout
	}
	return fc, nil
}

// Column returns the column the converter serves
func (fc *FieldConverter) Column() Column {
	return fc.column
}

// Convert returns nil for null fields, the typed value otherwise. A field
// that does not convert yields an error wrapping ErrTypeMismatch.
func (fc *FieldConverter) Convert(raw string) (any, error) {
	v := strings.TrimSpace(NormalizeNull(raw, fc.removeNull))
	if v == "" {
		return nil, nil
	}
	if !fc.column.IsList {
		if fc.column.Type == ColumnTypeString {
			return raw, nil
		}
		return fc.scalar(v)
	}

	items, _, ok := SplitList(v)
	if !ok {
		items = []string{v}
	}
	values := make([]any, len(items))
	for i, item := range items {
		item = NormalizeNull(item, fc.removeNull)
		if strings.TrimSpace(item) == "" {
			continue
		}
		if fc.column.Type == ColumnTypeString {
			values[i] = item
			continue
		}
		val, err := fc.scalar(strings.TrimSpace(item))
		if err != nil {
			return nil, err
		}
		values[i] = val
	}
	return values, nil
}

func (fc *FieldConverter) scalar(v string) (any, error) {
	switch fc.column.Type {
	case ColumnTypeBoolean:
		if b, ok := boolLiterals[v]; ok {
			return b, nil
		}
	case ColumnTypeInteger:
		if isInteger(v) {
			n, _ := strconv.ParseInt(v, 10, 64)
			return n, nil
		}
		if isDecimal(v) {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int64(f)) {
				return int64(f), nil
			}
		}
	case ColumnTypeDecimal:
		if isDecimal(v) {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, nil
			}
		}
	case ColumnTypeDate, ColumnTypeTime, ColumnTypeDatetime:
		t, err := fc.layout.Parse(v)
		if err != nil {
			break
		}
		switch fc.column.Type {
		case ColumnTypeDate:
			return NewDate(t), nil
		case ColumnTypeTime:
			return NewTimeOfDay(t), nil
		default:
			return t, nil
		}
	default:
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q is not %s", ErrTypeMismatch, v, fc.column.Type)
}

// Format renders a typed value back to text that Convert accepts
func (fc *FieldConverter) Format(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fc.formatScalar(item)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fc.formatScalar(v)
	}
}

func (fc *FieldConverter) formatScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case Date:
		return fc.layout.Format(v.Time())
	case TimeOfDay:
		return fc.layout.Format(time.Date(1900, time.January, 1, v.Hour, v.Minute, v.Second, v.Nanosecond, time.UTC))
	case time.Time:
		return fc.layout.Format(v)
	default:
		return fmt.Sprint(v)
	}
}

// Matches reports whether raw converts under the column without error
func (fc *FieldConverter) Matches(raw string) bool {
	_, err := fc.Convert(raw)
	return err == nil
}
