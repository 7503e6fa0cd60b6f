package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldConverterConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		column     Column
		removeNull bool
		raw        string
		want       any
	}{
		{name: "integer", column: Column{Type: ColumnTypeInteger}, raw: "42", want: int64(42)},
		{name: "integer with spaces", column: Column{Type: ColumnTypeInteger}, raw: " -7 ", want: int64(-7)},
		{name: "integral decimal as integer", column: Column{Type: ColumnTypeInteger}, raw: "3.0", want: int64(3)},
		{name: "boolean", column: Column{Type: ColumnTypeBoolean}, raw: "Yes", want: true},
		{name: "boolean zero", column: Column{Type: ColumnTypeBoolean}, raw: "0", want: false},
		{name: "decimal", column: Column{Type: ColumnTypeDecimal}, raw: "2.5", want: 2.5},
		{name: "exponent", column: Column{Type: ColumnTypeDecimal}, raw: "1e3", want: 1000.0},
		{name: "string keeps surrounding spaces", column: Column{Type: ColumnTypeString}, raw: " a ", want: " a "},
		{name: "empty is null", column: Column{Type: ColumnTypeInteger}, raw: "  ", want: nil},
		{name: "null spelling removed", column: Column{Type: ColumnTypeInteger}, removeNull: true, raw: "NULL", want: nil},
		{name: "null spelling in string column", column: Column{Type: ColumnTypeString}, removeNull: true, raw: "null", want: nil},
		{name: "null spelling kept", column: Column{Type: ColumnTypeString}, raw: "NULL", want: "NULL"},
		{
			name:   "date",
			column: Column{Type: ColumnTypeDate, Format: "%Y-%m-%d"},
			raw:    "2020-01-15",
			want:   Date{Year: 2020, Month: time.January, Day: 15},
		},
		{
			name:   "time",
			column: Column{Type: ColumnTypeTime, Format: "%I:%M %p"},
			raw:    "1:05 PM",
			want:   TimeOfDay{Hour: 13, Minute: 5},
		},
		{
			name:   "datetime",
			column: Column{Type: ColumnTypeDatetime, Format: "%Y-%m-%d %H:%M:%S"},
			raw:    "2020-01-15 10:30:00",
			want:   time.Date(2020, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:   "integer list",
			column: Column{Type: ColumnTypeInteger, IsList: true},
			raw:    "[1, 2]",
			want:   []any{int64(1), int64(2)},
		},
		{
			name:   "list with empty element",
			column: Column{Type: ColumnTypeInteger, IsList: true},
			raw:    "[1,,3]",
			want:   []any{int64(1), nil, int64(3)},
		},
		{
			name:   "scalar in list column",
			column: Column{Type: ColumnTypeInteger, IsList: true},
			raw:    "5",
			want:   []any{int64(5)},
		},
		{
			name:   "empty list",
			column: Column{Type: ColumnTypeString, IsList: true},
			raw:    "[]",
			want:   []any{},
		},
		{
			name:   "string list",
			column: Column{Type: ColumnTypeString, IsList: true},
			raw:    "<a,'b c'>",
			want:   []any{"a", "b c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fc, err := NewFieldConverter(tt.column, tt.removeNull)
			require.NoError(t, err)

			got, err := fc.Convert(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldConverterMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		column Column
		raw    string
	}{
		{column: Column{Type: ColumnTypeInteger}, raw: "abc"},
		{column: Column{Type: ColumnTypeInteger}, raw: "2.5"},
		{column: Column{Type: ColumnTypeInteger}, raw: "NULL"},
		{column: Column{Type: ColumnTypeBoolean}, raw: "maybe"},
		{column: Column{Type: ColumnTypeDecimal}, raw: "1,5"},
		{column: Column{Type: ColumnTypeDate, Format: "%Y-%m-%d"}, raw: "2020-02-30"},
		{column: Column{Type: ColumnTypeInteger, IsList: true}, raw: "[1,x]"},
	}

	for _, tt := range tests {
		fc, err := NewFieldConverter(tt.column, false)
		require.NoError(t, err)

		got, err := fc.Convert(tt.raw)
		assert.ErrorIs(t, err, ErrTypeMismatch, "%q as %s", tt.raw, tt.column.Type)
		assert.Nil(t, got)
		assert.False(t, fc.Matches(tt.raw))
	}
}

func TestNewFieldConverterBadFormat(t *testing.T) {
	t.Parallel()

	_, err := NewFieldConverter(Column{Name: "when", Type: ColumnTypeDate, Format: "%Q"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "when")
}

func TestFieldConverterFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		column Column
		raw    string
		want   string
	}{
		{column: Column{Type: ColumnTypeInteger}, raw: "42", want: "42"},
		{column: Column{Type: ColumnTypeDecimal}, raw: "2.50", want: "2.5"},
		{column: Column{Type: ColumnTypeBoolean}, raw: "y", want: "true"},
		{column: Column{Type: ColumnTypeDate, Format: "%d/%m/%Y"}, raw: "5/1/2020", want: "05/01/2020"},
		{column: Column{Type: ColumnTypeTime, Format: "%H:%M"}, raw: "9:05", want: "09:05"},
		{column: Column{Type: ColumnTypeInteger, IsList: true}, raw: "[1, 2]", want: "[1,2]"},
		{column: Column{Type: ColumnTypeInteger}, raw: "", want: ""},
	}

	for _, tt := range tests {
		fc, err := NewFieldConverter(tt.column, false)
		require.NoError(t, err)

		v, err := fc.Convert(tt.raw)
		require.NoError(t, err)
		formatted := fc.Format(v)
		assert.Equal(t, tt.want, formatted)

		again, err := fc.Convert(formatted)
		require.NoError(t, err)
		assert.Equal(t, v, again)
	}
}

func TestNormalizeNull(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", NormalizeNull("NULL", true))
	assert.Equal(t, "", NormalizeNull(" null ", true))
	assert.Equal(t, "Null", NormalizeNull("Null", true))
	assert.Equal(t, "NULL", NormalizeNull("NULL", false))
	assert.True(t, IsNullString("null"))
	assert.False(t, IsNullString("nil"))
}
