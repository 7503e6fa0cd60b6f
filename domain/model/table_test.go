package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inferText(t *testing.T, text string, d Dialect, removeNull bool) TableLayout {
	t.Helper()

	records, err := TokenizeAll(text, d)
	require.NoError(t, err)
	layout, err := InferTable(records, LayoutOptions{RemoveNullStrings: removeNull, Dialect: &d})
	require.NoError(t, err)
	return layout
}

func TestInferTable(t *testing.T) {
	t.Parallel()

	csv := Dialect{Delimiter: ',', Quote: '"'}

	tests := []struct {
		name         string
		text         string
		dialect      Dialect
		removeNull   bool
		firstDataRow int
		hasHeader    bool
		columns      []Column
	}{
		{
			name:         "header with typed columns",
			text:         "id,name,joined\n1,Alice,2020-01-15\n3,Bob,2020-03-02\n",
			dialect:      csv,
			firstDataRow: 1,
			hasHeader:    true,
			columns: []Column{
				{Index: 0, Name: "id", Type: ColumnTypeInteger},
				{Index: 1, Name: "name", Type: ColumnTypeString},
				{Index: 2, Name: "joined", Type: ColumnTypeDate, Format: "%Y-%m-%d"},
			},
		},
		{
			name:         "preamble before the table",
			text:         "Report\n\nid,val\n1,2\n3,4\n",
			dialect:      csv,
			firstDataRow: 2,
			hasHeader:    true,
			columns: []Column{
				{Index: 0, Name: "id", Type: ColumnTypeInteger},
				{Index: 1, Name: "val", Type: ColumnTypeInteger},
			},
		},
		{
			name:         "no header",
			text:         "1,2\n3,4\n5,6\n",
			dialect:      csv,
			firstDataRow: 0,
			columns: []Column{
				{Index: 0, Name: "column_0", Type: ColumnTypeInteger},
				{Index: 1, Name: "column_1", Type: ColumnTypeInteger},
			},
		},
		{
			name:         "untyped columns take the first row as header",
			text:         "a,b\nc,d\n",
			dialect:      csv,
			firstDataRow: 1,
			hasHeader:    true,
			columns: []Column{
				{Index: 0, Name: "a", Type: ColumnTypeString},
				{Index: 1, Name: "b", Type: ColumnTypeString},
			},
		},
		{
			name:         "single row is a header",
			text:         "a,b",
			dialect:      csv,
			firstDataRow: 1,
			hasHeader:    true,
			columns: []Column{
				{Index: 0, Name: "a", Type: ColumnTypeString},
				{Index: 1, Name: "b", Type: ColumnTypeString},
			},
		},
		{
			name:         "header written as a comment",
			text:         "# id,score\n1,2.5\n2,3.5\n",
			dialect:      Dialect{Delimiter: ',', Quote: '"', Comment: "#"},
			firstDataRow: 1,
			hasHeader:    true,
			columns: []Column{
				{Index: 0, Name: "id", Type: ColumnTypeInteger},
				{Index: 1, Name: "score", Type: ColumnTypeDecimal},
			},
		},
		{
			name:         "hash marker stripped from header",
			text:         "#id,name\n1,x\n2,y\n",
			dialect:      csv,
			firstDataRow: 1,
			hasHeader:    true,
			columns: []Column{
				{Index: 0, Name: "id", Type: ColumnTypeInteger},
				{Index: 1, Name: "name", Type: ColumnTypeString},
			},
		},
		{
			name:         "null spellings removed",
			text:         "n\n1\nNULL\n3\n",
			dialect:      csv,
			removeNull:   true,
			firstDataRow: 1,
			hasHeader:    true,
			columns:      []Column{{Index: 0, Name: "n", Type: ColumnTypeInteger}},
		},
		{
			name:         "null spellings kept",
			text:         "n\n1\nNULL\n3\n",
			dialect:      csv,
			firstDataRow: 1,
			hasHeader:    true,
			columns:      []Column{{Index: 0, Name: "n", Type: ColumnTypeString}},
		},
		{
			name:         "duplicate and empty header names",
			text:         "x,,x\n1,2,3\n4,5,6\n",
			dialect:      csv,
			firstDataRow: 1,
			hasHeader:    true,
			columns: []Column{
				{Index: 0, Name: "x", Type: ColumnTypeInteger},
				{Index: 1, Name: "column_1", Type: ColumnTypeInteger},
				{Index: 2, Name: "x_2", Type: ColumnTypeInteger},
			},
		},
		{
			name:         "outlier row does not widen the table",
			text:         "a,b,c\n1,2,3\n4,5,6\n7,8,9,10\n",
			dialect:      csv,
			firstDataRow: 1,
			hasHeader:    true,
			columns: []Column{
				{Index: 0, Name: "a", Type: ColumnTypeInteger},
				{Index: 1, Name: "b", Type: ColumnTypeInteger},
				{Index: 2, Name: "c", Type: ColumnTypeInteger},
			},
		},
		{
			name:         "short rows leave the modal width",
			text:         "a,b\n1,2\n3\n4,5\n",
			dialect:      csv,
			firstDataRow: 1,
			hasHeader:    true,
			columns: []Column{
				{Index: 0, Name: "a", Type: ColumnTypeInteger},
				{Index: 1, Name: "b", Type: ColumnTypeInteger},
			},
		},
		{
			name:         "list column",
			text:         "id\ttags\n1\t[a,b]\n2\t[c]\n",
			dialect:      Dialect{Delimiter: '\t', Quote: '"'},
			firstDataRow: 1,
			hasHeader:    true,
			columns: []Column{
				{Index: 0, Name: "id", Type: ColumnTypeInteger},
				{Index: 1, Name: "tags", Type: ColumnTypeString, IsList: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			layout := inferText(t, tt.text, tt.dialect, tt.removeNull)
			assert.Equal(t, tt.firstDataRow, layout.FirstDataRow)
			assert.Equal(t, tt.hasHeader, layout.HasHeader)
			assert.Equal(t, tt.columns, layout.Columns)
		})
	}
}

func TestInferTableNoColumns(t *testing.T) {
	t.Parallel()

	for _, records := range [][]Record{
		nil,
		{{Fields: []string{""}}, {Fields: []string{" ", ""}}},
		{{Fields: []string{"# only a comment"}, Comment: true}},
	} {
		_, err := InferTable(records, LayoutOptions{})
		assert.ErrorIs(t, err, ErrNoColumns)
	}
}

func TestSyntheticColumnName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "column_0", SyntheticColumnName(0))
	assert.Equal(t, "column_12", SyntheticColumnName(12))
}
