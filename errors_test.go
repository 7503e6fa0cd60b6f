package tabsniff

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ec   *ErrorContext
		base error
		want string
	}{
		{
			name: "operation and source",
			ec:   NewErrorContext("open", "users.csv"),
			base: ErrSchemaNotInferred,
			want: "tabsniff: open failed, source: users.csv: tabsniff: schema not inferred",
		},
		{
			name: "with sheet and details",
			ec:   NewErrorContext("select sheet", "book.xlsx").WithSheet("Orders").WithDetails("index 3"),
			base: ErrSheetNotFound,
			want: "tabsniff: select sheet failed, source: book.xlsx, sheet: Orders, details: index 3: tabsniff: sheet not found",
		},
		{
			name: "without base error",
			ec:   NewErrorContext("infer schema", ""),
			want: "tabsniff: infer schema failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.ec.Error(tt.base)
			assert.EqualError(t, err, tt.want)
			if tt.base != nil {
				assert.ErrorIs(t, err, tt.base)
			}
		})
	}
}

func TestErrors_CarrySheetContext(t *testing.T) {
	t.Parallel()

	p, err := NewParserFromBytes("book.xlsx", workbookFixture(t))
	require.NoError(t, err)
	require.NoError(t, p.SelectSheet(1))

	_, err = p.Open(context.Background())
	require.ErrorIs(t, err, ErrSchemaNotInferred)
	assert.Contains(t, err.Error(), "source: book.xlsx")
	assert.Contains(t, err.Error(), "sheet: Orders")
}

func TestErrMalformedQuoting_IsSharedWithModel(t *testing.T) {
	t.Parallel()

	p, err := NewParserFromBytes("bad.csv", []byte("a,b\n\"open,1\n"))
	require.NoError(t, err)
	_, err = p.InferSchema(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedQuoting))
}
