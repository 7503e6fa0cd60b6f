package tabsniff

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeSchema(t *testing.T) {
	t.Parallel()

	p, err := NewParserFromBytes("users.tsv", []byte("id\tname\ttags\n1\tAlice\t[a, b]\n2\tBob\t[c]\n"))
	require.NoError(t, err)
	schema, err := p.InferSchema(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, DescribeSchema(&buf, schema))
	out := buf.String()

	assert.Contains(t, out, "OK")
	assert.Contains(t, out, `"\t"`, "control characters stay visible")
	assert.Contains(t, out, `"\n"`)
	assert.Contains(t, out, "Integer")
	assert.Contains(t, out, "tags")
	assert.Contains(t, out, "yes", "list columns are marked")
}

func TestDescribeSchema_NotInferred(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, DescribeSchema(&buf, &Schema{}))
	assert.Contains(t, buf.String(), "-")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestDescribeSchema_WriteError(t *testing.T) {
	t.Parallel()

	err := DescribeSchema(failingWriter{}, &Schema{})
	require.ErrorContains(t, err, "disk full")
}

func TestDisplayValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-", displayValue(""))
	assert.Equal(t, `","`, displayValue(","))
	assert.Equal(t, `"\r\n"`, displayValue("\r\n"))
}

func TestDescribeSchema_SQLTableColumns(t *testing.T) {
	t.Parallel()

	tables, err := loadTables(context.Background(), writeTestFile(t, "users.csv", []byte(usersCSV)))
	require.NoError(t, err)
	require.Len(t, tables, 1)

	var buf bytes.Buffer
	require.NoError(t, DescribeSchema(&buf, &Schema{Status: StatusOK, Columns: tables[0].Columns()}))
	assert.Contains(t, buf.String(), "joined")
	assert.Contains(t, buf.String(), "%Y-%m-%d")
}
