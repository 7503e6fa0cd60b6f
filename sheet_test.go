package tabsniff

import (
	"bytes"
	"context"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbookFixture builds a workbook with a users sheet and an orders sheet
func workbookFixture(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	users := [][]any{
		{"id", "name"},
		{1, "Alice"},
		{2, "Bob"},
		{3, "Carol"},
	}
	for i, row := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	_, err := f.NewSheet("Orders")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Orders", "A1", "sku"))
	require.NoError(t, f.SetCellValue("Orders", "B1", "price"))
	require.NoError(t, f.SetCellValue("Orders", "A2", "A-1"))
	require.NoError(t, f.SetCellValue("Orders", "B2", 9.5))
	require.NoError(t, f.SetCellValue("Orders", "A3", "B-2"))
	require.NoError(t, f.SetCellValue("Orders", "B3", 12.25))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// zipFixture builds an archive from name/content pairs in order
func zipFixture(t *testing.T, members [][2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, m := range members {
		fw, err := w.Create(m[0])
		require.NoError(t, err)
		_, err = fw.Write([]byte(m[1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestParser_Workbook(t *testing.T) {
	t.Parallel()

	p, err := NewParserFromBytes("book.xlsx", workbookFixture(t))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, FileTypeXLSX, p.FileType())
	assert.Equal(t, []string{"Sheet1", "Orders"}, p.SheetNames())
	assert.Equal(t, 2, p.SheetCount())
	assert.Equal(t, 0, p.SheetIndex())

	schema, rows := collectRows(t, p)
	assert.Equal(t, StatusOK, schema.Status)
	assert.Equal(t, 1, schema.FirstDataRow)
	assert.Empty(t, schema.Delimiter)
	assert.Equal(t, []string{"id", "name"}, schema.ColumnNames())
	assert.Equal(t, ColumnTypeInteger, schema.Columns[0].Type)
	require.Len(t, rows, 3)
	assert.Equal(t, []any{int64(3), "Carol"}, rows[2].Values)

	require.NoError(t, p.SelectSheetByName("Orders"))
	assert.Equal(t, 1, p.SheetIndex())
	schema, rows = collectRows(t, p)
	assert.Equal(t, []string{"sku", "price"}, schema.ColumnNames())
	assert.Equal(t, ColumnTypeDecimal, schema.Columns[1].Type)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"B-2", 12.25}, rows[1].Values)
}

func TestParser_WorkbookProgress(t *testing.T) {
	t.Parallel()

	p, err := NewParserFromBytes("book.xlsx", workbookFixture(t))
	require.NoError(t, err)
	_, err = p.InferSchema(context.Background())
	require.NoError(t, err)

	rows, err := p.Open(context.Background())
	require.NoError(t, err)
	count := 0
	for rows.Next() {
		count++
	}
	assert.Equal(t, 3, count)
	require.NoError(t, rows.Err())
	assert.InDelta(t, 100.0, rows.Progress(), 0.001)
}

func TestParser_SelectSheetErrors(t *testing.T) {
	t.Parallel()

	t.Run("workbook", func(t *testing.T) {
		t.Parallel()

		p, err := NewParserFromBytes("book.xlsx", workbookFixture(t))
		require.NoError(t, err)

		require.ErrorIs(t, p.SelectSheet(2), ErrSheetNotFound)
		require.ErrorIs(t, p.SelectSheet(-1), ErrSheetNotFound)
		require.ErrorIs(t, p.SelectSheetByName("Missing"), ErrSheetNotFound)
		assert.Equal(t, 0, p.SheetIndex())

		require.NoError(t, p.Close())
		require.ErrorIs(t, p.SelectSheet(0), ErrParserClosed)
		require.ErrorIs(t, p.SelectSheetByName("Missing"), ErrParserClosed)
	})

	t.Run("single table source", func(t *testing.T) {
		t.Parallel()

		p, err := NewParserFromBytes("users.csv", []byte(usersCSV))
		require.NoError(t, err)

		assert.Zero(t, p.SheetCount())
		assert.Empty(t, p.SheetNames())
		schema, err := p.InferSchema(context.Background())
		require.NoError(t, err)
		rows, err := p.Open(context.Background())
		require.NoError(t, err)
		defer rows.Close()

		require.NoError(t, p.SelectSheet(0))
		assert.Equal(t, schema, p.Schema(), "selecting the only table keeps the schema")
		require.True(t, rows.Next(), "selecting the only table keeps the stream")
		require.NoError(t, rows.Err())
		require.ErrorIs(t, p.SelectSheet(1), ErrSheetNotFound)
		require.ErrorIs(t, p.SelectSheetByName("Sheet1"), ErrSheetNotFound)
	})
}

func TestParser_SelectionInvalidatesStream(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p, err := NewParserFromBytes("book.xlsx", workbookFixture(t))
	require.NoError(t, err)
	_, err = p.InferSchema(ctx)
	require.NoError(t, err)

	rows, err := p.Open(ctx)
	require.NoError(t, err)
	require.True(t, rows.Next())

	require.NoError(t, p.SelectSheet(1))
	assert.False(t, rows.Next())
	require.ErrorIs(t, rows.Err(), ErrStreamInvalidated)
	require.NoError(t, rows.Close())

	assert.Equal(t, StatusInvalidFile, p.Schema().Status)
	assert.Empty(t, p.Schema().Columns)
	_, err = p.Open(ctx)
	require.ErrorIs(t, err, ErrSchemaNotInferred)
}

func TestParser_Archive(t *testing.T) {
	t.Parallel()

	data := zipFixture(t, [][2]string{
		{"a.csv", "id,name\n1,x\n2,y\n"},
		{"readme.md", "# not a table\n"},
		{"__MACOSX/._a.csv", "resource fork"},
		{".hidden.csv", "a,b\n1,2\n"},
		{"dir/b.tsv", "code\tprice\nA\t1.5\nB\t2\n"},
	})
	path := writeTestFile(t, "bundle.zip", data)

	p, err := NewParser(path)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, []string{"a.csv", "dir/b.tsv"}, p.FileNames())
	assert.Equal(t, 2, p.FileCount())
	assert.Equal(t, FileTypeDelimited, p.FileType())
	assert.Equal(t, path+"!a.csv", p.Source())

	_, rows := collectRows(t, p)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{int64(2), "y"}, rows[1].Values)

	require.NoError(t, p.SelectFileByName("dir/b.tsv"))
	assert.Equal(t, path+"!dir/b.tsv", p.Source())
	schema, rows := collectRows(t, p)
	assert.Equal(t, "\t", schema.Delimiter)
	assert.Equal(t, ColumnTypeDecimal, schema.Columns[1].Type)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"B", 2.0}, rows[1].Values)

	require.ErrorIs(t, p.SelectFileByName("readme.md"), ErrFileNotFound)
	require.ErrorIs(t, p.SelectFile(2), ErrFileNotFound)
}

func TestParser_ArchiveWithWorkbook(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("book.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(workbookFixture(t))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	p, err := NewParserFromBytes("bundle.zip", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, FileTypeXLSX, p.FileType())
	assert.Equal(t, []string{"Sheet1", "Orders"}, p.SheetNames())
	require.NoError(t, p.SelectSheet(1))
	schema, err := p.InferSchema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sku", "price"}, schema.ColumnNames())
}

func TestNewParser_ArchiveWithoutTables(t *testing.T) {
	t.Parallel()

	data := zipFixture(t, [][2]string{{"readme.md", "nothing here"}})
	_, err := NewParserFromBytes("docs.zip", data)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParser_SheetSchemasAreIndependent(t *testing.T) {
	t.Parallel()

	data := workbookFixture(t)
	ctx := context.Background()

	direct, err := NewParserFromBytes("book.xlsx", data)
	require.NoError(t, err)
	require.NoError(t, direct.SelectSheet(1))
	orders, err := direct.InferSchema(ctx)
	require.NoError(t, err)

	sequential, err := NewParserFromBytes("book.xlsx", data)
	require.NoError(t, err)
	users, err := sequential.InferSchema(ctx)
	require.NoError(t, err)
	require.NoError(t, sequential.SelectSheet(1))
	ordersAfterUsers, err := sequential.InferSchema(ctx)
	require.NoError(t, err)

	assert.True(t, orders.Snapshot().Equal(ordersAfterUsers.Snapshot(), EqualOptions{}))
	assert.False(t, orders.Snapshot().Equal(users.Snapshot(), EqualOptions{}))
}
