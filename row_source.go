package tabsniff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/tabsniff/domain/model"
)

// rowSource yields the raw records of the selected table one at a time.
// Next returns io.EOF after the last record.
type rowSource interface {
	Next() (model.Record, error)
	// Progress returns the share of the source consumed so far, in percent
	Progress() float64
	Close() error
}

// delimitedSource tokenizes decoded text
type delimitedSource struct {
	stream    *stream
	tokenizer *model.Tokenizer
}

func newDelimitedSource(src *source, charset string, dialect model.Dialect) (*delimitedSource, error) {
	st, err := src.open()
	if err != nil {
		return nil, err
	}
	decoded, err := model.NewDecodingReader(st, charset)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return &delimitedSource{
		stream:    st,
		tokenizer: model.NewTokenizer(decoded, dialect),
	}, nil
}

func (s *delimitedSource) Next() (model.Record, error) {
	return s.tokenizer.Read()
}

func (s *delimitedSource) Progress() float64 {
	return s.stream.Progress()
}

func (s *delimitedSource) Close() error {
	return s.stream.Close()
}

// sheetSource reads the rows of one workbook sheet. Rows absent from the
// sheet XML are skipped by excelize, which matches blank-row skipping.
type sheetSource struct {
	file  *excelize.File
	rows  *excelize.Rows
	total int
	read  int
}

// openWorkbook opens an XLSX source with excelize
func openWorkbook(src *source) (*excelize.File, error) {
	data, err := src.readAll()
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	return f, nil
}

// listSheets returns the sheet names of a workbook in tab order
func listSheets(src *source) ([]string, error) {
	f, err := openWorkbook(src)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close() // Ignore close error
	}()
	return f.GetSheetList(), nil
}

func newSheetSource(src *source, sheet string) (*sheetSource, error) {
	f, err := openWorkbook(src)
	if err != nil {
		return nil, err
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open rows iterator for sheet %s: %w", sheet, err)
	}
	return &sheetSource{
		file:  f,
		rows:  rows,
		total: sheetRowCount(f, sheet),
	}, nil
}

// sheetRowCount reads the last row number from the sheet dimension ("A1:D10")
func sheetRowCount(f *excelize.File, sheet string) int {
	dimension, err := f.GetSheetDimension(sheet)
	if err != nil || dimension == "" {
		return 0
	}
	cells := strings.Split(dimension, ":")
	_, row, err := excelize.CellNameToCoordinates(cells[len(cells)-1])
	if err != nil {
		return 0
	}
	return row
}

func (s *sheetSource) Next() (model.Record, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return model.Record{}, fmt.Errorf("failed to read sheet row: %w", err)
		}
		return model.Record{}, io.EOF
	}
	cols, err := s.rows.Columns()
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to read sheet row: %w", err)
	}
	s.read++
	return model.Record{Fields: cols, Line: s.read}, nil
}

func (s *sheetSource) Progress() float64 {
	if s.total <= 0 {
		return 100
	}
	return min(100, float64(s.read)*100/float64(s.total))
}

func (s *sheetSource) Close() error {
	rowsErr := s.rows.Close()
	if err := s.file.Close(); err != nil {
		return err
	}
	return rowsErr
}

// Formats of the canonical text Parquet temporal values are rendered to
const (
	parquetDateFormat     = "%Y-%m-%d"
	parquetTimeFormat     = "%H:%M:%S.%f"
	parquetDatetimeFormat = "%Y-%m-%d %H:%M:%S.%f"
)

var (
	parquetDateLayout     = model.MustCompileLayout(parquetDateFormat)
	parquetTimeLayout     = model.MustCompileLayout(parquetTimeFormat)
	parquetDatetimeLayout = model.MustCompileLayout(parquetDatetimeFormat)
)

// parquetBatchSize is the number of rows per arrow record batch
const parquetBatchSize = 1024

// cellRenderer renders one non-null arrow value as canonical text
type cellRenderer func(arr arrow.Array, i int) string

// parquetSource renders the rows of a Parquet table as text records, so they
// flow through the same converters as delimited data. Nulls become "".
type parquetSource struct {
	table     arrow.Table
	reader    *array.TableReader
	batch     arrow.Record
	row       int64
	read      int64
	renderers []cellRenderer
}

// readParquet loads a Parquet source into an arrow table.
// Parquet requires random access, so the whole file is read into memory.
func readParquet(ctx context.Context, src *source) (arrow.Table, error) {
	data, err := src.readAll()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty parquet file")
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader from bytes: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	return table, nil
}

func newParquetSource(table arrow.Table) *parquetSource {
	fields := table.Schema().Fields()
	renderers := make([]cellRenderer, len(fields))
	for i, field := range fields {
		renderers[i] = arrowRenderer(field.Type)
	}
	return &parquetSource{
		table:     table,
		reader:    array.NewTableReader(table, parquetBatchSize),
		renderers: renderers,
	}
}

func (s *parquetSource) Next() (model.Record, error) {
	for s.batch == nil || s.row >= s.batch.NumRows() {
		if !s.reader.Next() {
			if err := s.reader.Err(); err != nil {
				return model.Record{}, fmt.Errorf("error reading table records: %w", err)
			}
			return model.Record{}, io.EOF
		}
		s.batch = s.reader.Record()
		s.row = 0
	}

	fields := make([]string, len(s.renderers))
	for j, render := range s.renderers {
		col := s.batch.Column(j)
		if col.IsNull(int(s.row)) {
			continue
		}
		fields[j] = render(col, int(s.row))
	}
	s.row++
	s.read++
	return model.Record{Fields: fields, Line: int(s.read)}, nil
}

func (s *parquetSource) Progress() float64 {
	total := s.table.NumRows()
	if total <= 0 {
		return 100
	}
	return min(100, float64(s.read)*100/float64(total))
}

func (s *parquetSource) Close() error {
	s.reader.Release()
	s.table.Release()
	return nil
}

// arrowRenderer picks the text rendering of an arrow type. Temporal values use
// the fixed parquet*Format layouts; everything else uses arrow's own ValueStr.
func arrowRenderer(dt arrow.DataType) cellRenderer {
	switch t := dt.(type) {
	case *arrow.Date32Type:
		return func(arr arrow.Array, i int) string {
			return parquetDateLayout.Format(arr.(*array.Date32).Value(i).ToTime())
		}
	case *arrow.Date64Type:
		return func(arr arrow.Array, i int) string {
			return parquetDateLayout.Format(arr.(*array.Date64).Value(i).ToTime())
		}
	case *arrow.TimestampType:
		unit := t.Unit
		return func(arr arrow.Array, i int) string {
			return parquetDatetimeLayout.Format(arr.(*array.Timestamp).Value(i).ToTime(unit).UTC())
		}
	case *arrow.Time32Type:
		unit := t.Unit
		return func(arr arrow.Array, i int) string {
			return parquetTimeLayout.Format(arr.(*array.Time32).Value(i).ToTime(unit))
		}
	case *arrow.Time64Type:
		unit := t.Unit
		return func(arr arrow.Array, i int) string {
			return parquetTimeLayout.Format(arr.(*array.Time64).Value(i).ToTime(unit))
		}
	case *arrow.ListType:
		elem := arrowRenderer(t.Elem())
		return func(arr arrow.Array, i int) string {
			list := arr.(*array.List)
			values := list.ListValues()
			start, end := list.ValueOffsets(i)
			items := make([]string, 0, end-start)
			for j := start; j < end; j++ {
				if values.IsNull(int(j)) {
					items = append(items, "")
					continue
				}
				items = append(items, elem(values, int(j)))
			}
			return "[" + strings.Join(items, ",") + "]"
		}
	default:
		return func(arr arrow.Array, i int) string {
			return arr.ValueStr(i)
		}
	}
}

// arrowColumn maps an arrow field to a column. Textual fields report true so
// the caller can infer their type from sampled values.
func arrowColumn(index int, field arrow.Field) (model.Column, bool) {
	col := model.Column{Index: index, Name: field.Name}
	dt := field.Type
	if list, ok := dt.(*arrow.ListType); ok {
		col.IsList = true
		dt = list.Elem()
	}

	switch dt.ID() {
	case arrow.BOOL:
		col.Type = model.ColumnTypeBoolean
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		col.Type = model.ColumnTypeInteger
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64, arrow.DECIMAL128, arrow.DECIMAL256:
		col.Type = model.ColumnTypeDecimal
	case arrow.DATE32, arrow.DATE64:
		col.Type, col.Format = model.ColumnTypeDate, parquetDateFormat
	case arrow.TIME32, arrow.TIME64:
		col.Type, col.Format = model.ColumnTypeTime, parquetTimeFormat
	case arrow.TIMESTAMP:
		col.Type, col.Format = model.ColumnTypeDatetime, parquetDatetimeFormat
	case arrow.STRING, arrow.LARGE_STRING:
		col.Type = model.ColumnTypeString
		return col, !col.IsList
	default:
		col.Type = model.ColumnTypeString
	}
	return col, false
}
