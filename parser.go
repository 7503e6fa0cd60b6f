package tabsniff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nao1215/tabsniff/domain/model"
)

// Parser infers the schema of one tabular source and streams its rows.
//
// The usual sequence is: create the parser, optionally select a sheet or an
// archive member, call InferSchema, check the returned Schema status, then
// iterate the rows with Rows or Open.
//
// A Parser is not safe for concurrent use. It holds at most one open stream.
type Parser struct {
	cfg    Config
	logger *logrus.Logger
	log    *logrus.Entry

	root     *source
	rootType model.FileType
	files    []string
	file     int

	current *source
	kind    model.FileType
	sheets  []string
	sheet   int

	schema   *model.Schema
	inferred bool
	active   *Rows
	closed   bool
}

// NewParser creates a parser for the file at path. Compressed files, XLSX
// workbooks, Parquet files and ZIP archives of tabular files are recognized
// by their content.
func NewParser(path string, opts ...Option) (*Parser, error) {
	if err := newValidator().validatePath(path); err != nil {
		return nil, NewErrorContext("new parser", path).Error(err)
	}
	return newParser(pathSource(path), opts)
}

// NewParserFromBytes creates a parser over in-memory data. The name is used
// in logs and as a hint when the content alone is ambiguous.
func NewParserFromBytes(name string, data []byte, opts ...Option) (*Parser, error) {
	if err := newValidator().validateBytes(name, data); err != nil {
		return nil, NewErrorContext("new parser", name).Error(err)
	}
	return newParser(bytesSource(name, data), opts)
}

func newParser(src *source, opts []Option) (*Parser, error) {
	p := &Parser{
		cfg:    DefaultConfig(),
		root:   src,
		schema: model.NewSchema(),
	}
	for _, opt := range opts {
		opt(p)
	}

	ec := NewErrorContext("new parser", src.String())
	if err := newValidator().validateConfig(p.cfg); err != nil {
		return nil, ec.Error(err)
	}
	if p.logger == nil {
		p.logger = NewLogger(p.cfg, nil)
	}
	p.log = parserEntry(p.logger, src.String())
	p.schema.RemoveNullStrings = p.cfg.RemoveNullStrings

	fileType, members, err := src.detect()
	if err != nil {
		return nil, ec.Error(err)
	}
	p.rootType = fileType

	if fileType == model.FileTypeZip {
		if len(members) == 0 {
			return nil, ec.WithDetails("archive holds no tabular files").Error(ErrUnsupportedFormat)
		}
		p.files = members
		if err := p.useFile(0); err != nil {
			return nil, ec.Error(err)
		}
		return p, nil
	}

	if err := p.useSource(src, fileType); err != nil {
		return nil, ec.Error(err)
	}
	p.log.WithField("file_type", fileType.String()).Debug("source opened")
	return p, nil
}

// useFile makes an archive member the current source
func (p *Parser) useFile(index int) error {
	member := p.root.member(p.files[index])
	kind, _, err := member.detect()
	if err != nil {
		return err
	}
	if kind == model.FileTypeZip {
		return fmt.Errorf("%w: nested archive %s", ErrUnsupportedFormat, member)
	}
	if err := p.useSource(member, kind); err != nil {
		return err
	}
	p.file = index
	p.log.WithFields(logrus.Fields{
		"member":    member.name,
		"file_type": kind.String(),
	}).Debug("archive member selected")
	return nil
}

// useSource makes src the current source and lists its sheets
func (p *Parser) useSource(src *source, kind model.FileType) error {
	var sheets []string
	if kind == model.FileTypeXLSX {
		names, err := listSheets(src)
		if err != nil {
			return err
		}
		sheets = names
	}
	p.current = src
	p.kind = kind
	p.sheets = sheets
	p.sheet = 0
	return nil
}

// FileType returns the container format of the current source
func (p *Parser) FileType() FileType {
	return p.kind
}

// Source returns the name of the current source, "archive!member" for archive members
func (p *Parser) Source() string {
	return p.current.String()
}

// Schema returns a copy of the current schema. Before InferSchema it has
// status INVALID_FILE and no columns.
func (p *Parser) Schema() *Schema {
	return p.schema.Clone()
}

// SetRemoveNullStrings sets whether NULL and null are read as absent values.
// Changing it requires InferSchema to be called again before Open.
func (p *Parser) SetRemoveNullStrings(remove bool) {
	if p.schema.RemoveNullStrings == remove {
		return
	}
	p.schema.RemoveNullStrings = remove
	p.inferred = false
}

// reset drops the inferred schema and invalidates the open stream
func (p *Parser) reset() {
	if p.active != nil {
		p.active.invalidate()
		p.active = nil
	}
	p.schema.Reset()
	p.inferred = false
}

func (p *Parser) errorContext(operation string) *ErrorContext {
	ec := NewErrorContext(operation, p.current.String())
	if len(p.sheets) > 0 {
		ec.WithSheet(p.sheets[p.sheet])
	}
	return ec
}

// InferSchema samples the current source and infers its schema.
//
// A source without any usable table is not an error: the returned schema
// has status INVALID_FILE and no columns. A quoted field that is never
// closed within a complete sample fails with ErrMalformedQuoting, and a
// source that cannot be read fails with status UNREADABLE.
func (p *Parser) InferSchema(ctx context.Context) (*Schema, error) {
	ec := p.errorContext("infer schema")
	if p.closed {
		return nil, ec.Error(ErrParserClosed)
	}
	if p.active != nil {
		return nil, ec.Error(ErrAlreadyOpen)
	}
	if err := ctx.Err(); err != nil {
		return nil, ec.Error(err)
	}

	p.schema.Reset()
	var err error
	switch p.kind {
	case model.FileTypeXLSX:
		err = p.inferSheet(ctx)
	case model.FileTypeParquet:
		err = p.inferParquet(ctx)
	default:
		err = p.inferDelimited()
	}
	p.inferred = true
	if err != nil {
		return nil, ec.Error(err)
	}

	p.log.WithFields(logrus.Fields{
		"status":         p.schema.Status.String(),
		"columns":        len(p.schema.Columns),
		"first_data_row": p.schema.FirstDataRow,
	}).Debug("schema inferred")
	return p.schema.Clone(), nil
}

func (p *Parser) inferDelimited() error {
	sample, truncated, err := p.readSample()
	if err != nil {
		p.schema.Fail(model.StatusUnreadable)
		return err
	}
	defer samplePool.PutByteBuffer(sample)

	detection := model.DetectCharset(sample)
	if detection.Fallback {
		p.log.WithField("confidence", detection.Confidence).
			Warn("charset could not be detected reliably, decoding as UTF-8 with replacement")
	}
	raw := sample
	if truncated && strings.HasPrefix(detection.Charset, "UTF-16") && len(raw)%2 == 1 {
		raw = raw[:len(raw)-1]
	}
	text, err := model.DecodeBytes(raw, detection.Charset)
	if err != nil {
		p.schema.Fail(model.StatusUnreadable)
		return err
	}
	p.schema.Charset = detection.Charset

	cut := model.CutSample(text, p.cfg.SampleRows, truncated)
	partial := truncated || len(cut) < len(text)

	dialect, err := model.SniffDialect(cut)
	if errors.Is(err, model.ErrNoDialect) {
		p.log.Debug("no consistent dialect in sample")
		p.schema.Fail(model.StatusInvalidFile)
		return nil
	}
	if err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{
		"charset":   detection.Charset,
		"delimiter": string(dialect.Delimiter),
		"comment":   dialect.Comment,
	}).Debug("dialect sniffed")

	records, err := model.TokenizeAll(cut, dialect)
	if err != nil {
		if !errors.Is(err, model.ErrMalformedQuoting) {
			p.schema.Fail(model.StatusUnreadable)
			return err
		}
		if !partial {
			p.schema.Fail(model.StatusMalformedQuoting)
			return err
		}
		p.log.Debug("sample ends inside a quoted field, inferring over complete records")
	}
	return p.applyLayout(records, &dialect)
}

// readSample reads up to SampleBytes decompressed bytes into a pooled buffer.
// truncated reports that more data follows the sample.
func (p *Parser) readSample() ([]byte, bool, error) {
	st, err := p.current.open()
	if err != nil {
		return nil, false, err
	}
	defer st.Close()

	buf := samplePool.GetByteBuffer(p.cfg.SampleBytes)[:p.cfg.SampleBytes]
	n, err := io.ReadFull(st, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return buf[:n], false, nil
	}
	if err != nil {
		samplePool.PutByteBuffer(buf)
		return nil, false, fmt.Errorf("failed to read sample: %w", err)
	}

	var next [1]byte
	m, err := io.ReadFull(st, next[:])
	if err != nil && !errors.Is(err, io.EOF) {
		samplePool.PutByteBuffer(buf)
		return nil, false, fmt.Errorf("failed to read sample: %w", err)
	}
	return buf, m == 1, nil
}

func (p *Parser) inferSheet(ctx context.Context) error {
	src, err := newSheetSource(p.current, p.sheets[p.sheet])
	if err != nil {
		p.schema.Fail(model.StatusUnreadable)
		return err
	}
	defer src.Close()

	records, err := sampleRecords(ctx, src, p.cfg.SampleRows)
	if err != nil {
		p.schema.Fail(model.StatusUnreadable)
		return err
	}
	return p.applyLayout(records, nil)
}

func (p *Parser) inferParquet(ctx context.Context) error {
	table, err := readParquet(ctx, p.current)
	if err != nil {
		p.schema.Fail(model.StatusUnreadable)
		return err
	}
	src := newParquetSource(table)
	defer src.Close()

	fields := table.Schema().Fields()
	if len(fields) == 0 {
		p.schema.Fail(model.StatusInvalidFile)
		return nil
	}

	columns := make([]model.Column, len(fields))
	textual := make(map[int]*model.ColumnInferrer)
	for i, field := range fields {
		col, isText := arrowColumn(i, field)
		columns[i] = col
		if isText {
			textual[i] = model.NewColumnInferrer()
		}
	}

	if len(textual) > 0 {
		records, err := sampleRecords(ctx, src, p.cfg.SampleRows)
		if err != nil {
			p.schema.Fail(model.StatusUnreadable)
			return err
		}
		for _, rec := range records {
			for i, inferrer := range textual {
				inferrer.Observe(model.NormalizeNull(rec.Fields[i], p.schema.RemoveNullStrings))
			}
		}
		for i, inferrer := range textual {
			inf := inferrer.Result()
			columns[i].Type = inf.Type
			columns[i].Format = inf.Format
			columns[i].IsList = inf.IsList
		}
	}

	p.schema.FirstDataRow = 0
	p.schema.Columns = columns
	p.schema.Status = model.StatusOK
	return nil
}

// sampleRecords reads at most n records from src
func sampleRecords(ctx context.Context, src rowSource, n int) ([]model.Record, error) {
	records := make([]model.Record, 0, n)
	for len(records) < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// applyLayout fills the schema from the sampled records. dialect is nil for
// sources without a text dialect.
func (p *Parser) applyLayout(records []model.Record, dialect *model.Dialect) error {
	layout, err := model.InferTable(records, model.LayoutOptions{
		RemoveNullStrings: p.schema.RemoveNullStrings,
		Dialect:           dialect,
	})
	if errors.Is(err, model.ErrNoColumns) {
		p.log.Debug("sample holds no tabular data")
		p.schema.Fail(model.StatusInvalidFile)
		return nil
	}
	if err != nil {
		return err
	}

	if dialect != nil {
		p.schema.SetDialect(*dialect)
	}
	p.schema.FirstDataRow = layout.FirstDataRow
	p.schema.Columns = layout.Columns
	p.schema.Status = model.StatusOK
	return nil
}

// Open starts streaming the rows of the current source with the inferred
// schema. The returned Rows must be closed; the parser holds one stream at
// a time.
func (p *Parser) Open(ctx context.Context) (*Rows, error) {
	ec := p.errorContext("open")
	switch {
	case p.closed:
		return nil, ec.Error(ErrParserClosed)
	case !p.inferred:
		return nil, ec.Error(ErrSchemaNotInferred)
	case p.active != nil:
		return nil, ec.Error(ErrAlreadyOpen)
	case !p.schema.OK():
		return nil, ec.WithDetails("status " + p.schema.Status.String()).Error(ErrInvalidFile)
	}
	if err := ctx.Err(); err != nil {
		return nil, ec.Error(err)
	}

	converters := make([]*model.FieldConverter, len(p.schema.Columns))
	for i, col := range p.schema.Columns {
		conv, err := model.NewFieldConverter(col, p.schema.RemoveNullStrings)
		if err != nil {
			return nil, ec.Error(err)
		}
		converters[i] = conv
	}

	src, err := p.openRows(ctx)
	if err != nil {
		return nil, ec.Error(fmt.Errorf("%w: %w", ErrReopen, err))
	}

	rows := &Rows{
		ctx:        ctx,
		parser:     p,
		src:        src,
		converters: converters,
		log:        p.log,
		skip:       p.schema.FirstDataRow,
	}
	p.active = rows
	p.log.Debug("stream opened")
	return rows, nil
}

// openRows opens a fresh row source over the current source
func (p *Parser) openRows(ctx context.Context) (rowSource, error) {
	switch p.kind {
	case model.FileTypeXLSX:
		src, err := newSheetSource(p.current, p.sheets[p.sheet])
		if err != nil {
			return nil, err
		}
		return src, nil
	case model.FileTypeParquet:
		table, err := readParquet(ctx, p.current)
		if err != nil {
			return nil, err
		}
		return newParquetSource(table), nil
	default:
		src, err := newDelimitedSource(p.current, p.schema.Charset, p.schema.Dialect())
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

// Rows returns an iterator over the typed rows. The stream is opened when
// iteration starts and released when it ends, including on break. An error
// ends the iteration and is yielded with a zero Row.
func (p *Parser) Rows(ctx context.Context) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		rows, err := p.Open(ctx)
		if err != nil {
			yield(Row{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			if !yield(rows.Row(), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Row{}, err)
		}
	}
}

// Close releases the open stream, if any. It is safe to call more than once
// and before Open.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.active == nil {
		return nil
	}
	return p.active.Close()
}
