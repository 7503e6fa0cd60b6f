package tabsniff

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nao1215/tabsniff/domain/model"
)

// Row is one data row converted to the column types of the schema.
//
// Values are positionally aligned with Schema.Columns. A null field is nil.
// Other values are string, bool, int64, float64, Date, TimeOfDay, time.Time,
// or []any for list columns.
type Row struct {
	// Number is the 1-based ordinal of the row among the streamed data rows
	Number int
	Values []any
	// Mismatches lists the fields that did not convert to their column type.
	// Their Values entries are nil.
	Mismatches []FieldMismatch
}

// FieldMismatch records a field whose text does not convert to its column type
type FieldMismatch struct {
	Column int
	Raw    string
}

// Rows is a forward-only cursor over the data rows of a source. It is
// released automatically when Next returns false, and Close may be called
// any number of times.
type Rows struct {
	ctx        context.Context
	parser     *Parser
	src        rowSource
	converters []*model.FieldConverter
	log        *logrus.Entry

	skip   int // non-blank records left before the first data row
	number int
	row    Row
	err    error
	closed bool
}

// Next advances to the next data row. Blank and comment rows are skipped.
// It returns false at the end of the data or on error; see Err.
func (r *Rows) Next() bool {
	if r.closed {
		return false
	}
	for {
		if err := r.ctx.Err(); err != nil {
			r.fail(err)
			return false
		}
		rec, err := r.src.Next()
		if errors.Is(err, io.EOF) {
			r.release()
			return false
		}
		if err != nil {
			r.fail(err)
			return false
		}
		if rec.IsBlank() {
			continue
		}
		if r.skip > 0 {
			r.skip--
			continue
		}
		if rec.Comment {
			continue
		}
		r.number++
		r.row = r.convert(rec)
		return true
	}
}

// convert applies the column converters to one record. Missing trailing
// fields are nil and extra fields are ignored.
func (r *Rows) convert(rec model.Record) Row {
	row := Row{
		Number: r.number,
		Values: make([]any, len(r.converters)),
	}
	for i, conv := range r.converters {
		if i >= len(rec.Fields) {
			break
		}
		raw := rec.Fields[i]
		value, err := conv.Convert(raw)
		if err != nil {
			row.Mismatches = append(row.Mismatches, FieldMismatch{Column: i, Raw: raw})
			r.log.WithFields(logrus.Fields{
				"row":    r.number,
				"line":   rec.Line,
				"column": conv.Column().Name,
			}).WithError(err).Debug("field does not match column type")
			continue
		}
		row.Values[i] = value
	}
	return row
}

// Row returns the current row
func (r *Rows) Row() Row {
	return r.row
}

// Err returns the error that ended the iteration, if any
func (r *Rows) Err() error {
	return r.err
}

// Progress returns the share of the source consumed so far, in percent.
// For compressed sources it is measured on the compressed bytes.
func (r *Rows) Progress() float64 {
	return r.src.Progress()
}

// Close releases the underlying source
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.parser.active == r {
		r.parser.active = nil
	}
	return r.src.Close()
}

func (r *Rows) fail(err error) {
	r.err = r.parser.errorContext("read rows").Error(err)
	r.release()
}

// release closes the source once iteration has ended
func (r *Rows) release() {
	if err := r.Close(); err != nil && r.err == nil {
		r.err = err
	}
}

// invalidate ends the stream because the parser selection changed
func (r *Rows) invalidate() {
	if r.closed {
		return
	}
	r.err = ErrStreamInvalidated
	r.release()
	r.log.Debug("stream invalidated by selection")
}
