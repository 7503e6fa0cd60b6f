package tabsniff

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	"github.com/nao1215/tabsniff/domain/model"
	"github.com/nao1215/tabsniff/driver"
)

// sqlTable is one inferred table of a source, ready to be loaded by the SQL driver.
type sqlTable struct {
	// name is table name derived from file path and sheet.
	name string
	// parser has the table's file and sheet selected and its schema inferred.
	parser *Parser
	// columns are the inferred columns.
	columns []model.Column
}

// Name returns the table name.
func (t *sqlTable) Name() string {
	return t.name
}

// Columns returns the inferred columns.
func (t *sqlTable) Columns() []model.Column {
	return t.columns
}

// Rows streams the typed values of the table. Field mismatches are stored as NULL.
func (t *sqlTable) Rows(ctx context.Context) iter.Seq2[[]any, error] {
	return func(yield func([]any, error) bool) {
		for row, err := range t.parser.Rows(ctx) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(row.Values, nil) {
				return
			}
		}
	}
}

// tableFromFilePath creates table name from file path
func tableFromFilePath(filePath string) string {
	fileName := model.TrimCompressionExtension(filepath.Base(filePath))
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// tableName names the table of the parser's current selection. Workbooks with
// several sheets get one table per sheet, named file_sheet.
func tableName(p *Parser) string {
	name := tableFromFilePath(p.current.name)
	if p.SheetCount() > 1 {
		name += "_" + p.sheets[p.sheet]
	}
	return name
}

// loadTables is the driver Loader. It infers every table of the file at
// path: each archive member and each sheet becomes a table. Sheets and
// members without tabular data are skipped, but at least one table must load.
func loadTables(ctx context.Context, path string, opts ...Option) ([]driver.Table, error) {
	probe, err := NewParser(path, opts...)
	if err != nil {
		return nil, err
	}
	defer probe.Close()

	type selection struct{ file, sheet int }
	var selections []selection
	for file := range max(probe.FileCount(), 1) {
		if probe.FileCount() > 0 {
			if err := probe.SelectFile(file); err != nil {
				return nil, err
			}
		}
		for sheet := range max(probe.SheetCount(), 1) {
			selections = append(selections, selection{file: file, sheet: sheet})
		}
	}

	var tables []driver.Table
	for _, sel := range selections {
		p, err := NewParser(path, opts...)
		if err != nil {
			return nil, err
		}
		if p.FileCount() > 0 {
			if err := p.SelectFile(sel.file); err != nil {
				return nil, err
			}
		}
		if err := p.SelectSheet(sel.sheet); err != nil {
			return nil, err
		}
		schema, err := p.InferSchema(ctx)
		if err != nil {
			return nil, err
		}
		if !schema.OK() {
			p.log.WithField("status", schema.Status.String()).Info("skipping source without tabular data")
			continue
		}
		tables = append(tables, &sqlTable{
			name:    tableName(p),
			parser:  p,
			columns: schema.Columns,
		})
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}
	return tables, nil
}
