package model

import (
	"fmt"
	"strings"
)

// TableLayout is where the data of a sampled table starts and what its columns are.
type TableLayout struct {
	// FirstDataRow is 0-based over non-blank rows; comment rows are counted
	FirstDataRow int
	HasHeader    bool
	Columns      []Column
}

// LayoutOptions tunes InferTable.
type LayoutOptions struct {
	RemoveNullStrings bool
	// Dialect is used to split a header that was written as a comment line.
	// It is nil for sources without a text dialect.
	Dialect *Dialect
}

type sampledRow struct {
	index   int // position among non-blank rows
	fields  []string
	comment bool
	width   int // field count without trailing empty fields
}

// InferTable locates the header and the first data row of sampled records
// and infers one Column per field position. It returns ErrNoColumns when
// the records hold no data.
func InferTable(records []Record, opts LayoutOptions) (TableLayout, error) {
	var rows, data []*sampledRow
	for _, rec := range records {
		if rec.IsBlank() {
			continue
		}
		row := &sampledRow{index: len(rows), comment: rec.Comment}
		if !rec.Comment {
			row.fields = make([]string, len(rec.Fields))
			for i, f := range rec.Fields {
				row.fields[i] = NormalizeNull(f, opts.RemoveNullStrings)
			}
			row.width = trimmedWidth(row.fields)
		} else {
			row.fields = rec.Fields
		}
		rows = append(rows, row)
		if !rec.Comment && row.width > 0 {
			data = append(data, row)
		}
	}
	if len(data) == 0 {
		return TableLayout{}, ErrNoColumns
	}

	modal := modalWidth(data)
	start := 0
	for start < len(data) && data[start].width < modal {
		start++
	}
	candidate, rest := data[start], data[start+1:]

	ncols := modal

	inferrers := make([]*ColumnInferrer, ncols)
	for j := range inferrers {
		inferrers[j] = NewColumnInferrer()
	}
	for _, row := range rest {
		observeRow(inferrers, row.fields)
	}

	layout := TableLayout{}
	layout.HasHeader = isHeader(candidate.fields, inferrers, len(rest))

	var names []string
	switch {
	case layout.HasHeader:
		names = headerNames(candidate.fields, opts.Dialect)
		layout.FirstDataRow = candidate.index + 1
		if len(rest) > 0 {
			layout.FirstDataRow = rest[0].index
		}
	default:
		observeRow(inferrers, candidate.fields)
		layout.FirstDataRow = candidate.index
		if prev := candidate.index - 1; prev >= 0 && rows[prev].comment && opts.Dialect != nil {
			if commented := commentedHeader(rows[prev].fields[0], *opts.Dialect, ncols); commented != nil {
				names = commented
				layout.HasHeader = true
			}
		}
	}

	names = uniqueNames(names, ncols)
	layout.Columns = make([]Column, ncols)
	for j, inf := range inferrers {
		layout.Columns[j] = Column{
			Index:  j,
			Name:   names[j],
			Type:   inf.Result().Type,
			Format: inf.Result().Format,
			IsList: inf.Result().IsList,
		}
	}
	return layout, nil
}

func observeRow(inferrers []*ColumnInferrer, fields []string) {
	for j, ci := range inferrers {
		if j < len(fields) {
			ci.Observe(fields[j])
		}
	}
}

// isHeader decides whether the candidate row names the columns. It does when
// no data follows it, when every column is untyped, or when one of its cells
// fails the type inferred for that column from the rows below.
func isHeader(candidate []string, inferrers []*ColumnInferrer, dataRows int) bool {
	if dataRows == 0 {
		return true
	}
	typed := false
	for j, ci := range inferrers {
		inf := ci.Result()
		if inf.Type == ColumnTypeString && !inf.IsList {
			continue
		}
		typed = true
		if j >= len(candidate) || strings.TrimSpace(candidate[j]) == "" {
			continue
		}
		fc, err := NewFieldConverter(Column{Type: inf.Type, Format: inf.Format, IsList: inf.IsList}, false)
		if err != nil || !fc.Matches(candidate[j]) {
			return true
		}
	}
	return !typed
}

func headerNames(fields []string, d *Dialect) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimSpace(f)
	}
	if len(names) > 0 {
		marker := "#"
		if d != nil && d.Comment != "" {
			marker = d.Comment
		}
		if rest := strings.TrimSpace(strings.TrimPrefix(names[0], marker)); rest != "" && rest != names[0] {
			names[0] = rest
		}
	}
	return names
}

// commentedHeader splits a comment line such as "# id,name" into header
// names when it has as many fields as the table
func commentedHeader(line string, d Dialect, ncols int) []string {
	body := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(body, d.Comment) {
		return nil
	}
	body = strings.TrimSpace(strings.TrimPrefix(body, d.Comment))
	plain := d
	plain.Comment = ""
	recs, err := TokenizeAll(body, plain)
	if err != nil || len(recs) != 1 || len(recs[0].Fields) != ncols {
		return nil
	}
	return headerNames(recs[0].Fields, nil)
}

func trimmedWidth(fields []string) int {
	w := len(fields)
	for w > 0 && strings.TrimSpace(fields[w-1]) == "" {
		w--
	}
	return w
}

// modalWidth returns the most common row width, preferring the wider on ties
func modalWidth(rows []*sampledRow) int {
	counts := map[int]int{}
	for _, row := range rows {
		counts[row.width]++
	}
	best, bestCount := 0, 0
	for w, c := range counts {
		if c > bestCount || (c == bestCount && w > best) {
			best, bestCount = w, c
		}
	}
	return best
}

// uniqueNames pads names to ncols with synthetic names and suffixes repeats with _2, _3, ...
func uniqueNames(names []string, ncols int) []string {
	out := make([]string, ncols)
	used := make(map[string]bool, ncols)
	for i := range out {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if name == "" {
			name = SyntheticColumnName(i)
		}
		candidate := name
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

// SyntheticColumnName names a column that has no header
func SyntheticColumnName(index int) string {
	return fmt.Sprintf("column_%d", index)
}
