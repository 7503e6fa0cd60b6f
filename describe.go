package tabsniff

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DescribeSchema writes a human-readable summary of a schema: its status and
// dialect followed by one table row per column.
func DescribeSchema(w io.Writer, s *Schema) error {
	summary := table.NewWriter()
	summary.AppendRows([]table.Row{
		{"status", s.Status.String()},
		{"charset", displayValue(s.Charset)},
		{"delimiter", displayValue(s.Delimiter)},
		{"newline", displayValue(s.Newline)},
		{"comment", displayValue(s.Comment)},
		{"quote", displayValue(s.QuoteChar)},
		{"escape", displayValue(s.EscapeChar)},
		{"first data row", s.FirstDataRow},
		{"remove null strings", s.RemoveNullStrings},
	})
	summary.SetStyle(table.StyleLight)
	summary.Style().Options.DrawBorder = false
	summary.Style().Options.SeparateColumns = false

	columns := table.NewWriter()
	columns.AppendHeader(table.Row{"#", "name", "type", "format", "list"})
	for _, c := range s.Columns {
		list := ""
		if c.IsList {
			list = "yes"
		}
		columns.AppendRow(table.Row{c.Index, c.Name, c.Type.String(), c.Format, list})
	}
	columns.SetStyle(table.StyleLight)
	columns.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}

	if _, err := fmt.Fprintf(w, "%s\n\n%s\n", summary.Render(), columns.Render()); err != nil {
		return fmt.Errorf("failed to write schema description: %w", err)
	}
	return nil
}

// displayValue quotes control characters so that "\t" and "\r\n" stay visible
func displayValue(v string) string {
	if v == "" {
		return "-"
	}
	return strconv.Quote(v)
}
