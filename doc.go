// Package tabsniff infers the schema of tabular files and streams their rows
// as typed values, with no format description from the caller.
//
// tabsniff reads delimited text (CSV, TSV and other separators), Excel (XLSX)
// workbooks, Parquet files and ZIP archives of such files. Compressed inputs
// (gzip, bzip2, xz, zstandard) are recognized by content and decompressed
// transparently.
//
// # Schema Inference
//
// Inference works on a bounded sample of the source. For delimited text it
// detects the character encoding, sniffs the dialect (delimiter, quote and
// escape characters, newline, comment marker), locates the header and the
// first data row, and infers one column type per field position:
// Boolean, Integer, Decimal, Date, Time, Datetime or String, optionally as a
// list. Date and time columns carry the strftime pattern that matched every
// sampled value.
//
//	p, err := tabsniff.NewParser("users.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	schema, err := p.InferSchema(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !schema.OK() {
//	    log.Fatalf("no table found: %s", schema.Status)
//	}
//
// A source without any table is not an error. The schema reports
// INVALID_FILE and has no columns.
//
// # Streaming Rows
//
// Rows are read with the inferred schema, one at a time:
//
//	for row, err := range p.Rows(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(row.Number, row.Values)
//	}
//
// A field that does not convert to its column type is returned as nil and
// reported in Row.Mismatches. It never stops the iteration.
//
// # Sheets and Archive Members
//
// Workbooks expose their sheets through SheetNames and SelectSheet, ZIP
// archives their members through FileNames and SelectFile. Selection resets
// the schema, so InferSchema must be called again.
//
// # Snapshots
//
// A Schema serializes to a snapshot with a fixed key order, suitable for
// regression baselines. Snapshot.Equal can ignore the delimiter and newline
// differences introduced by line-ending conversion.
//
// # SQL
//
// Importing the package registers a database/sql driver named "tabsniff"
// that loads inferred tables into an in-memory SQLite database. OpenDB is the
// shortcut:
//
//	db, err := tabsniff.OpenDB("users.csv", "sales.xlsx")
//
// Table names are derived from file paths:
//   - "users.csv" becomes table "users"
//   - "data.tsv.gz" becomes table "data"
//   - "sales.xlsx" with multiple sheets becomes tables "sales_Sheet1", "sales_Sheet2", etc.
package tabsniff
