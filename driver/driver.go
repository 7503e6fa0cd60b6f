// Package driver implements a database/sql driver that loads inferred tables
// into an in-memory SQLite database.
//
// The driver does not parse files itself. A Loader resolves each path of the
// data source name into typed tables, and the driver creates one SQLite table
// per Table with column affinities derived from the inferred column types.
//
// Usage:
//
//	sql.Register("tabsniff", driver.NewDriver(loader))
//	db, err := sql.Open("tabsniff", "users.csv;orders.xlsx")
package driver

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"

	"modernc.org/sqlite"

	"github.com/nao1215/tabsniff/domain/model"
)

// Table is one inferred table to load
type Table interface {
	// Name is the SQL table name
	Name() string
	// Columns are the inferred columns in order
	Columns() []model.Column
	// Rows streams typed values aligned with Columns
	Rows(ctx context.Context) iter.Seq2[[]any, error]
}

// Loader resolves one path of the data source name into tables
type Loader func(ctx context.Context, path string) ([]Table, error)

// Driver implements database/sql/driver.Driver interface.
// It serves as the entry point for creating connections to inferred tables.
type Driver struct {
	loader Loader
}

// Connector implements database/sql/driver.Connector interface.
// The dsn field contains file paths separated by semicolons.
type Connector struct {
	driver *Driver
	dsn    string
}

// Connection implements database/sql/driver.Conn interface.
// It wraps an underlying SQLite connection that contains the loaded tables.
type Connection struct {
	conn driver.Conn
}

// Transaction implements database/sql/driver.Tx interface.
type Transaction struct {
	tx driver.Tx
}

// NewDriver creates a driver that loads tables with loader
func NewDriver(loader Loader) *Driver {
	return &Driver{loader: loader}
}

// Open implements driver.Driver interface
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	connector, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector implements driver.DriverContext interface
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	return &Connector{
		driver: d,
		dsn:    dsn,
	}, nil
}

// Connect implements driver.Connector interface
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	sqliteDriver := &sqlite.Driver{}
	conn, err := sqliteDriver.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}

	if err := c.loadPaths(ctx, conn); err != nil {
		_ = conn.Close() // Ignore close error since we're already returning an error
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}

	return &Connection{conn: conn}, nil
}

// Driver implements driver.Connector interface
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// paths splits the DSN on semicolons and drops empty entries
func (c *Connector) paths() []string {
	var paths []string
	for _, p := range strings.Split(c.dsn, ";") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// loadPaths resolves every DSN path into tables and loads them
func (c *Connector) loadPaths(ctx context.Context, conn driver.Conn) error {
	paths := c.paths()
	if len(paths) == 0 {
		return ErrNoPathsProvided
	}
	if err := ValidateFileCount(len(paths)); err != nil {
		return err
	}

	tableNames := make(map[string]string) // table name -> path
	loaded := 0
	for _, path := range paths {
		if err := ValidatePath(path); err != nil {
			return fmt.Errorf("%w: %s", err, path)
		}
		tables, err := c.driver.loader(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to load file %s: %w", path, err)
		}
		for _, table := range tables {
			if existing, ok := tableNames[table.Name()]; ok {
				return fmt.Errorf("%w: table '%s' from files '%s' and '%s'",
					ErrDuplicateTableName, table.Name(), existing, path)
			}
			tableNames[table.Name()] = path

			if err := c.loadTable(ctx, conn, table); err != nil {
				return fmt.Errorf("failed to load table %s: %w", table.Name(), err)
			}
			loaded++
		}
	}

	if loaded == 0 {
		return ErrNoFilesLoaded
	}
	return nil
}

// loadTable creates the table and inserts its rows
func (c *Connector) loadTable(ctx context.Context, conn driver.Conn, table Table) error {
	columns := table.Columns()
	if err := ValidateIdentifier(table.Name()); err != nil {
		return err
	}
	if err := ValidateColumnCount(len(columns)); err != nil {
		return err
	}
	for _, col := range columns {
		if err := ValidateIdentifier(col.Name); err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}
	}

	if err := c.executeStatement(ctx, conn, buildCreateTableQuery(table.Name(), columns), nil); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if err := c.insertRows(ctx, conn, table); err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}
	return nil
}

// buildCreateTableQuery constructs a CREATE TABLE query with typed columns
func buildCreateTableQuery(name string, columns []model.Column) string {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		defs = append(defs, fmt.Sprintf(`[%s] %s`, col.Name, SQLType(col)))
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS [%s] (%s)`, name, strings.Join(defs, ", "))
}

// buildInsertQuery constructs an INSERT query for the given table
func buildInsertQuery(name string, columnCount int) string {
	return fmt.Sprintf(`INSERT INTO [%s] VALUES (%s)`, name, buildPlaceholders(columnCount))
}

// buildPlaceholders creates placeholder string for prepared statements
func buildPlaceholders(count int) string {
	if count == 0 {
		return ""
	}
	return "?" + strings.Repeat(", ?", count-1)
}

// SQLType returns the SQLite column affinity for an inferred column.
// Lists are stored as JSON text.
func SQLType(col model.Column) string {
	if col.IsList {
		return "TEXT"
	}
	switch col.Type {
	case model.ColumnTypeBoolean, model.ColumnTypeInteger:
		return "INTEGER"
	case model.ColumnTypeDecimal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// insertRows inserts every streamed row with one prepared statement
func (c *Connector) insertRows(ctx context.Context, conn driver.Conn, table Table) error {
	columns := table.Columns()
	stmt, err := conn.Prepare(buildInsertQuery(table.Name(), len(columns)))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for values, err := range table.Rows(ctx) {
		if err != nil {
			return err
		}
		args := make([]driver.Value, len(columns))
		for i := range columns {
			if i >= len(values) {
				break
			}
			if args[i], err = ToDriverValue(values[i]); err != nil {
				return fmt.Errorf("column %q: %w", columns[i].Name, err)
			}
		}
		if err := c.executeStatement(ctx, stmt, "", args); err != nil {
			return err
		}
	}
	return nil
}

// ToDriverValue converts a typed row value to a value SQLite stores natively.
// Booleans become 0 or 1, dates and times become text, lists become JSON.
func ToDriverValue(v any) (driver.Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case int64, float64:
		return val, nil
	case string:
		return ValidateFieldValue(val), nil
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = jsonItem(item)
		}
		data, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("failed to encode list: %w", err)
		}
		return string(data), nil
	default:
		return jsonItem(val), nil
	}
}

// jsonItem renders temporal values as text and leaves the rest unchanged
func jsonItem(v any) any {
	switch val := v.(type) {
	case model.Date:
		return val.String()
	case model.TimeOfDay:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return val
	}
}

// executeStatement executes a statement with proper context support
func (c *Connector) executeStatement(ctx context.Context, conn any, query string, args []driver.Value) error {
	switch stmt := conn.(type) {
	case driver.Conn:
		// For CREATE TABLE queries
		preparedStmt, err := stmt.Prepare(query)
		if err != nil {
			return err
		}
		defer preparedStmt.Close()
		return c.executeStatement(ctx, preparedStmt, "", args)

	case driver.Stmt:
		// For INSERT queries with prepared statement
		if stmtExecCtx, ok := stmt.(driver.StmtExecContext); ok {
			_, err := stmtExecCtx.ExecContext(ctx, convertToNamedValues(args))
			return err
		}
		return ErrStmtExecContextNotSupported

	default:
		return ErrUnsupportedStatement
	}
}

// convertToNamedValues converts driver.Value slice to driver.NamedValue slice
func convertToNamedValues(args []driver.Value) []driver.NamedValue {
	namedArgs := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		namedArgs[i] = driver.NamedValue{
			Ordinal: i + 1,
			Value:   arg,
		}
	}
	return namedArgs
}

// Close implements driver.Conn interface
func (conn *Connection) Close() error {
	if conn.conn != nil {
		return conn.conn.Close()
	}
	return nil
}

// Begin implements driver.Conn interface (deprecated, use BeginTx instead)
func (conn *Connection) Begin() (driver.Tx, error) {
	return conn.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements driver.ConnBeginTx interface
func (conn *Connection) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if connBeginTx, ok := conn.conn.(driver.ConnBeginTx); ok {
		tx, err := connBeginTx.BeginTx(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &Transaction{tx: tx}, nil
	}
	return nil, ErrBeginTxNotSupported
}

// Commit implements driver.Tx interface
func (t *Transaction) Commit() error {
	return t.tx.Commit()
}

// Rollback implements driver.Tx interface
func (t *Transaction) Rollback() error {
	return t.tx.Rollback()
}

// Prepare implements driver.Conn interface (deprecated, use PrepareContext instead)
func (conn *Connection) Prepare(query string) (driver.Stmt, error) {
	return conn.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext interface
func (conn *Connection) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if connPrepareCtx, ok := conn.conn.(driver.ConnPrepareContext); ok {
		return connPrepareCtx.PrepareContext(ctx, query)
	}
	return nil, ErrPrepareContextNotSupported
}
