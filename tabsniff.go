package tabsniff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/tabsniff/domain/model"
	tabsniffdriver "github.com/nao1215/tabsniff/driver"
)

const (
	// DriverName is the name for the tabsniff driver
	DriverName = "tabsniff"
)

// Type aliases for the schema model
type (
	// Schema is the inferred structural description of a tabular source
	Schema = model.Schema
	// Column describes one field position of a tabular source
	Column = model.Column
	// ColumnType is the inferred type of a column
	ColumnType = model.ColumnType
	// Status is the outcome of schema inference
	Status = model.Status
	// Date is a calendar date value of a Date column
	Date = model.Date
	// TimeOfDay is a wall clock value of a Time column
	TimeOfDay = model.TimeOfDay
	// Snapshot is the serialized form of a Schema
	Snapshot = model.Snapshot
	// EqualOptions tunes Snapshot comparison
	EqualOptions = model.EqualOptions
	// FileType is the container format of a source
	FileType = model.FileType
	// CompressionType represents the compression type
	CompressionType = model.CompressionType
)

// Re-export constants for easier use
const (
	ColumnTypeString   = model.ColumnTypeString
	ColumnTypeBoolean  = model.ColumnTypeBoolean
	ColumnTypeInteger  = model.ColumnTypeInteger
	ColumnTypeDecimal  = model.ColumnTypeDecimal
	ColumnTypeDate     = model.ColumnTypeDate
	ColumnTypeTime     = model.ColumnTypeTime
	ColumnTypeDatetime = model.ColumnTypeDatetime

	StatusOK               = model.StatusOK
	StatusInvalidFile      = model.StatusInvalidFile
	StatusMalformedQuoting = model.StatusMalformedQuoting
	StatusUnreadable       = model.StatusUnreadable

	FileTypeDelimited = model.FileTypeDelimited
	FileTypeXLSX      = model.FileTypeXLSX
	FileTypeParquet   = model.FileTypeParquet
	FileTypeZip       = model.FileTypeZip

	// CompressionNone represents no compression
	CompressionNone = model.CompressionNone
	// CompressionGZ represents gzip compression
	CompressionGZ = model.CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2 = model.CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ = model.CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD = model.CompressionZSTD
)

// ParseSnapshot decodes a snapshot written by Schema.Snapshot().JSON or json.Marshal(schema)
var ParseSnapshot = model.ParseSnapshot

// Register registers the tabsniff driver with database/sql
func Register() {
	sql.Register(DriverName, tabsniffdriver.NewDriver(sqlLoader))
}

func init() {
	// Auto-register the driver on import
	Register()
}

// sqlLoader loads tables for the SQL driver. The data source name carries no
// options, so the configuration comes from TABSNIFF_* environment variables.
func sqlLoader(ctx context.Context, path string) ([]tabsniffdriver.Table, error) {
	cfg, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	return loadTables(ctx, path, WithConfig(cfg))
}

// OpenDB loads the given files into an in-memory SQLite database.
//
// Every file is inferred the same way Parser.InferSchema does. Each file
// becomes a table named after the file without extensions; each sheet of a
// multi-sheet workbook and each member of a ZIP archive becomes its own table.
// Columns get SQLite affinities from their inferred types: INTEGER for
// Integer and Boolean, REAL for Decimal, TEXT otherwise. Lists are stored as
// JSON text and fields that do not match their column type as NULL.
//
// Example usage:
//
//	db, err := tabsniff.OpenDB("users.csv", "orders.xlsx")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	rows, err := db.Query("SELECT name FROM users WHERE joined >= '2020-01-01'")
func OpenDB(paths ...string) (*sql.DB, error) {
	return OpenDBContext(context.Background(), paths...)
}

// OpenDBContext is OpenDB with a context that bounds loading
func OpenDBContext(ctx context.Context, paths ...string) (*sql.DB, error) {
	if len(paths) == 0 {
		return nil, tabsniffdriver.ErrNoPathsProvided
	}
	db, err := sql.Open(DriverName, strings.Join(paths, ";"))
	if err != nil {
		return nil, err
	}
	// The data lives in one in-memory connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to close database: %w", closeErr))
		}
		return nil, err
	}
	return db, nil
}
