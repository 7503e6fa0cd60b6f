package driver

import "errors"

// Predefined errors
var (
	// ErrNoPathsProvided is returned when no paths are provided
	ErrNoPathsProvided = errors.New("tabsniff driver: no paths provided")

	// ErrNoFilesLoaded is returned when no tables were loaded
	ErrNoFilesLoaded = errors.New("tabsniff driver: no tables were loaded")

	// ErrStmtExecContextNotSupported is returned when statement does not support ExecContext
	ErrStmtExecContextNotSupported = errors.New("tabsniff driver: statement does not support ExecContext")

	// ErrUnsupportedStatement is returned when a statement is neither a connection nor a prepared statement
	ErrUnsupportedStatement = errors.New("tabsniff driver: unsupported statement type")

	// ErrBeginTxNotSupported is returned when underlying connection does not support BeginTx
	ErrBeginTxNotSupported = errors.New("tabsniff driver: underlying connection does not support BeginTx")

	// ErrPrepareContextNotSupported is returned when underlying connection does not support PrepareContext
	ErrPrepareContextNotSupported = errors.New("tabsniff driver: underlying connection does not support PrepareContext")

	// ErrDuplicateTableName is returned when multiple sources would create the same table name
	ErrDuplicateTableName = errors.New("tabsniff driver: duplicate table name")
)
