// Package driver loads tables inferred by tabsniff into in-memory SQLite
// through the database/sql/driver interfaces.
package driver
