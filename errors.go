package tabsniff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/tabsniff/domain/model"
)

// Standard errors returned by Parser and Rows. Callers test them with errors.Is.
var (
	// ErrInvalidFile indicates that inference found no usable tabular structure
	ErrInvalidFile = errors.New("tabsniff: invalid file")

	// ErrSheetNotFound indicates that a sheet or archive member selector matched nothing
	ErrSheetNotFound = errors.New("tabsniff: sheet not found")

	// ErrMalformedQuoting indicates a quoted field that is never closed
	ErrMalformedQuoting = model.ErrMalformedQuoting

	// ErrReopen indicates that the source could not be read again after inference
	ErrReopen = errors.New("tabsniff: source cannot be reopened")

	// ErrAlreadyOpen indicates that Open was called while a stream is active
	ErrAlreadyOpen = errors.New("tabsniff: stream already open")

	// ErrSchemaNotInferred indicates that Open was called before InferSchema
	ErrSchemaNotInferred = errors.New("tabsniff: schema not inferred")

	// ErrStreamInvalidated indicates that the stream was invalidated by a sheet or file selection
	ErrStreamInvalidated = errors.New("tabsniff: stream invalidated by selection")

	// ErrUnsupportedFormat indicates an input that is not a supported tabular format
	ErrUnsupportedFormat = errors.New("tabsniff: unsupported file format")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("tabsniff: file not found")

	// ErrParserClosed indicates use of a Parser after Close
	ErrParserClosed = errors.New("tabsniff: parser closed")
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	Source    string
	Sheet     string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, source string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		Source:    source,
	}
}

// WithSheet adds sheet context to the error
func (ec *ErrorContext) WithSheet(sheet string) *ErrorContext {
	ec.Sheet = sheet
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("tabsniff: %s failed", ec.Operation))

	if ec.Source != "" {
		parts = append(parts, "source: "+ec.Source)
	}

	if ec.Sheet != "" {
		parts = append(parts, "sheet: "+ec.Sheet)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
