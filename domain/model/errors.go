package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedQuoting is returned when a quoted field is still open at the end of input
	ErrMalformedQuoting = errors.New("malformed quoting")

	// ErrNoDialect is returned when no consistent dialect can be sniffed from a sample
	ErrNoDialect = errors.New("no consistent dialect found")

	// ErrNoColumns is returned when a sample holds no tabular data
	ErrNoColumns = errors.New("no columns found")

	// ErrUnknownColumnType is returned when a column type spelling is not recognized
	ErrUnknownColumnType = errors.New("unknown column type")

	// ErrUnknownStatus is returned when a status spelling is not recognized
	ErrUnknownStatus = errors.New("unknown status")

	// ErrUnsupportedCharset is returned when no decoder exists for a charset name
	ErrUnsupportedCharset = errors.New("unsupported charset")

	// ErrFormatMismatch is returned when a value does not match a strftime pattern
	ErrFormatMismatch = errors.New("value does not match format")

	// ErrTypeMismatch is returned when a value does not convert under a column type
	ErrTypeMismatch = errors.New("value does not match column type")
)

// QuoteError reports an unterminated quoted field.
type QuoteError struct {
	Line int // line where the quoted field started
}

// Error implements error
func (e *QuoteError) Error() string {
	return fmt.Sprintf("quoted field starting on line %d is never closed", e.Line)
}

// Unwrap makes errors.Is(err, ErrMalformedQuoting) hold
func (e *QuoteError) Unwrap() error {
	return ErrMalformedQuoting
}
