package tabsniff

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// validator checks Parser inputs before any source is opened
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validatePath validates a single file path
func (v *validator) validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: path does not exist: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to stat path %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}
	return nil
}

// validateBytes validates an in-memory input. Empty data is accepted and
// later reported as an invalid file by inference.
func (v *validator) validateBytes(name string, data []byte) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name must be specified for byte input")
	}
	if data == nil {
		return errors.New("data cannot be nil")
	}
	return nil
}

// validateConfig validates the parser configuration
func (v *validator) validateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
