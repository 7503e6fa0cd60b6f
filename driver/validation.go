package driver

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nao1215/tabsniff/domain/model"
)

// MaxFilesPerDSN defines the maximum number of paths allowed in one data source name
const MaxFilesPerDSN = 1000

// MaxColumnCount defines the maximum number of columns allowed in a table
const MaxColumnCount = 2000

// MaxValueLength defines the maximum length of a single text value
const MaxValueLength = 65536

var (
	// ErrTooManyFiles is returned when a data source name lists too many paths
	ErrTooManyFiles = errors.New("too many files in data source name")

	// ErrTooManyColumns is returned when a file has too many columns
	ErrTooManyColumns = errors.New("too many columns")

	// ErrInvalidPath is returned when a path is invalid or potentially dangerous
	ErrInvalidPath = errors.New("invalid or dangerous path")

	// ErrInvalidIdentifier is returned when an SQL identifier is invalid
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")
)

// ValidatePath performs comprehensive path validation for security
func ValidatePath(path string) error {
	// Check for empty or whitespace-only paths
	if strings.TrimSpace(path) == "" {
		return ErrInvalidPath
	}

	// Check for null byte injection
	if strings.Contains(path, "\x00") {
		return ErrInvalidPath
	}

	// Check for path traversal attempts - but allow legitimate relative paths
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") && !isLegitimateRelativePath(path) {
		return ErrInvalidPath
	}

	// Check for absolute paths to system directories (Unix-like systems)
	systemDirs := []string{"/etc/", "/proc/", "/sys/", "/dev/", "/root/", "/boot/"}
	lowerPath := strings.ToLower(path)
	for _, sysDir := range systemDirs {
		if strings.HasPrefix(lowerPath, sysDir) {
			return ErrInvalidPath
		}
	}

	// Check for Windows system directories (handle both forward and backward slashes)
	windowsDirs := []string{
		"c:\\windows\\", "c:/windows/",
		"c:\\program files", "c:/program files",
		"c:\\users\\administrator", "c:/users/administrator",
		"\\\\?\\", // UNC paths
		"\\\\",    // Network paths
	}
	for _, winDir := range windowsDirs {
		if strings.HasPrefix(lowerPath, winDir) {
			return ErrInvalidPath
		}
	}

	// Check for Windows reserved names
	reservedNames := []string{"con", "prn", "aux", "nul", "com1", "com2", "com3", "com4", "com5", "com6", "com7", "com8", "com9", "lpt1", "lpt2", "lpt3", "lpt4", "lpt5", "lpt6", "lpt7", "lpt8", "lpt9"}
	baseName := strings.ToLower(model.TrimCompressionExtension(path))
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	for _, reserved := range reservedNames {
		if baseName == reserved {
			return ErrInvalidPath
		}
	}

	return nil
}

// ValidateColumnCount checks if the number of columns is within acceptable limits
func ValidateColumnCount(columnCount int) error {
	if columnCount > MaxColumnCount {
		return ErrTooManyColumns
	}
	return nil
}

// ValidateFileCount checks if the number of files is within acceptable limits
func ValidateFileCount(fileCount int) error {
	if fileCount > MaxFilesPerDSN {
		return ErrTooManyFiles
	}
	return nil
}

// ValidateFieldValue validates and sanitizes field values
func ValidateFieldValue(value string) string {
	// Truncate extremely long values
	if len(value) > MaxValueLength {
		value = value[:MaxValueLength]
	}

	// Remove null bytes
	value = strings.ReplaceAll(value, "\x00", "")

	return value
}

// ValidateIdentifier checks that a table or column name can be quoted as [name]
func ValidateIdentifier(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "]\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// isLegitimateRelativePath checks if a path containing ".." is a legitimate relative path
func isLegitimateRelativePath(path string) bool {
	// Clean the path and check if it's trying to escape the current directory structure
	cleanPath := filepath.Clean(path)

	// If the cleaned path starts with ".." or contains multiple consecutive "..", it's suspicious
	// Handle both Unix and Windows path separators
	if strings.HasPrefix(cleanPath, "../") || strings.HasPrefix(cleanPath, "..\\") {
		// Count how many levels up it goes
		// Use proper cross-platform path splitting
		parts := strings.FieldsFunc(cleanPath, func(c rune) bool {
			return c == '/' || c == '\\'
		})
		upLevels := 0
		for _, part := range parts {
			if part == ".." {
				upLevels++
			} else if part != "." && part != "" {
				break
			}
		}
		// Allow only reasonable number of parent directory references (e.g., max 3 levels up)
		return upLevels <= 3
	}

	return true
}
