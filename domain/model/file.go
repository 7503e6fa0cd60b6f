package model

import (
	"bytes"
	"path/filepath"
	"strings"
)

// FileType is the container format of a source after decompression.
type FileType int

const (
	// FileTypeDelimited represents delimited text (CSV, TSV, and similar)
	FileTypeDelimited FileType = iota
	// FileTypeXLSX represents an Excel workbook
	FileTypeXLSX
	// FileTypeParquet represents an Apache Parquet file
	FileTypeParquet
	// FileTypeZip represents a ZIP archive of tabular files
	FileTypeZip
)

// String returns a short name of the file type
func (ft FileType) String() string {
	switch ft {
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeParquet:
		return "parquet"
	case FileTypeZip:
		return "zip"
	default:
		return "delimited"
	}
}

// CompressionType is the stream compression wrapping a source.
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// String returns the string representation of CompressionType
func (c CompressionType) String() string {
	switch c {
	case CompressionGZ:
		return "gz"
	case CompressionBZ2:
		return "bz2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGZ:
		return ExtGZ
	case CompressionBZ2:
		return ExtBZ2
	case CompressionXZ:
		return ExtXZ
	case CompressionZSTD:
		return ExtZSTD
	default:
		return ""
	}
}

const (
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTSV is the TSV file extension
	ExtTSV = ".tsv"
	// ExtTXT is the plain text file extension
	ExtTXT = ".txt"
	// ExtXLSX is the Excel workbook extension
	ExtXLSX = ".xlsx"
	// ExtParquet is the Parquet file extension
	ExtParquet = ".parquet"
	// ExtZip is the ZIP archive extension
	ExtZip = ".zip"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

var (
	magicGZ      = []byte{0x1F, 0x8B}
	magicBZ2     = []byte("BZh")
	magicXZ      = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	magicZSTD    = []byte{0x28, 0xB5, 0x2F, 0xFD}
	magicZip     = []byte("PK\x03\x04")
	magicParquet = []byte("PAR1")
)

// MagicLength is the number of leading bytes needed by the Detect functions
const MagicLength = 8

// DetectCompression identifies stream compression from leading bytes,
// falling back to the file name extension
func DetectCompression(head []byte, name string) CompressionType {
	switch {
	case bytes.HasPrefix(head, magicGZ):
		return CompressionGZ
	case bytes.HasPrefix(head, magicBZ2):
		return CompressionBZ2
	case bytes.HasPrefix(head, magicXZ):
		return CompressionXZ
	case bytes.HasPrefix(head, magicZSTD):
		return CompressionZSTD
	}
	if len(head) > 0 {
		return CompressionNone
	}
	lower := strings.ToLower(name)
	for _, c := range []CompressionType{CompressionGZ, CompressionBZ2, CompressionXZ, CompressionZSTD} {
		if strings.HasSuffix(lower, c.Extension()) {
			return c
		}
	}
	return CompressionNone
}

// DetectFileType identifies the container format of decompressed data from
// its leading bytes. ZIP archives are refined by the caller into XLSX or
// plain archives once the member list is known.
func DetectFileType(head []byte, name string) FileType {
	switch {
	case bytes.HasPrefix(head, magicParquet):
		return FileTypeParquet
	case bytes.HasPrefix(head, magicZip):
		if strings.EqualFold(filepath.Ext(TrimCompressionExtension(name)), ExtXLSX) {
			return FileTypeXLSX
		}
		return FileTypeZip
	}
	return FileTypeDelimited
}

// TrimCompressionExtension removes a trailing compression extension from a name
func TrimCompressionExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// IsTabularName reports whether a file name looks like a source this package reads
func IsTabularName(name string) bool {
	switch strings.ToLower(filepath.Ext(TrimCompressionExtension(name))) {
	case ExtCSV, ExtTSV, ExtTXT, ExtXLSX, ExtParquet:
		return true
	}
	return false
}
