package tabsniff

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/nao1215/tabsniff/domain/model"
)

// CompressionHandler defines the interface for decompressing a source stream
type CompressionHandler interface {
	// CreateReader wraps an io.Reader with a decompression reader if needed
	CreateReader(reader io.Reader) (io.Reader, func() error, error)
	// Extension returns the file extension for this compression type (e.g., ".gz")
	Extension() string
}

// compressionHandlerImpl implements the CompressionHandler interface
type compressionHandlerImpl struct {
	compressionType CompressionType
}

// CreateReader creates a decompression reader based on the compression type
func (h *compressionHandlerImpl) CreateReader(reader io.Reader) (io.Reader, func() error, error) {
	switch h.compressionType {
	case CompressionNone:
		return reader, func() error { return nil }, nil

	case CompressionGZ:
		gzReader, err := gzip.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case CompressionBZ2:
		// bzip2.NewReader doesn't need closing
		return bzip2.NewReader(reader), func() error { return nil }, nil

	case CompressionXZ:
		xzReader, err := xz.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		// xz.Reader doesn't have a Close method
		return xzReader, func() error { return nil }, nil

	case CompressionZSTD:
		decoder, err := zstd.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported compression type for reading: %v", h.compressionType)
	}
}

// Extension returns the file extension for this compression type
func (h *compressionHandlerImpl) Extension() string {
	return h.compressionType.Extension()
}

// NewCompressionHandler creates a new compression handler for the given compression type
func NewCompressionHandler(compressionType CompressionType) CompressionHandler {
	return &compressionHandlerImpl{
		compressionType: compressionType,
	}
}

// decompress sniffs the compression of r from its magic bytes (falling back to
// the name extension for empty input) and returns the decompressed stream
func decompress(r io.Reader, name string) (io.Reader, CompressionType, func() error, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(model.MagicLength) // short input is not an error here
	compression := model.DetectCompression(head, name)

	reader, cleanup, err := NewCompressionHandler(compression).CreateReader(br)
	if err != nil {
		return nil, compression, nil, err
	}
	return reader, compression, cleanup, nil
}
