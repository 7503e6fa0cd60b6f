package tabsniff

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/nao1215/tabsniff/domain/model"
)

// workbookPart is the archive member that marks a ZIP file as an XLSX workbook
const workbookPart = "xl/workbook.xml"

// source is a readable tabular input: a file on disk, an in-memory byte
// slice, or a member of a ZIP archive. Every open starts from the beginning,
// so a source can be read again after inference.
type source struct {
	name   string
	path   string
	data   []byte
	parent *source
}

func pathSource(p string) *source {
	return &source{name: p, path: p}
}

func bytesSource(name string, data []byte) *source {
	return &source{name: name, data: data}
}

func (s *source) member(name string) *source {
	return &source{name: name, parent: s}
}

// String returns the name used in logs and errors
func (s *source) String() string {
	if s.parent != nil {
		return s.parent.String() + "!" + s.name
	}
	return s.name
}

// openRaw opens the stored bytes without decompression and reports their size
func (s *source) openRaw() (io.ReadCloser, int64, error) {
	switch {
	case s.parent != nil:
		data, err := s.parent.memberData(s.name)
		if err != nil {
			return nil, 0, err
		}
		return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
	case s.path != "":
		f, err := os.Open(s.path) //nolint:gosec // User-provided path is necessary for file operations
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, 0, fmt.Errorf("%w: %s", ErrFileNotFound, s.path)
			}
			return nil, 0, fmt.Errorf("failed to open file: %w", err)
		}
		info, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, 0, fmt.Errorf("failed to stat file: %w", err)
		}
		return f, info.Size(), nil
	default:
		return io.NopCloser(bytes.NewReader(s.data)), int64(len(s.data)), nil
	}
}

// stream is an opened and decompressed source
type stream struct {
	io.Reader
	compression CompressionType
	counter     *countingReader
	size        int64
	cleanup     func() error
	raw         io.Closer
}

// Progress returns the share of stored bytes consumed so far, in percent
func (st *stream) Progress() float64 {
	if st.size <= 0 {
		return 100
	}
	return min(100, float64(st.counter.n)*100/float64(st.size))
}

// Close releases the decompressor and the underlying file
func (st *stream) Close() error {
	var cleanupErr error
	if st.cleanup != nil {
		cleanupErr = st.cleanup()
	}
	if closeErr := st.raw.Close(); closeErr != nil && cleanupErr == nil {
		cleanupErr = closeErr
	}
	return cleanupErr
}

// countingReader counts the bytes read through it
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// open returns the decompressed content of the source
func (s *source) open() (*stream, error) {
	raw, size, err := s.openRaw()
	if err != nil {
		return nil, err
	}
	counter := &countingReader{r: raw}
	reader, compression, cleanup, err := decompress(counter, s.name)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	return &stream{
		Reader:      reader,
		compression: compression,
		counter:     counter,
		size:        size,
		cleanup:     cleanup,
		raw:         raw,
	}, nil
}

// readAll returns the whole decompressed content. Containers that need random
// access (ZIP, XLSX, Parquet) are read this way.
func (s *source) readAll() ([]byte, error) {
	st, err := s.open()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	data, err := io.ReadAll(st)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s, err)
	}
	return data, nil
}

// memberData returns the decompressed bytes of one archive member
func (s *source) memberData(name string) ([]byte, error) {
	zr, err := s.openZip()
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive member %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read archive member %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: archive member %s", ErrFileNotFound, name)
}

func (s *source) openZip() (*zip.Reader, error) {
	data, err := s.readAll()
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a readable archive: %w", ErrUnsupportedFormat, s, err)
	}
	return zr, nil
}

// detect classifies the decompressed content. For plain archives it also
// returns the tabular members in archive order.
func (s *source) detect() (model.FileType, []string, error) {
	st, err := s.open()
	if err != nil {
		return model.FileTypeDelimited, nil, err
	}
	head, _ := bufio.NewReader(st).Peek(model.MagicLength) // short input is not an error here
	_ = st.Close()

	fileType := model.DetectFileType(head, s.name)
	if fileType != model.FileTypeZip && fileType != model.FileTypeXLSX {
		return fileType, nil, nil
	}

	zr, err := s.openZip()
	if err != nil {
		return fileType, nil, err
	}
	var members []string
	for _, f := range zr.File {
		if f.Name == workbookPart {
			return model.FileTypeXLSX, nil, nil
		}
		if isArchiveTable(f) {
			members = append(members, f.Name)
		}
	}
	return model.FileTypeZip, members, nil
}

// isArchiveTable skips directories, hidden files and resource forks
func isArchiveTable(f *zip.File) bool {
	if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
		return false
	}
	base := path.Base(f.Name)
	return !strings.HasPrefix(base, ".") && model.IsTabularName(base)
}
