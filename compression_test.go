package tabsniff

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionHandler(t *testing.T) {
	t.Parallel()

	plain := []byte("id,name\n1,Alice\n")

	tests := []struct {
		name            string
		compressionType CompressionType
		extension       string
		data            []byte
	}{
		{name: "No compression", compressionType: CompressionNone, extension: "", data: plain},
		{name: "Gzip compression", compressionType: CompressionGZ, extension: ".gz", data: gzipBytes(t, plain)},
		{name: "XZ compression", compressionType: CompressionXZ, extension: ".xz", data: xzBytes(t, plain)},
		{name: "ZSTD compression", compressionType: CompressionZSTD, extension: ".zst", data: zstdBytes(t, plain)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := NewCompressionHandler(tt.compressionType)
			assert.Equal(t, tt.extension, handler.Extension())

			reader, cleanup, err := handler.CreateReader(bytes.NewReader(tt.data))
			require.NoError(t, err)
			defer func() { assert.NoError(t, cleanup()) }()

			got, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Equal(t, plain, got)
		})
	}
}

func TestCompressionHandler_InvalidData(t *testing.T) {
	t.Parallel()

	for _, ct := range []CompressionType{CompressionGZ, CompressionXZ} {
		_, _, err := NewCompressionHandler(ct).CreateReader(strings.NewReader("not compressed"))
		assert.Error(t, err, ct.String())
	}
}

func TestDecompress(t *testing.T) {
	t.Parallel()

	plain := []byte(usersCSV)

	tests := []struct {
		name     string
		fileName string
		data     []byte
		want     CompressionType
	}{
		{name: "plain text", fileName: "users.csv", data: plain, want: CompressionNone},
		{name: "gzip by magic bytes", fileName: "users.csv", data: gzipBytes(t, plain), want: CompressionGZ},
		{name: "zstd by magic bytes", fileName: "users.dat", data: zstdBytes(t, plain), want: CompressionZSTD},
		{name: "xz by magic bytes", fileName: "users", data: xzBytes(t, plain), want: CompressionXZ},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reader, compression, cleanup, err := decompress(bytes.NewReader(tt.data), tt.fileName)
			require.NoError(t, err)
			defer cleanup()

			assert.Equal(t, tt.want, compression)
			got, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Equal(t, plain, got)
		})
	}

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		reader, compression, cleanup, err := decompress(bytes.NewReader(nil), "empty.csv")
		require.NoError(t, err)
		defer cleanup()

		assert.Equal(t, CompressionNone, compression)
		got, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
