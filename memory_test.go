package tabsniff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMemoryPool(t *testing.T) {
	t.Parallel()

	t.Run("default max size", func(t *testing.T) {
		t.Parallel()
		pool := NewMemoryPool(0)
		assert.Equal(t, 1024*1024, pool.maxSize, "should use default max size")
	})

	t.Run("custom max size", func(t *testing.T) {
		t.Parallel()
		pool := NewMemoryPool(512 * 1024)
		assert.Equal(t, 512*1024, pool.maxSize, "should use custom max size")
	})
}

func TestMemoryPool_ByteBuffer(t *testing.T) {
	t.Parallel()

	t.Run("get and put byte buffer", func(t *testing.T) {
		t.Parallel()
		pool := NewMemoryPool(1024 * 1024)

		buf := pool.GetByteBuffer(64 * 1024)
		assert.Empty(t, buf, "buffer length should be 0")
		assert.GreaterOrEqual(t, cap(buf), 64*1024, "buffer should have the requested capacity")

		buf = append(buf, "test data"...)
		pool.PutByteBuffer(buf)

		buf2 := pool.GetByteBuffer(16)
		assert.Empty(t, buf2, "reused buffer length should be reset to 0")
		assert.GreaterOrEqual(t, cap(buf2), 16)
	})

	t.Run("small request gets default capacity", func(t *testing.T) {
		t.Parallel()
		pool := NewMemoryPool(0)
		buf := pool.GetByteBuffer(1)
		assert.GreaterOrEqual(t, cap(buf), defaultByteSliceCapacity)
	})

	t.Run("reject oversized buffer", func(t *testing.T) {
		t.Parallel()
		pool := NewMemoryPool(100)

		pool.PutByteBuffer(make([]byte, 0, 1<<20))
		buf := pool.GetByteBuffer(10)
		assert.Equal(t, defaultByteSliceCapacity, cap(buf), "oversized buffer should not be pooled")
	})
}

func TestSamplePool_HoldsDefaultSample(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	buf := samplePool.GetByteBuffer(cfg.SampleBytes)
	defer samplePool.PutByteBuffer(buf)

	assert.GreaterOrEqual(t, cap(buf), cfg.SampleBytes)
	assert.LessOrEqual(t, cfg.SampleBytes, samplePool.maxSize, "default samples should be pooled")
}
