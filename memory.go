package tabsniff

import (
	"sync"
)

// Memory management constants
const (
	// Default capacity of pooled byte slices
	defaultByteSliceCapacity = 4 * 1024 // 4KB

	// Default maximum capacity kept in the pool
	defaultMemoryPoolSize = 1024 * 1024 // 1MB
)

// pooledByteSlice wraps []byte for pooling
type pooledByteSlice struct {
	data []byte
}

// MemoryPool manages reusable byte slices for sample reads, so that repeated
// inference on many sources does not allocate a fresh sample buffer each time.
//
// Buffers that grow beyond maxSize are discarded rather than pooled.
//
// Usage example:
//
//	pool := NewMemoryPool(1024 * 1024) // 1MB max buffer size
//	buffer := pool.GetByteBuffer(64 * 1024)
//	defer pool.PutByteBuffer(buffer)
//
// Thread Safety: All methods are safe for concurrent use by multiple goroutines.
type MemoryPool struct {
	bytePool sync.Pool
	maxSize  int
}

// NewMemoryPool creates a new memory pool with configurable max buffer size
func NewMemoryPool(maxSize int) *MemoryPool {
	if maxSize <= 0 {
		maxSize = defaultMemoryPoolSize
	}

	return &MemoryPool{
		maxSize: maxSize,
		bytePool: sync.Pool{
			New: func() any {
				return &pooledByteSlice{
					data: make([]byte, 0, defaultByteSliceCapacity),
				}
			},
		},
	}
}

// GetByteBuffer gets a zero-length byte buffer with at least the given capacity
func (mp *MemoryPool) GetByteBuffer(capacity int) []byte {
	pooled, ok := mp.bytePool.Get().(*pooledByteSlice)
	if !ok || cap(pooled.data) < capacity {
		return make([]byte, 0, max(capacity, defaultByteSliceCapacity))
	}
	return pooled.data[:0]
}

// PutByteBuffer returns a byte buffer to the pool if it's not too large
func (mp *MemoryPool) PutByteBuffer(buf []byte) {
	if cap(buf) <= mp.maxSize {
		mp.bytePool.Put(&pooledByteSlice{data: buf[:0]})
	}
}

// samplePool backs the sample buffers of every Parser
var samplePool = NewMemoryPool(4 * defaultMemoryPoolSize)
