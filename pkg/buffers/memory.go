package buffers

import (
	"fmt"
)

// Backend is the linear storage a BufferManager hands out offsets into.
// The OpenGL buffer objects in internal/openglhelper implement it, as does MemoryBuffer.
type Backend interface {
	// WriteAt copies data into the buffer starting at offset
	WriteAt(offset int, data []byte) error
	// Grow enlarges the buffer to size bytes, preserving its contents
	Grow(size int) error
	// Len returns the buffer size in bytes
	Len() int
}

// MemoryBuffer is a CPU-side Backend, used headless and in tests
type MemoryBuffer struct {
	data   []byte
	writes int
}

// NewMemoryBuffer creates a zeroed buffer of size bytes
func NewMemoryBuffer(size int) *MemoryBuffer {
	return &MemoryBuffer{data: make([]byte, size)}
}

// WriteAt implements Backend
func (b *MemoryBuffer) WriteAt(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("write of %d bytes at %d exceeds buffer of %d bytes", len(data), offset, len(b.data))
	}
	copy(b.data[offset:], data)
	b.writes++
	return nil
}

// Grow implements Backend
func (b *MemoryBuffer) Grow(size int) error {
	if size < len(b.data) {
		return fmt.Errorf("cannot shrink buffer from %d to %d bytes", len(b.data), size)
	}
	grown := make([]byte, size)
	copy(grown, b.data)
	b.data = grown
	return nil
}

// Len implements Backend
func (b *MemoryBuffer) Len() int {
	return len(b.data)
}

// Bytes returns the buffer contents in [offset, offset+size)
func (b *MemoryBuffer) Bytes(offset, size int) []byte {
	return b.data[offset : offset+size]
}

// Writes returns how many WriteAt calls succeeded
func (b *MemoryBuffer) Writes() int {
	return b.writes
}
