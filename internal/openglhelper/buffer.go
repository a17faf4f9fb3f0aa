// Package openglhelper provides utilities for working with OpenGL buffers and other resources.
// It wraps the low-level OpenGL functions in a more Go-friendly API.
package openglhelper

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/leterax/chunkworld/pkg/buffers"
)

// BufferObject represents an OpenGL buffer object (VBO, EBO, SSBO, etc.)
// It provides a higher-level abstraction over raw OpenGL buffer IDs and operations.
// It implements buffers.Backend, so chunk meshes can be placed in it directly.
type BufferObject struct {
	ID    uint32
	Type  uint32 // GL_ARRAY_BUFFER, GL_ELEMENT_ARRAY_BUFFER, GL_SHADER_STORAGE_BUFFER, etc.
	Size  int    // Size of the buffer in bytes
	Usage uint32 // GL_STATIC_DRAW, GL_DYNAMIC_DRAW, etc.
}

// BufferUsage represents different buffer usage patterns for OpenGL buffers.
type BufferUsage uint32

const (
	// StaticDraw indicates buffer contents will be specified once and used many times for drawing
	StaticDraw BufferUsage = gl.STATIC_DRAW
	// DynamicDraw indicates buffer contents will be changed frequently and used many times for drawing
	DynamicDraw BufferUsage = gl.DYNAMIC_DRAW
	// StreamDraw indicates buffer contents will be specified once and used a few times for drawing
	StreamDraw BufferUsage = gl.STREAM_DRAW
)

// NewBufferObject creates a general buffer object with the specified parameters.
// It returns a new BufferObject initialized with the given type, size, data, and usage.
func NewBufferObject(bufferType uint32, sizeInBytes int, data unsafe.Pointer, usage BufferUsage) *BufferObject {
	var bufferID uint32
	gl.GenBuffers(1, &bufferID)

	buffer := &BufferObject{
		ID:    bufferID,
		Type:  bufferType,
		Size:  sizeInBytes,
		Usage: uint32(usage),
	}

	buffer.Bind()
	gl.BufferData(bufferType, sizeInBytes, data, uint32(usage))

	return buffer
}

// Bind binds the buffer object to its type target.
func (bo *BufferObject) Bind() {
	gl.BindBuffer(bo.Type, bo.ID)
}

// Unbind unbinds the buffer object from its type target.
func (bo *BufferObject) Unbind() {
	gl.BindBuffer(bo.Type, 0)
}

// BindBase binds a buffer to an indexed buffer target.
// Used for shader storage buffers, uniform buffers, etc.
func (bo *BufferObject) BindBase(index uint32) {
	gl.BindBufferBase(bo.Type, index, bo.ID)
}

// UpdateSubData updates a portion of the buffer with new data.
// The offset is in bytes from the start of the buffer.
func (bo *BufferObject) UpdateSubData(offset int, size int, data unsafe.Pointer) {
	bo.Bind()
	gl.BufferSubData(bo.Type, offset, size, data)
}

// WriteAt copies data into the buffer at a byte offset
func (bo *BufferObject) WriteAt(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > bo.Size {
		return fmt.Errorf("write of %d bytes at %d exceeds buffer of %d bytes", len(data), offset, bo.Size)
	}
	if len(data) == 0 {
		return nil
	}
	bo.UpdateSubData(offset, len(data), gl.Ptr(data))
	return nil
}

// Grow replaces the buffer storage with a larger one and copies the old contents over.
// The buffer ID changes, so vertex arrays referencing it must be re-attached.
func (bo *BufferObject) Grow(size int) error {
	if size < bo.Size {
		return fmt.Errorf("cannot shrink buffer from %d to %d bytes", bo.Size, size)
	}
	if size == bo.Size {
		return nil
	}

	var grown uint32
	gl.GenBuffers(1, &grown)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, grown)
	gl.BufferData(gl.COPY_WRITE_BUFFER, size, nil, bo.Usage)

	gl.BindBuffer(gl.COPY_READ_BUFFER, bo.ID)
	gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, bo.Size)

	gl.DeleteBuffers(1, &bo.ID)
	bo.ID = grown
	bo.Size = size
	return nil
}

// Len returns the buffer size in bytes
func (bo *BufferObject) Len() int {
	return bo.Size
}

// Delete releases the buffer object and frees its resources.
func (bo *BufferObject) Delete() {
	gl.DeleteBuffers(1, &bo.ID)
}

// NewIndirectBuffer creates a buffer for multi-draw indirect commands.
// Returns a new buffer object configured for indirect drawing commands.
func NewIndirectBuffer(maxCommands int, usage BufferUsage) *BufferObject {
	sizeInBytes := maxCommands * buffers.DrawElementsIndirectCommandSize

	return NewBufferObject(gl.DRAW_INDIRECT_BUFFER, sizeInBytes, nil, usage)
}

// UpdateIndirectCommands uploads draw commands, growing the buffer when they do not fit.
func (bo *BufferObject) UpdateIndirectCommands(commands []buffers.DrawElementsIndirectCommand) error {
	if bo.Type != gl.DRAW_INDIRECT_BUFFER {
		return fmt.Errorf("buffer %d is not an indirect buffer", bo.ID)
	}
	if len(commands) == 0 {
		return nil
	}

	sizeInBytes := len(commands) * buffers.DrawElementsIndirectCommandSize
	if sizeInBytes > bo.Size {
		if err := bo.Grow(sizeInBytes * 2); err != nil {
			return err
		}
	}
	bo.UpdateSubData(0, sizeInBytes, gl.Ptr(commands))
	return nil
}

// UpdateStorage uploads a slice to a shader storage buffer, growing it when needed.
// T must be a fixed-size value type such as mgl32.Vec4.
func UpdateStorage[T any](bo *BufferObject, values []T) error {
	if len(values) == 0 {
		return nil
	}
	var zero T
	sizeInBytes := len(values) * int(unsafe.Sizeof(zero))
	if sizeInBytes > bo.Size {
		if err := bo.Grow(sizeInBytes * 2); err != nil {
			return err
		}
	}
	bo.UpdateSubData(0, sizeInBytes, gl.Ptr(values))
	return nil
}

// MultiDrawElementsIndirect is a convenience function for drawing multiple batches with a single call.
// The mode parameter specifies the primitive type (e.g., gl.TRIANGLES).
// The indexType parameter specifies the type of indices (e.g., gl.UNSIGNED_INT).
// The commandCount parameter specifies the number of draw commands to execute.
func MultiDrawElementsIndirect(mode uint32, indexType uint32, commandCount int) {
	gl.MultiDrawElementsIndirect(mode, indexType, nil, int32(commandCount), 0)
}
