package openglhelper

import (
	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/leterax/chunkworld/pkg/voxel"
)

// VertexArrayObject represents an OpenGL vertex array object (VAO) that stores vertex attribute configurations.
type VertexArrayObject struct {
	ID uint32
}

// NewVAO creates a new Vertex Array Object.
// It returns a pointer to a new VertexArrayObject.
func NewVAO() *VertexArrayObject {
	var vaoID uint32
	gl.GenVertexArrays(1, &vaoID)

	return &VertexArrayObject{
		ID: vaoID,
	}
}

// Bind binds the vertex array object.
func (vao *VertexArrayObject) Bind() {
	gl.BindVertexArray(vao.ID)
}

// Unbind unbinds the vertex array object.
func (vao *VertexArrayObject) Unbind() {
	gl.BindVertexArray(0)
}

// Delete releases the vertex array object and frees its resources.
func (vao *VertexArrayObject) Delete() {
	gl.DeleteVertexArrays(1, &vao.ID)
}

// SetVertexAttribPointer sets up a vertex attribute pointer and enables the attribute.
// This configures how OpenGL will interpret vertex data for a specific attribute.
func (vao *VertexArrayObject) SetVertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, xtype, normalized, stride, gl.PtrOffset(offset))
	gl.EnableVertexAttribArray(index)
}

// ChunkVertexArray binds the shared chunk vertex and index buffers with the chunk vertex layout
type ChunkVertexArray struct {
	*VertexArrayObject

	vertexBufferID uint32
	indexBufferID  uint32
}

// NewChunkVertexArray creates a vertex array over the shared chunk buffers
func NewChunkVertexArray(vertices, indices *BufferObject) *ChunkVertexArray {
	vao := &ChunkVertexArray{VertexArrayObject: NewVAO()}
	vao.Attach(vertices, indices)
	return vao
}

// Attach points the vertex array at the given buffers. It is a no-op when
// neither buffer was replaced since the last call, e.g. by Grow.
func (vao *ChunkVertexArray) Attach(vertices, indices *BufferObject) {
	if vao.vertexBufferID == vertices.ID && vao.indexBufferID == indices.ID {
		return
	}
	vao.Bind()

	gl.BindBuffer(gl.ARRAY_BUFFER, vertices.ID)
	// Position attribute (3 floats)
	vao.SetVertexAttribPointer(0, 3, gl.FLOAT, false, voxel.VertexSize, 0)
	// Texture coordinates attribute (2 floats)
	vao.SetVertexAttribPointer(1, 2, gl.FLOAT, false, voxel.VertexSize, 3*4)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, indices.ID)

	vao.Unbind()
	vao.vertexBufferID = vertices.ID
	vao.indexBufferID = indices.ID
}

// ScreenQuad is a unit quad made of two triangles, used for overlays
type ScreenQuad struct {
	*VertexArrayObject
	vbo *BufferObject
}

// NewScreenQuad uploads a unit quad with 2D positions in [0,1] and matching UVs
func NewScreenQuad() *ScreenQuad {
	vertices := []float32{
		// x, y, u, v
		0, 1, 0, 1,
		0, 0, 0, 0,
		1, 0, 1, 0,

		0, 1, 0, 1,
		1, 0, 1, 0,
		1, 1, 1, 1,
	}

	vao := NewVAO()
	vao.Bind()
	vbo := NewBufferObject(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), StaticDraw)
	vao.SetVertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, 0)
	vao.SetVertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, 2*4)
	vao.Unbind()

	return &ScreenQuad{VertexArrayObject: vao, vbo: vbo}
}

// Draw draws the quad with whatever program is bound
func (q *ScreenQuad) Draw() {
	q.Bind()
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	q.Unbind()
}

// Delete releases the quad's vertex array and buffer
func (q *ScreenQuad) Delete() {
	q.vbo.Delete()
	q.VertexArrayObject.Delete()
}
