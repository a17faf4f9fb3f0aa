package game

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/leterax/chunkworld/pkg/buffers"
	"github.com/leterax/chunkworld/pkg/voxel"
)

// ChunkState is everything the world keeps for one active chunk
type ChunkState struct {
	Coord voxel.ChunkCoord
	Grid  *voxel.Grid
	Mesh  *voxel.Mesh

	// Alloc is only meaningful while Uploaded is true
	Alloc    buffers.ChunkAllocation
	Uploaded bool

	Visible bool
	// Edited is set once a voxel of the grid differs from generated terrain
	Edited bool
}

// Drawable reports whether the renderer should issue a draw for this chunk
func (s *ChunkState) Drawable() bool {
	return s.Visible && s.Uploaded && !s.Alloc.Empty()
}

// RenderData is what the renderer needs to draw one chunk
type RenderData struct {
	Coord       voxel.ChunkCoord
	Mesh        *voxel.Mesh
	Alloc       buffers.ChunkAllocation
	Translation mgl32.Vec3
}

// VertexBytes returns the encoded vertex data
func (d RenderData) VertexBytes() []byte { return d.Mesh.VertexBytes() }

// VertexOffset returns the byte offset of the vertices in the vertex buffer
func (d RenderData) VertexOffset() int { return d.Alloc.Vertices.Offset }

// IndexBytes returns the encoded index data
func (d RenderData) IndexBytes() []byte { return d.Mesh.IndexBytes() }

// IndexOffset returns the byte offset of the indices in the index buffer
func (d RenderData) IndexOffset() int { return d.Alloc.Indices.Offset }

// IndexCount returns how many indices the draw consumes
func (d RenderData) IndexCount() int { return d.Alloc.IndexCount }

// Stats counts what the world has done so far
type Stats struct {
	Active         int
	Visible        int
	PendingUploads int
	Archived       int

	Generated int
	Restored  int
	Meshed    int
	Reclaimed int
}
