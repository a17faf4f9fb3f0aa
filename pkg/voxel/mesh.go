package voxel

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// VertexSize is the byte size of one vertex: position 3xf32 then uv 2xf32
	VertexSize = 20
	// IndexSize is the byte size of one u32 index
	IndexSize = 4
)

// Vertex is a chunk-local position with its atlas texture coordinate
type Vertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
}

// Mesh represents a list of quads as vertices plus a triangle index list
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32

	// next vertex index handed to the following face
	nextVertex uint32
}

// NewMesh creates a new empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		Vertices: make([]Vertex, 0),
		Indices:  make([]uint32, 0),
	}
}

// AddFace appends a face translated to offset with its UVs mapped into the atlas cell of its texture
func (m *Mesh) AddFace(face Face, offset mgl32.Vec3, atlasWidth int, cellSize float32) {
	cell := mgl32.Vec2{
		float32(int(face.Texture) % atlasWidth),
		float32(int(face.Texture) / atlasWidth),
	}
	for i, v := range face.Vertices {
		m.Vertices = append(m.Vertices, Vertex{
			Position: v.Add(offset),
			UV:       cell.Mul(cellSize).Add(face.UVs[i].Mul(cellSize)),
		})
	}
	for _, idx := range face.Indices {
		m.Indices = append(m.Indices, m.nextVertex+idx)
	}
	m.nextVertex += uint32(len(face.Vertices))
}

// Empty reports whether the mesh has no geometry
func (m *Mesh) Empty() bool {
	return len(m.Indices) == 0
}

// QuadCount returns the number of faces in the mesh
func (m *Mesh) QuadCount() int {
	return len(m.Vertices) / 4
}

// IndexCount returns the number of indices in the mesh
func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

// VertexBytesLen returns the size of the encoded vertex data
func (m *Mesh) VertexBytesLen() int {
	return len(m.Vertices) * VertexSize
}

// IndexBytesLen returns the size of the encoded index data
func (m *Mesh) IndexBytesLen() int {
	return len(m.Indices) * IndexSize
}

// VertexBytes encodes the vertices in the renderer's little-endian 20-byte layout
func (m *Mesh) VertexBytes() []byte {
	out := make([]byte, m.VertexBytesLen())
	for i, v := range m.Vertices {
		b := out[i*VertexSize:]
		binary.LittleEndian.PutUint32(b[0:], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Position[1]))
		binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Position[2]))
		binary.LittleEndian.PutUint32(b[12:], math.Float32bits(v.UV[0]))
		binary.LittleEndian.PutUint32(b[16:], math.Float32bits(v.UV[1]))
	}
	return out
}

// IndexBytes encodes the indices as little-endian u32
func (m *Mesh) IndexBytes() []byte {
	out := make([]byte, m.IndexBytesLen())
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(out[i*IndexSize:], idx)
	}
	return out
}
