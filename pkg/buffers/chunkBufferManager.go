package buffers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/leterax/chunkworld/pkg/voxel"
)

// ErrMisaligned is returned when a placement offset does not sit on an element boundary
var ErrMisaligned = errors.New("buffer offset not aligned to element size")

// DrawElementsIndirectCommand mirrors the OpenGL structure for indirect drawing.
type DrawElementsIndirectCommand struct {
	Count         uint32 // Number of indices for this chunk.
	InstanceCount uint32 // Always 1.
	FirstIndex    uint32 // Offset in the index buffer (in units of 4 bytes).
	BaseVertex    int32  // Offset in the vertex buffer (in units of one vertex).
	BaseInstance  uint32 // Slot of the chunk's translation.
}

// DrawElementsIndirectCommandSize is the byte size of one command
const DrawElementsIndirectCommandSize = 20

// ChunkAllocation is where one chunk's mesh lives in the shared buffers
type ChunkAllocation struct {
	Vertices   BufferRegion
	Indices    BufferRegion
	IndexCount int
}

// Empty reports whether the allocation holds no geometry
func (a ChunkAllocation) Empty() bool {
	return a.IndexCount == 0
}

// Command returns the indirect draw command for this allocation
func (a ChunkAllocation) Command(baseInstance uint32) DrawElementsIndirectCommand {
	return DrawElementsIndirectCommand{
		Count:         uint32(a.IndexCount),
		InstanceCount: 1,
		FirstIndex:    uint32(a.Indices.Offset / voxel.IndexSize),
		BaseVertex:    int32(a.Vertices.Offset / voxel.VertexSize),
		BaseInstance:  baseInstance,
	}
}

// Stats summarizes buffer usage
type Stats struct {
	Chunks          int
	VertexUsed      int
	VertexFree      int
	VertexFragments int
	IndexUsed       int
	IndexFree       int
	IndexFragments  int
}

// ChunkBufferManager is responsible for placing chunk meshes in the shared
// vertex and index buffers. Each chunk gets one vertex range and one index
// range; replacing or removing a chunk returns its ranges to the free lists.
type ChunkBufferManager struct {
	vertexBuffer Backend
	indexBuffer  Backend

	vertices *BufferManager
	indices  *BufferManager

	allocations map[voxel.ChunkCoord]ChunkAllocation

	// Free lists are merged after this many releases
	coalesceEvery         int
	releasesSinceCoalesce int
}

// NewChunkBufferManager creates a manager over the given backends. Only whole
// elements are tracked, so a trailing partial vertex or index is never handed out.
func NewChunkBufferManager(vertexBuffer, indexBuffer Backend, coalesceEvery int) *ChunkBufferManager {
	return &ChunkBufferManager{
		vertexBuffer:  vertexBuffer,
		indexBuffer:   indexBuffer,
		vertices:      NewBufferManager(alignDown(vertexBuffer.Len(), voxel.VertexSize)),
		indices:       NewBufferManager(alignDown(indexBuffer.Len(), voxel.IndexSize)),
		allocations:   make(map[voxel.ChunkCoord]ChunkAllocation),
		coalesceEvery: coalesceEvery,
	}
}

func alignDown(n, size int) int {
	return n - n%size
}

// Upload places the mesh of a chunk, replacing any previous placement.
// An empty mesh removes the chunk's ranges and yields an empty allocation.
// On ErrOutOfSpace the manager tries once more after merging free regions
// (and, for a replacement, after giving back the old ranges).
func (m *ChunkBufferManager) Upload(coord voxel.ChunkCoord, mesh *voxel.Mesh) (ChunkAllocation, error) {
	old, replacing := m.allocations[coord]

	if mesh.Empty() {
		m.Remove(coord)
		return ChunkAllocation{}, nil
	}

	alloc, err := m.place(mesh)
	if errors.Is(err, ErrOutOfSpace) {
		if replacing {
			m.Remove(coord)
			replacing = false
		}
		m.coalesce()
		alloc, err = m.place(mesh)
	}
	if err != nil {
		return ChunkAllocation{}, fmt.Errorf("upload chunk %v: %w", coord, err)
	}

	if replacing {
		m.release(old)
	}
	m.allocations[coord] = alloc
	return alloc, nil
}

// place allocates both ranges and writes the mesh. Nothing stays allocated on failure.
func (m *ChunkBufferManager) place(mesh *voxel.Mesh) (ChunkAllocation, error) {
	vertexBytes := mesh.VertexBytes()
	indexBytes := mesh.IndexBytes()

	vertexOffset, err := m.vertices.Allocate(len(vertexBytes))
	if err != nil {
		return ChunkAllocation{}, fmt.Errorf("vertex buffer: %w", err)
	}
	alloc := ChunkAllocation{
		Vertices:   BufferRegion{Offset: vertexOffset, Size: len(vertexBytes)},
		IndexCount: mesh.IndexCount(),
	}

	indexOffset, err := m.indices.Allocate(len(indexBytes))
	if err != nil {
		m.vertices.Release(alloc.Vertices)
		return ChunkAllocation{}, fmt.Errorf("index buffer: %w", err)
	}
	alloc.Indices = BufferRegion{Offset: indexOffset, Size: len(indexBytes)}

	if vertexOffset%voxel.VertexSize != 0 || indexOffset%voxel.IndexSize != 0 {
		m.releaseRegions(alloc)
		return ChunkAllocation{}, fmt.Errorf("%w: vertex %d, index %d", ErrMisaligned, vertexOffset, indexOffset)
	}

	if err := m.vertexBuffer.WriteAt(vertexOffset, vertexBytes); err != nil {
		m.releaseRegions(alloc)
		return ChunkAllocation{}, fmt.Errorf("write vertices: %w", err)
	}
	if err := m.indexBuffer.WriteAt(indexOffset, indexBytes); err != nil {
		m.releaseRegions(alloc)
		return ChunkAllocation{}, fmt.Errorf("write indices: %w", err)
	}
	return alloc, nil
}

// Remove gives back the ranges of a chunk. It reports whether the chunk had any.
func (m *ChunkBufferManager) Remove(coord voxel.ChunkCoord) bool {
	alloc, exists := m.allocations[coord]
	if !exists {
		return false
	}
	delete(m.allocations, coord)
	m.release(alloc)
	return true
}

func (m *ChunkBufferManager) releaseRegions(alloc ChunkAllocation) {
	m.vertices.Release(alloc.Vertices)
	m.indices.Release(alloc.Indices)
}

func (m *ChunkBufferManager) release(alloc ChunkAllocation) {
	m.releaseRegions(alloc)
	m.releasesSinceCoalesce++
	if m.coalesceEvery > 0 && m.releasesSinceCoalesce >= m.coalesceEvery {
		m.coalesce()
	}
}

func (m *ChunkBufferManager) coalesce() {
	m.vertices.Coalesce()
	m.indices.Coalesce()
	m.releasesSinceCoalesce = 0
}

// Coalesce merges adjacent regions in both buffers
func (m *ChunkBufferManager) Coalesce() {
	m.coalesce()
}

// Allocation returns where a chunk currently lives
func (m *ChunkBufferManager) Allocation(coord voxel.ChunkCoord) (ChunkAllocation, bool) {
	alloc, ok := m.allocations[coord]
	return alloc, ok
}

// Grow enlarges the backends and registers the new tails as free.
// A size of 0 leaves that buffer alone.
func (m *ChunkBufferManager) Grow(vertexBytes, indexBytes int) error {
	if err := growBackend(m.vertexBuffer, m.vertices, vertexBytes, voxel.VertexSize); err != nil {
		return fmt.Errorf("grow vertex buffer: %w", err)
	}
	if err := growBackend(m.indexBuffer, m.indices, indexBytes, voxel.IndexSize); err != nil {
		return fmt.Errorf("grow index buffer: %w", err)
	}
	return nil
}

func growBackend(b Backend, regions *BufferManager, size, elem int) error {
	if size == 0 {
		return nil
	}
	tracked := regions.Capacity()
	if size <= b.Len() {
		return fmt.Errorf("new size %d does not exceed current %d", size, b.Len())
	}
	if err := b.Grow(size); err != nil {
		return err
	}
	if tail := alignDown(size, elem) - tracked; tail > 0 {
		regions.AddFreeRegion(tracked, tail)
		regions.CoalesceFree()
	}
	return nil
}

// DrawCommands returns one indirect command per listed chunk that has geometry.
// BaseInstance is the chunk's position in coords, so the caller can index
// a parallel array of translations with it.
func (m *ChunkBufferManager) DrawCommands(coords []voxel.ChunkCoord) []DrawElementsIndirectCommand {
	commands := make([]DrawElementsIndirectCommand, 0, len(coords))
	for i, coord := range coords {
		alloc, ok := m.allocations[coord]
		if !ok || alloc.Empty() {
			continue
		}
		commands = append(commands, alloc.Command(uint32(i)))
	}
	return commands
}

// Chunks returns the coordinates with live allocations, ordered by coordinate
func (m *ChunkBufferManager) Chunks() []voxel.ChunkCoord {
	coords := make([]voxel.ChunkCoord, 0, len(m.allocations))
	for coord := range m.allocations {
		coords = append(coords, coord)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}

// VertexRegions exposes the vertex allocator for inspection
func (m *ChunkBufferManager) VertexRegions() *BufferManager {
	return m.vertices
}

// IndexRegions exposes the index allocator for inspection
func (m *ChunkBufferManager) IndexRegions() *BufferManager {
	return m.indices
}

// Stats returns a summary of both buffers
func (m *ChunkBufferManager) Stats() Stats {
	return Stats{
		Chunks:          len(m.allocations),
		VertexUsed:      m.vertices.UsedBytes(),
		VertexFree:      m.vertices.FreeBytes(),
		VertexFragments: len(m.vertices.free),
		IndexUsed:       m.indices.UsedBytes(),
		IndexFree:       m.indices.FreeBytes(),
		IndexFragments:  len(m.indices.free),
	}
}
