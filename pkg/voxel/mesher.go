package voxel

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NeighbourSource looks up the grid of an active chunk. Absent chunks read as air.
type NeighbourSource interface {
	GridAt(coord ChunkCoord) (*Grid, bool)
}

// Mesher turns chunk grids into face-culled meshes, one quad per visible voxel face
type Mesher struct {
	catalog *Catalog
}

// NewMesher creates a mesher for the given catalog
func NewMesher(catalog *Catalog) *Mesher {
	return &Mesher{catalog: catalog}
}

// Catalog returns the catalog the mesher resolves ids against
func (m *Mesher) Catalog() *Catalog {
	return m.catalog
}

// Neighbours collects the grids adjacent to coord from src
func Neighbours(coord ChunkCoord, src NeighbourSource) DirectionMap[*Grid] {
	var out DirectionMap[*Grid]
	if src == nil {
		return out
	}
	for _, d := range Directions {
		if g, ok := src.GridAt(coord.Neighbor(d)); ok {
			out[d] = g
		}
	}
	return out
}

// MeshChunk builds the mesh of the chunk at coord, pulling neighbour grids from src
func (m *Mesher) MeshChunk(coord ChunkCoord, grid *Grid, src NeighbourSource) *Mesh {
	return m.BuildMesh(grid, Neighbours(coord, src))
}

// BuildMesh emits every visible face of grid in voxel-index order, then
// face-list order. A nil neighbour entry is treated as all air.
func (m *Mesher) BuildMesh(grid *Grid, neighbours DirectionMap[*Grid]) *Mesh {
	mesh := NewMesh()
	cellSize := m.catalog.CellSize()

	for index, id := range grid {
		if id == Air {
			continue
		}
		voxelType := m.catalog.Type(id)
		x, y, z := IndexToLocal(index)
		offset := mgl32.Vec3{float32(x), float32(y), float32(z)}

		for _, face := range voxelType.Faces {
			if face.Direction.Cardinal() {
				neighbourID := neighbourVoxel(grid, neighbours, x, y, z, face.Direction)
				if !m.catalog.Type(neighbourID).ShouldDraw(face.Direction.Reverse()) {
					continue
				}
			}
			mesh.AddFace(face, offset, m.catalog.AtlasWidth, cellSize)
		}
	}
	return mesh
}

// neighbourVoxel reads the voxel one step from (x,y,z) in direction d,
// crossing into the adjacent grid at the chunk boundary
func neighbourVoxel(grid *Grid, neighbours DirectionMap[*Grid], x, y, z int, d Direction) VoxelID {
	dx, dy, dz := d.Step()
	nx, ny, nz := x+dx, y+dy, z+dz
	if InBounds(nx, ny, nz) {
		return grid[LocalToIndex(nx, ny, nz)]
	}
	adjacent := neighbours[d]
	if adjacent == nil {
		return Air
	}
	return adjacent.Get(wrap(nx), wrap(ny), wrap(nz))
}

func wrap(v int) int {
	return int(floorMod(int32(v), ChunkSize))
}
