package voxel

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func defaultMesher(t *testing.T) *Mesher {
	t.Helper()
	catalog, err := DefaultCatalog(4)
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	return NewMesher(catalog)
}

func checkMeshValid(t *testing.T, mesh *Mesh) {
	t.Helper()
	if len(mesh.Vertices)%4 != 0 {
		t.Errorf("vertex count %d is not a multiple of 4", len(mesh.Vertices))
	}
	if len(mesh.Indices)%3 != 0 {
		t.Errorf("index count %d is not a multiple of 3", len(mesh.Indices))
	}
	for i, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Vertices) {
			t.Fatalf("index %d = %d out of range for %d vertices", i, idx, len(mesh.Vertices))
		}
	}
}

func TestIsolatedVoxelEmitsAllFaces(t *testing.T) {
	m := defaultMesher(t)
	grid := new(Grid)
	grid.Set(5, 5, 5, Stone)

	mesh := m.BuildMesh(grid, DirectionMap[*Grid]{})
	want := len(m.Catalog().Type(Stone).Faces)
	if mesh.QuadCount() != want {
		t.Errorf("got %d faces, want %d", mesh.QuadCount(), want)
	}
	if mesh.IndexCount() != want*6 {
		t.Errorf("got %d indices, want %d", mesh.IndexCount(), want*6)
	}
	checkMeshValid(t, mesh)
}

func TestSurroundedVoxelEmitsNothing(t *testing.T) {
	m := defaultMesher(t)
	grid := new(Grid)
	grid.Fill(Stone)

	full := new(Grid)
	full.Fill(Stone)
	mesh := m.BuildMesh(grid, UniformMap(full))
	if !mesh.Empty() {
		t.Errorf("solid chunk between solid neighbours emitted %d faces", mesh.QuadCount())
	}

	// Without neighbours every boundary face is exposed to air
	mesh = m.BuildMesh(grid, DirectionMap[*Grid]{})
	if want := 6 * ChunkSize * ChunkSize; mesh.QuadCount() != want {
		t.Errorf("solid chunk alone emitted %d faces, want %d", mesh.QuadCount(), want)
	}
	checkMeshValid(t, mesh)
}

func TestBoundaryCullingUsesNeighbourGrid(t *testing.T) {
	m := defaultMesher(t)
	grid := new(Grid)
	grid.Set(ChunkSize-1, 0, 0, Stone)

	front := new(Grid)
	front.Set(0, 0, 0, Dirt)

	var neighbours DirectionMap[*Grid]
	neighbours.Set(Front, front)
	if got := m.BuildMesh(grid, neighbours).QuadCount(); got != 5 {
		t.Errorf("face against neighbouring dirt: got %d faces, want 5", got)
	}
	if got := m.BuildMesh(grid, DirectionMap[*Grid]{}).QuadCount(); got != 6 {
		t.Errorf("missing neighbour should read as air: got %d faces, want 6", got)
	}
}

func TestMeshChunkPullsNeighboursFromSource(t *testing.T) {
	m := defaultMesher(t)
	grid := new(Grid)
	grid.Set(0, 0, 0, Stone)

	back := new(Grid)
	back.Set(ChunkSize-1, 0, 0, Stone)
	src := gridMap{ChunkCoord{-1, 0, 0}: back}

	if got := m.MeshChunk(ChunkCoord{0, 0, 0}, grid, src).QuadCount(); got != 5 {
		t.Errorf("got %d faces, want 5", got)
	}
}

type gridMap map[ChunkCoord]*Grid

func (g gridMap) GridAt(coord ChunkCoord) (*Grid, bool) {
	grid, ok := g[coord]
	return grid, ok
}

func TestCullingReadsNeighbourFlags(t *testing.T) {
	glass := VoxelType{Name: "glass", Faces: BlockFaces([6]uint16{}), DrawNeighbours: UniformMap(true)}
	stone := VoxelType{Name: "stone", Faces: BlockFaces([6]uint16{}), DrawNeighbours: UniformMap(false)}
	catalog, err := NewCatalog(4, VoxelType{Name: "air", DrawNeighbours: UniformMap(true)}, glass, stone)
	if err != nil {
		t.Fatal(err)
	}
	m := NewMesher(catalog)

	grid := new(Grid)
	grid.Set(0, 0, 0, 2)
	grid.Set(1, 0, 0, 1)

	// stone keeps its face toward glass, glass loses its face toward stone
	mesh := m.BuildMesh(grid, DirectionMap[*Grid]{})
	if mesh.QuadCount() != 11 {
		t.Errorf("got %d faces, want 11", mesh.QuadCount())
	}
}

func TestNonCullFacesAlwaysEmitted(t *testing.T) {
	marker := VoxelType{
		Name:           "marker",
		Faces:          []Face{TopFace(3).Uncullable()},
		DrawNeighbours: UniformMap(false),
	}
	catalog, err := NewCatalog(4, VoxelType{Name: "air", DrawNeighbours: UniformMap(true)}, marker)
	if err != nil {
		t.Fatal(err)
	}
	m := NewMesher(catalog)

	grid := new(Grid)
	grid.Fill(1)
	full := new(Grid)
	full.Fill(1)

	mesh := m.BuildMesh(grid, UniformMap(full))
	if mesh.QuadCount() != ChunkVolume {
		t.Errorf("got %d faces, want one per voxel (%d)", mesh.QuadCount(), ChunkVolume)
	}
}

func TestAddFaceRemapsUVAndOffsetsIndices(t *testing.T) {
	m := defaultMesher(t)
	grid := new(Grid)
	grid.Set(2, 3, 4, Grass)

	mesh := m.BuildMesh(grid, DirectionMap[*Grid]{})

	// Faces come out in Front, Back, Left, Right, Top, Bottom order
	top := mesh.Vertices[4*4]
	if top.Position != (mgl32.Vec3{2, 3, 5}) {
		t.Errorf("top face first vertex at %v, want chunk-local (2, 3, 5)", top.Position)
	}
	// grass top is texture 7: cell (3, 1) in a 4-wide atlas, uv (0, 1)
	if want := (mgl32.Vec2{0.75, 0.5}); !top.UV.ApproxEqual(want) {
		t.Errorf("top face first uv = %v, want %v", top.UV, want)
	}

	front := FrontFace(0)
	for i := 0; i < 6; i++ {
		if mesh.Indices[i] != front.Indices[i] {
			t.Errorf("index %d = %d, want %d", i, mesh.Indices[i], front.Indices[i])
		}
		if mesh.Indices[6+i] != 4+BackFace(0).Indices[i] {
			t.Errorf("second face index %d = %d, want %d", i, mesh.Indices[6+i], 4+BackFace(0).Indices[i])
		}
	}
}

func TestTerrainMeshIsValid(t *testing.T) {
	m := defaultMesher(t)
	g := NewGenerator(DefaultTerrainParams())
	src := gridMap{}
	for _, c := range []ChunkCoord{{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}} {
		src[c] = g.Generate(c)
	}
	mesh := m.MeshChunk(ChunkCoord{0, 0, 0}, src[ChunkCoord{0, 0, 0}], src)
	if mesh.Empty() {
		t.Fatal("terrain chunk produced no geometry")
	}
	checkMeshValid(t, mesh)

	// Same input, same bytes
	again := m.MeshChunk(ChunkCoord{0, 0, 0}, src[ChunkCoord{0, 0, 0}], src)
	if string(again.VertexBytes()) != string(mesh.VertexBytes()) || string(again.IndexBytes()) != string(mesh.IndexBytes()) {
		t.Error("meshing the same chunk twice gave different bytes")
	}
}

func TestMeshByteLayout(t *testing.T) {
	mesh := NewMesh()
	mesh.AddFace(FrontFace(0), mgl32.Vec3{1, 2, 3}, 4, 0.25)

	vb := mesh.VertexBytes()
	if len(vb) != 4*VertexSize {
		t.Fatalf("vertex bytes = %d, want %d", len(vb), 4*VertexSize)
	}
	v := mesh.Vertices[1]
	fields := []float32{v.Position[0], v.Position[1], v.Position[2], v.UV[0], v.UV[1]}
	for i, want := range fields {
		got := math.Float32frombits(binary.LittleEndian.Uint32(vb[VertexSize+4*i:]))
		if got != want {
			t.Errorf("vertex 1 field %d = %v, want %v", i, got, want)
		}
	}

	ib := mesh.IndexBytes()
	if len(ib) != 6*IndexSize {
		t.Fatalf("index bytes = %d, want %d", len(ib), 6*IndexSize)
	}
	if got := binary.LittleEndian.Uint32(ib[4:]); got != mesh.Indices[1] {
		t.Errorf("index 1 encoded as %d, want %d", got, mesh.Indices[1])
	}
}

func TestDirectionReverse(t *testing.T) {
	for _, d := range Directions {
		if d.Reverse().Reverse() != d || d.Reverse() == d {
			t.Errorf("%v reverse is %v", d, d.Reverse())
		}
		dx, dy, dz := d.Step()
		rx, ry, rz := d.Reverse().Step()
		if dx != -rx || dy != -ry || dz != -rz {
			t.Errorf("%v and its reverse do not step in opposite directions", d)
		}
	}
	if NonCull.Reverse() != NonCull {
		t.Error("NonCull should be its own reverse")
	}
}

func TestCatalogRejectsBadInput(t *testing.T) {
	if _, err := NewCatalog(0, VoxelType{}); err == nil {
		t.Error("atlas width 0 accepted")
	}
	if _, err := NewCatalog(4); err == nil {
		t.Error("empty catalog accepted")
	}
	if _, err := NewCatalog(4, VoxelType{Faces: BlockFaces([6]uint16{})}); err == nil {
		t.Error("air with faces accepted")
	}
	catalog, err := DefaultCatalog(4)
	if err != nil {
		t.Fatal(err)
	}
	if catalog.Type(200) != catalog.Type(Air) {
		t.Error("unknown id should resolve to air")
	}
}
