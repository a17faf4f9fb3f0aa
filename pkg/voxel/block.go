package voxel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// VoxelID identifies a voxel type in a Catalog. 0 is always air.
type VoxelID uint8

const (
	Air VoxelID = iota
	Grass
	Stone
	Dirt
	Bedrock
)

// Face is one quad of a voxel's geometry in unit-cube space
type Face struct {
	Direction Direction
	Vertices  [4]mgl32.Vec3
	UVs       [4]mgl32.Vec2
	// Two triangles, fixed winding per direction
	Indices [6]uint32
	// Cell in the texture atlas
	Texture uint16
}

// FrontFace returns the +X face
func FrontFace(texture uint16) Face {
	return Face{
		Direction: Front,
		Vertices:  [4]mgl32.Vec3{{1, 0, 0}, {1, 0, 1}, {1, 1, 1}, {1, 1, 0}},
		UVs:       [4]mgl32.Vec2{{0, 1}, {0, 0}, {1, 0}, {1, 1}},
		Indices:   [6]uint32{2, 1, 0, 2, 0, 3},
		Texture:   texture,
	}
}

// BackFace returns the -X face
func BackFace(texture uint16) Face {
	return Face{
		Direction: Back,
		Vertices:  [4]mgl32.Vec3{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
		UVs:       [4]mgl32.Vec2{{1, 1}, {1, 0}, {0, 0}, {0, 1}},
		Indices:   [6]uint32{0, 1, 2, 3, 0, 2},
		Texture:   texture,
	}
}

// LeftFace returns the -Y face
func LeftFace(texture uint16) Face {
	return Face{
		Direction: Left,
		Vertices:  [4]mgl32.Vec3{{0, 0, 0}, {0, 0, 1}, {1, 0, 1}, {1, 0, 0}},
		UVs:       [4]mgl32.Vec2{{0, 1}, {0, 0}, {1, 0}, {1, 1}},
		Indices:   [6]uint32{2, 1, 0, 2, 0, 3},
		Texture:   texture,
	}
}

// RightFace returns the +Y face
func RightFace(texture uint16) Face {
	return Face{
		Direction: Right,
		Vertices:  [4]mgl32.Vec3{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
		UVs:       [4]mgl32.Vec2{{1, 1}, {1, 0}, {0, 0}, {0, 1}},
		Indices:   [6]uint32{0, 1, 2, 3, 0, 2},
		Texture:   texture,
	}
}

// TopFace returns the +Z face
func TopFace(texture uint16) Face {
	return Face{
		Direction: Top,
		Vertices:  [4]mgl32.Vec3{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
		UVs:       [4]mgl32.Vec2{{0, 1}, {0, 0}, {1, 0}, {1, 1}},
		Indices:   [6]uint32{0, 1, 3, 3, 1, 2},
		Texture:   texture,
	}
}

// BottomFace returns the -Z face
func BottomFace(texture uint16) Face {
	return Face{
		Direction: Bottom,
		Vertices:  [4]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		UVs:       [4]mgl32.Vec2{{0, 1}, {0, 0}, {1, 0}, {1, 1}},
		Indices:   [6]uint32{3, 1, 0, 2, 1, 3},
		Texture:   texture,
	}
}

// Uncullable returns a copy of the face that is drawn regardless of neighbours
func (f Face) Uncullable() Face {
	f.Direction = NonCull
	return f
}

// BlockFaces builds the six faces of a full block, textures in DirectionMap order
func BlockFaces(textures [6]uint16) []Face {
	return []Face{
		FrontFace(textures[Front]),
		BackFace(textures[Back]),
		LeftFace(textures[Left]),
		RightFace(textures[Right]),
		TopFace(textures[Top]),
		BottomFace(textures[Bottom]),
	}
}

// VoxelType describes how one VoxelID looks and culls
type VoxelType struct {
	Name  string
	Faces []Face
	// Collidable is consumed by the physics collaborator, not by meshing
	Collidable bool
	// DrawNeighbours[d] is true when a voxel sitting on side d of this one
	// must still draw the face it shares with this voxel
	DrawNeighbours DirectionMap[bool]
}

// ShouldDraw reports whether a neighbour on side d of this voxel draws its shared face
func (t *VoxelType) ShouldDraw(d Direction) bool {
	v, ok := t.DrawNeighbours.Get(d)
	if !ok {
		return true
	}
	return v
}

// Catalog is the immutable table of voxel types, indexed by VoxelID
type Catalog struct {
	types []VoxelType
	// AtlasWidth is the number of texture cells per atlas row
	AtlasWidth int
}

// NewCatalog creates a catalog. types[0] must describe air.
func NewCatalog(atlasWidth int, types ...VoxelType) (*Catalog, error) {
	if atlasWidth <= 0 {
		return nil, fmt.Errorf("atlas width must be positive, got %d", atlasWidth)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("catalog needs at least the air type")
	}
	if len(types[0].Faces) != 0 {
		return nil, fmt.Errorf("voxel id 0 is air and cannot have faces")
	}
	if len(types) > 256 {
		return nil, fmt.Errorf("catalog has %d types, at most 256 fit in a voxel id", len(types))
	}
	copied := make([]VoxelType, len(types))
	copy(copied, types)
	return &Catalog{types: copied, AtlasWidth: atlasWidth}, nil
}

// Type returns the type for an id. Unknown ids resolve to air.
func (c *Catalog) Type(id VoxelID) *VoxelType {
	if int(id) >= len(c.types) {
		return &c.types[Air]
	}
	return &c.types[id]
}

// Len returns the number of registered types
func (c *Catalog) Len() int {
	return len(c.types)
}

// CellSize returns the normalized width of one atlas cell
func (c *Catalog) CellSize() float32 {
	return 1.0 / float32(c.AtlasWidth)
}

func solid(name string, textures [6]uint16) VoxelType {
	return VoxelType{
		Name:           name,
		Faces:          BlockFaces(textures),
		Collidable:     true,
		DrawNeighbours: UniformMap(false),
	}
}

// DefaultCatalog returns the built-in terrain palette
func DefaultCatalog(atlasWidth int) (*Catalog, error) {
	return NewCatalog(atlasWidth,
		VoxelType{Name: "air", DrawNeighbours: UniformMap(true)},
		solid("grass", [6]uint16{2, 2, 2, 2, 7, 1}),
		solid("stone", [6]uint16{0, 0, 0, 0, 0, 0}),
		solid("dirt", [6]uint16{1, 1, 1, 1, 1, 1}),
		solid("bedrock", [6]uint16{9, 9, 9, 9, 9, 9}),
	)
}
