package voxel

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ChunkSize is the edge length of a chunk in voxels
	ChunkSize = 32
	// ChunkVolume is the number of voxels in one chunk
	ChunkVolume = ChunkSize * ChunkSize * ChunkSize
)

// ChunkCoord represents the x,y,z coordinates of a chunk in chunk space
type ChunkCoord struct {
	X, Y, Z int32
}

// floorDiv divides rounding toward negative infinity
func floorDiv(value, size int32) int32 {
	if value >= 0 {
		return value / size
	}
	return -((-value - 1) / size) - 1
}

// floorMod is the non-negative remainder matching floorDiv
func floorMod(value, size int32) int32 {
	m := value % size
	if m < 0 {
		m += size
	}
	return m
}

// WorldToChunkCoord converts a voxel world position to chunk coordinates.
// Negative positions floor toward negative infinity, so -1 lands in chunk -1.
func WorldToChunkCoord(worldX, worldY, worldZ int32) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(worldX, ChunkSize),
		Y: floorDiv(worldY, ChunkSize),
		Z: floorDiv(worldZ, ChunkSize),
	}
}

// ChunkCoordFromWorld converts a continuous world position (e.g. the player's) to chunk coordinates
func ChunkCoordFromWorld(x, y, z float32) ChunkCoord {
	return WorldToChunkCoord(
		int32(math.Floor(float64(x))),
		int32(math.Floor(float64(y))),
		int32(math.Floor(float64(z))),
	)
}

// WorldToLocalCoord converts a world position to local coordinates within its chunk
func WorldToLocalCoord(worldX, worldY, worldZ int32) (int, int, int) {
	return int(floorMod(worldX, ChunkSize)),
		int(floorMod(worldY, ChunkSize)),
		int(floorMod(worldZ, ChunkSize))
}

// Origin returns the world position of the chunk's minimum corner
func (c ChunkCoord) Origin() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X * ChunkSize),
		float32(c.Y * ChunkSize),
		float32(c.Z * ChunkSize),
	}
}

// ModelMatrix returns the translation that places chunk-local vertices in the world
func (c ChunkCoord) ModelMatrix() mgl32.Mat4 {
	o := c.Origin()
	return mgl32.Translate3D(o.X(), o.Y(), o.Z())
}

// LocalToWorld converts local voxel coordinates in this chunk to world coordinates
func (c ChunkCoord) LocalToWorld(x, y, z int) (int32, int32, int32) {
	return c.X*ChunkSize + int32(x), c.Y*ChunkSize + int32(y), c.Z*ChunkSize + int32(z)
}

// Neighbor returns the coordinate of the chunk adjacent in the given direction
func (c ChunkCoord) Neighbor(d Direction) ChunkCoord {
	dx, dy, dz := d.Step()
	return ChunkCoord{X: c.X + int32(dx), Y: c.Y + int32(dy), Z: c.Z + int32(dz)}
}

// Less orders coordinates by x, then y, then z
func (c ChunkCoord) Less(o ChunkCoord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

// LocalToIndex converts local block coordinates to an index in a flat array
func LocalToIndex(x, y, z int) int {
	return x*ChunkSize*ChunkSize + y*ChunkSize + z
}

// IndexToLocal converts a flat array index to local coordinates within a chunk
func IndexToLocal(index int) (x, y, z int) {
	x = index / (ChunkSize * ChunkSize)
	remainder := index % (ChunkSize * ChunkSize)
	y = remainder / ChunkSize
	z = remainder % ChunkSize
	return
}

// InBounds reports whether local coordinates fall inside a chunk
func InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < ChunkSize && y < ChunkSize && z < ChunkSize
}
