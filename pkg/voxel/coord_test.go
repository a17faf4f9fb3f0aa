package voxel

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestWorldToChunkCoordFloorsNegatives(t *testing.T) {
	tests := []struct {
		x, y, z int32
		want    ChunkCoord
	}{
		{0, 0, 0, ChunkCoord{0, 0, 0}},
		{31, 31, 31, ChunkCoord{0, 0, 0}},
		{32, 64, 95, ChunkCoord{1, 2, 2}},
		{-1, -1, -1, ChunkCoord{-1, -1, -1}},
		{-32, -33, -64, ChunkCoord{-1, -2, -2}},
		{-65, 5, -31, ChunkCoord{-3, 0, -1}},
	}
	for _, tt := range tests {
		if got := WorldToChunkCoord(tt.x, tt.y, tt.z); got != tt.want {
			t.Errorf("WorldToChunkCoord(%d, %d, %d) = %v, want %v", tt.x, tt.y, tt.z, got, tt.want)
		}
	}
}

func TestChunkCoordFromWorld(t *testing.T) {
	if got := ChunkCoordFromWorld(-0.5, 31.9, 32); got != (ChunkCoord{-1, 0, 1}) {
		t.Errorf("ChunkCoordFromWorld = %v, want {-1 0 1}", got)
	}
}

func TestWorldToLocalCoord(t *testing.T) {
	x, y, z := WorldToLocalCoord(-1, 33, -32)
	if x != 31 || y != 1 || z != 0 {
		t.Errorf("WorldToLocalCoord(-1, 33, -32) = (%d, %d, %d), want (31, 1, 0)", x, y, z)
	}

	c := WorldToChunkCoord(-1, 33, -32)
	wx, wy, wz := c.LocalToWorld(x, y, z)
	if wx != -1 || wy != 33 || wz != -32 {
		t.Errorf("round trip = (%d, %d, %d), want (-1, 33, -32)", wx, wy, wz)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	for _, p := range [][3]int{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {31, 31, 31}, {5, 17, 30}} {
		i := LocalToIndex(p[0], p[1], p[2])
		x, y, z := IndexToLocal(i)
		if x != p[0] || y != p[1] || z != p[2] {
			t.Errorf("IndexToLocal(LocalToIndex(%v)) = (%d, %d, %d)", p, x, y, z)
		}
	}
	if got := LocalToIndex(1, 2, 3); got != 1*32*32+2*32+3 {
		t.Errorf("LocalToIndex(1, 2, 3) = %d", got)
	}
}

func TestModelMatrixTranslatesToOrigin(t *testing.T) {
	c := ChunkCoord{X: 1, Y: -2, Z: 0}
	got := c.ModelMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	want := mgl32.Vec3{32, -64, 0}
	if got.Vec3() != want {
		t.Errorf("model matrix moved chunk origin to %v, want %v", got.Vec3(), want)
	}
}

func TestNeighborAndLess(t *testing.T) {
	c := ChunkCoord{0, 0, 0}
	if c.Neighbor(Front) != (ChunkCoord{1, 0, 0}) || c.Neighbor(Left) != (ChunkCoord{0, -1, 0}) || c.Neighbor(Bottom) != (ChunkCoord{0, 0, -1}) {
		t.Error("Neighbor stepped in the wrong direction")
	}
	if !(ChunkCoord{0, 5, 5}).Less(ChunkCoord{1, 0, 0}) || (ChunkCoord{1, 0, 0}).Less(ChunkCoord{1, 0, 0}) {
		t.Error("Less is not a strict x,y,z order")
	}
}
