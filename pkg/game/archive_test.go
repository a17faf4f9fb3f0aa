package game

import (
	"testing"

	"github.com/leterax/chunkworld/pkg/voxel"
)

func TestGridArchiveRoundTrip(t *testing.T) {
	archive, err := NewGridArchive()
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Close()

	coord := voxel.ChunkCoord{X: -3, Y: 2, Z: 0}
	grid := flatGenerator{height: 5}.Generate(coord)
	grid.Set(1, 2, 3, voxel.Bedrock)
	grid.Set(31, 31, 31, voxel.Grass)

	archive.Store(coord, grid)
	if !archive.Has(coord) || archive.Len() != 1 {
		t.Fatalf("Has = %v, Len = %d", archive.Has(coord), archive.Len())
	}
	if r := archive.Ratio(); r <= 0 || r >= 0.5 {
		t.Errorf("compression ratio %.3f for a mostly uniform grid", r)
	}

	restored, ok, err := archive.Load(coord)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if *restored != *grid {
		t.Error("restored grid differs")
	}
	if archive.Has(coord) || archive.Ratio() != 0 {
		t.Error("Load should remove the entry")
	}

	if _, ok, err := archive.Load(coord); ok || err != nil {
		t.Errorf("second Load = %v, %v, want nothing", ok, err)
	}
}

func TestGridArchiveStoreReplaces(t *testing.T) {
	archive, err := NewGridArchive()
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Close()

	coord := voxel.ChunkCoord{}
	first := new(voxel.Grid)
	second := new(voxel.Grid)
	second.Fill(voxel.Stone)

	archive.Store(coord, first)
	archive.Store(coord, second)
	if archive.Len() != 1 {
		t.Errorf("Len = %d, want 1", archive.Len())
	}
	got, _, err := archive.Load(coord)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *second {
		t.Error("Load returned the replaced grid")
	}
}
