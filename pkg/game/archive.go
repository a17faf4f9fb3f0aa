package game

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/leterax/chunkworld/pkg/voxel"
)

// GridArchive keeps edited grids of reclaimed chunks, zstd-compressed in memory,
// so that a chunk streamed back in shows its edits instead of fresh terrain.
type GridArchive struct {
	enc   *zstd.Encoder
	dec   *zstd.Decoder
	grids map[voxel.ChunkCoord][]byte

	rawBytes        int
	compressedBytes int
}

// NewGridArchive creates an empty archive
func NewGridArchive() (*GridArchive, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &GridArchive{
		enc:   enc,
		dec:   dec,
		grids: make(map[voxel.ChunkCoord][]byte),
	}, nil
}

// Store compresses grid under coord, replacing an earlier entry
func (a *GridArchive) Store(coord voxel.ChunkCoord, grid *voxel.Grid) {
	raw := make([]byte, voxel.ChunkVolume)
	for i, id := range grid {
		raw[i] = byte(id)
	}
	if old, ok := a.grids[coord]; ok {
		a.rawBytes -= voxel.ChunkVolume
		a.compressedBytes -= len(old)
	}
	packed := a.enc.EncodeAll(raw, nil)
	a.grids[coord] = packed
	a.rawBytes += voxel.ChunkVolume
	a.compressedBytes += len(packed)
}

// Load decompresses and removes the grid stored under coord
func (a *GridArchive) Load(coord voxel.ChunkCoord) (*voxel.Grid, bool, error) {
	packed, ok := a.grids[coord]
	if !ok {
		return nil, false, nil
	}
	raw, err := a.dec.DecodeAll(packed, make([]byte, 0, voxel.ChunkVolume))
	if err != nil {
		return nil, false, fmt.Errorf("decode chunk %v: %w", coord, err)
	}
	if len(raw) != voxel.ChunkVolume {
		return nil, false, fmt.Errorf("decode chunk %v: got %d bytes, want %d", coord, len(raw), voxel.ChunkVolume)
	}

	grid := new(voxel.Grid)
	for i, b := range raw {
		grid[i] = voxel.VoxelID(b)
	}
	delete(a.grids, coord)
	a.rawBytes -= voxel.ChunkVolume
	a.compressedBytes -= len(packed)
	return grid, true, nil
}

// Has reports whether a grid is stored for coord
func (a *GridArchive) Has(coord voxel.ChunkCoord) bool {
	_, ok := a.grids[coord]
	return ok
}

// Len returns the number of stored grids
func (a *GridArchive) Len() int {
	return len(a.grids)
}

// Ratio returns compressed size over raw size, 0 when empty
func (a *GridArchive) Ratio() float64 {
	if a.rawBytes == 0 {
		return 0
	}
	return float64(a.compressedBytes) / float64(a.rawBytes)
}

// Close releases the codec resources
func (a *GridArchive) Close() {
	a.enc.Close()
	a.dec.Close()
}
