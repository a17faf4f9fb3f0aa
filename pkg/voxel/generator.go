package voxel

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// TerrainGenerator fills the grid of a chunk coordinate
type TerrainGenerator interface {
	Generate(coord ChunkCoord) *Grid
}

// TerrainParams shapes the heightmap
type TerrainParams struct {
	Seed              int64
	Scale             float64
	HeightMultiplier  float64
	SolidGroundHeight float64
	// DirtDepth is the thickness of the dirt band under the grass; 0 disables it
	DirtDepth int
}

// DefaultTerrainParams returns the stock terrain shape
func DefaultTerrainParams() TerrainParams {
	return TerrainParams{
		Seed:              0,
		Scale:             0.1,
		HeightMultiplier:  6,
		SolidGroundHeight: 10,
		DirtDepth:         3,
	}
}

// Generator produces terrain from a fixed-seed 2D simplex heightmap.
// Every voxel depends only on its world position, so chunks can be
// generated in any order and still agree at their boundaries.
type Generator struct {
	params TerrainParams
	noise  opensimplex.Noise
}

// NewGenerator creates a generator for the given parameters
func NewGenerator(params TerrainParams) *Generator {
	return &Generator{
		params: params,
		noise:  opensimplex.New(params.Seed),
	}
}

// Params returns the generator's terrain parameters
func (g *Generator) Params() TerrainParams {
	return g.params
}

// TerrainHeight returns the world z of the grass surface in column (worldX, worldY)
func (g *Generator) TerrainHeight(worldX, worldY int32) int32 {
	n := g.noise.Eval2(float64(worldX)*g.params.Scale, float64(worldY)*g.params.Scale)
	// remap [-1,1] -> [0,1]
	n = (n + 1) / 2
	return int32(math.Floor(n*g.params.HeightMultiplier) + g.params.SolidGroundHeight)
}

// VoxelAt returns the generated voxel at a world position
func (g *Generator) VoxelAt(worldX, worldY, worldZ int32) VoxelID {
	return g.layer(worldZ, g.TerrainHeight(worldX, worldY))
}

func (g *Generator) layer(z, height int32) VoxelID {
	switch {
	case z == 0:
		return Bedrock
	case z == height:
		return Grass
	case z > height:
		return Air
	case z >= height-int32(g.params.DirtDepth):
		return Dirt
	default:
		return Stone
	}
}

// Generate fills a new grid for the chunk at coord
func (g *Generator) Generate(coord ChunkCoord) *Grid {
	grid := new(Grid)
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			worldX, worldY, _ := coord.LocalToWorld(x, y, 0)
			height := g.TerrainHeight(worldX, worldY)
			for z := 0; z < ChunkSize; z++ {
				_, _, worldZ := coord.LocalToWorld(x, y, z)
				grid[LocalToIndex(x, y, z)] = g.layer(worldZ, height)
			}
		}
	}
	return grid
}
