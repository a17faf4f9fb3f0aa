// Command chunkstat streams a world headlessly along a straight walk and
// reports what the streamer and the chunk buffers did at every step.
package main

import (
	"flag"
	"log"

	"github.com/leterax/chunkworld/pkg/buffers"
	"github.com/leterax/chunkworld/pkg/config"
	"github.com/leterax/chunkworld/pkg/game"
	"github.com/leterax/chunkworld/pkg/voxel"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML world config (empty for defaults)")
	steps := flag.Int("steps", 16, "Number of chunks to walk")
	dx := flag.Int("dx", 1, "Chunks moved along X per step")
	dy := flag.Int("dy", 0, "Chunks moved along Y per step")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	catalog, err := voxel.DefaultCatalog(cfg.Atlas.Width)
	if err != nil {
		log.Fatalf("Failed to build catalog: %v", err)
	}
	archive, err := game.NewGridArchive()
	if err != nil {
		log.Fatalf("Failed to create archive: %v", err)
	}
	defer archive.Close()

	chunkBuffers := buffers.NewChunkBufferManager(
		buffers.NewMemoryBuffer(cfg.Buffers.VertexBytes),
		buffers.NewMemoryBuffer(cfg.Buffers.IndexBytes),
		cfg.Buffers.CoalesceEvery,
	)
	generator := voxel.NewGenerator(cfg.TerrainParams())
	world := game.NewWorld(cfg.WorldOptions(), generator, voxel.NewMesher(catalog), chunkBuffers, archive)

	for step := 0; step <= *steps; step++ {
		x := float32(step*(*dx)*voxel.ChunkSize) + voxel.ChunkSize/2
		y := float32(step*(*dy)*voxel.ChunkSize) + voxel.ChunkSize/2
		z := float32(generator.TerrainHeight(int32(x), int32(y)))
		world.UpdateView(x, y, z)

		// Break the surface block under the walker so the archive has edited grids to keep
		wx, wy, wz := int32(x), int32(y), generator.TerrainHeight(int32(x), int32(y))
		if err := world.SetVoxel(wx, wy, wz, voxel.Air); err != nil {
			log.Printf("step %d: edit failed: %v", step, err)
		}

		world.Reclaim(cfg.Reclaim.MaxPerPass)
		world.RetryUploads()

		ws := world.Stats()
		bs := chunkBuffers.Stats()
		log.Printf("step %3d: active=%d visible=%d pending=%d archived=%d generated=%d restored=%d meshed=%d reclaimed=%d",
			step, ws.Active, ws.Visible, ws.PendingUploads, ws.Archived, ws.Generated, ws.Restored, ws.Meshed, ws.Reclaimed)
		log.Printf("          vertex used=%d free=%d frags=%d, index used=%d free=%d frags=%d",
			bs.VertexUsed, bs.VertexFree, bs.VertexFragments, bs.IndexUsed, bs.IndexFree, bs.IndexFragments)
	}

	log.Printf("archive holds %d grids at ratio %.3f", archive.Len(), archive.Ratio())
}
