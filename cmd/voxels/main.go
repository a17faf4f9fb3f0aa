package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/leterax/chunkworld/pkg/config"
	"github.com/leterax/chunkworld/pkg/render"
)

func init() {
	// This is needed to ensure that OpenGL functions are called from the same thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML world config (empty for defaults)")
	renderDist := flag.Int("renderdist", 0, "Render distance in chunks, overrides the config when set")
	width := flag.Int("width", 1280, "Window width")
	height := flag.Int("height", 720, "Window height")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *renderDist > 0 {
		cfg.ViewDistance = *renderDist
	}

	log.Printf("Starting chunkworld, view distance %d, seed %d", cfg.ViewDistance, cfg.Terrain.Seed)

	renderer, err := render.NewRenderer(cfg, *width, *height, "chunkworld")
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}
	renderer.Run()
}
