package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leterax/chunkworld/pkg/voxel"
)

func TestDefaultMatchesTerrainDefaults(t *testing.T) {
	cfg := Default()
	if cfg.ViewDistance != 4 || !cfg.RemeshNeighbours || cfg.VerticalStreaming {
		t.Errorf("streaming defaults = %+v", cfg)
	}
	if cfg.TerrainParams() != voxel.DefaultTerrainParams() {
		t.Errorf("terrain = %+v, want %+v", cfg.TerrainParams(), voxel.DefaultTerrainParams())
	}
	if cfg.Atlas.Width != 4 || cfg.Buffers.CoalesceEvery != 16 || cfg.Reclaim.MaxPerPass != 8 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	src := `
view_distance: 2
vertical_streaming: true
terrain:
  seed: 42
  dirt_depth: 0
buffers:
  vertex_bytes: 1048576
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ViewDistance != 2 || !cfg.VerticalStreaming {
		t.Errorf("streaming = %+v", cfg)
	}
	if cfg.Terrain.Seed != 42 || cfg.Terrain.DirtDepth != 0 {
		t.Errorf("terrain = %+v", cfg.Terrain)
	}
	// untouched keys keep their defaults
	if cfg.Terrain.Scale != 0.1 || cfg.Buffers.IndexBytes != 16<<20 || !cfg.RemeshNeighbours {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Buffers.VertexBytes != 1<<20 {
		t.Errorf("vertex bytes = %d", cfg.Buffers.VertexBytes)
	}

	opts := cfg.WorldOptions()
	if opts.ViewDistance != 2 || !opts.VerticalStreaming || !opts.RemeshNeighbours {
		t.Errorf("world options = %+v", opts)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"negative view distance": "view_distance: -1",
		"unknown key":            "render_distance: 4",
		"wrong type":             "vertical_streaming: sometimes",
		"zero atlas":             "atlas:\n  width: 0",
		"nested unknown":         "terrain:\n  octaves: 3",
		"non-positive scale":     "terrain:\n  scale: 0",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(src)); err == nil {
				t.Errorf("accepted %q", src)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("empty config = %+v, want defaults", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Errorf("err = %v", err)
	}
}
