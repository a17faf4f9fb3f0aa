// Package config loads the world settings from YAML.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/leterax/chunkworld/pkg/game"
	"github.com/leterax/chunkworld/pkg/voxel"
)

type Config struct {
	ViewDistance      int  `yaml:"view_distance"`
	VerticalStreaming bool `yaml:"vertical_streaming"`
	RemeshNeighbours  bool `yaml:"remesh_neighbours"`

	Terrain Terrain `yaml:"terrain"`
	Atlas   Atlas   `yaml:"atlas"`
	Buffers Buffers `yaml:"buffers"`
	Reclaim Reclaim `yaml:"reclaim"`
}

type Terrain struct {
	Seed              int64   `yaml:"seed"`
	Scale             float64 `yaml:"scale"`
	HeightMultiplier  float64 `yaml:"height_multiplier"`
	SolidGroundHeight float64 `yaml:"solid_ground_height"`
	DirtDepth         int     `yaml:"dirt_depth"`
}

type Atlas struct {
	// Width is the number of texture cells per atlas row
	Width int `yaml:"width"`
}

type Buffers struct {
	VertexBytes   int `yaml:"vertex_bytes"`
	IndexBytes    int `yaml:"index_bytes"`
	CoalesceEvery int `yaml:"coalesce_every"`
}

type Reclaim struct {
	MaxPerPass int `yaml:"max_per_pass"`
}

// Default returns the settings used when no file is given
func Default() Config {
	terrain := voxel.DefaultTerrainParams()
	return Config{
		ViewDistance:     4,
		RemeshNeighbours: true,
		Terrain: Terrain{
			Seed:              terrain.Seed,
			Scale:             terrain.Scale,
			HeightMultiplier:  terrain.HeightMultiplier,
			SolidGroundHeight: terrain.SolidGroundHeight,
			DirtDepth:         terrain.DirtDepth,
		},
		Atlas: Atlas{Width: 4},
		Buffers: Buffers{
			VertexBytes:   64 << 20,
			IndexBytes:    16 << 20,
			CoalesceEvery: 16,
		},
		Reclaim: Reclaim{MaxPerPass: 8},
	}
}

const schemaSource = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "view_distance": {"type": "integer", "minimum": 0, "maximum": 64},
    "vertical_streaming": {"type": "boolean"},
    "remesh_neighbours": {"type": "boolean"},
    "terrain": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "seed": {"type": "integer"},
        "scale": {"type": "number", "exclusiveMinimum": 0},
        "height_multiplier": {"type": "number", "minimum": 0},
        "solid_ground_height": {"type": "number", "minimum": 0},
        "dirt_depth": {"type": "integer", "minimum": 0}
      }
    },
    "atlas": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "width": {"type": "integer", "minimum": 1}
      }
    },
    "buffers": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "vertex_bytes": {"type": "integer", "minimum": 20},
        "index_bytes": {"type": "integer", "minimum": 4},
        "coalesce_every": {"type": "integer", "minimum": 0}
      }
    },
    "reclaim": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "max_per_pass": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("config.schema.json", schemaSource)

// Load reads a YAML file and applies it over Default. Keys that are
// missing keep their default value.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML source against the config schema and decodes it over Default
func Parse(raw []byte) (Config, error) {
	cfg := Default()

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		return cfg, nil
	}
	if err := validate(doc); err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// validate checks a decoded YAML document. It goes through JSON first so
// the validator sees JSON types only.
func validate(doc any) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config is not representable as json: %w", err)
	}
	var v any
	if err := json.Unmarshal(encoded, &v); err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TerrainParams returns the generator settings
func (c Config) TerrainParams() voxel.TerrainParams {
	return voxel.TerrainParams{
		Seed:              c.Terrain.Seed,
		Scale:             c.Terrain.Scale,
		HeightMultiplier:  c.Terrain.HeightMultiplier,
		SolidGroundHeight: c.Terrain.SolidGroundHeight,
		DirtDepth:         c.Terrain.DirtDepth,
	}
}

// WorldOptions returns the streaming policy
func (c Config) WorldOptions() game.Options {
	return game.Options{
		ViewDistance:      c.ViewDistance,
		VerticalStreaming: c.VerticalStreaming,
		RemeshNeighbours:  c.RemeshNeighbours,
	}
}
