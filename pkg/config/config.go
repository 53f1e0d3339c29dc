// Package config holds the tuning knobs for a crashwal directory: where it
// lives on disk and how eagerly its record index is built on open.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is loadable from YAML, mirroring the teacher's plain-struct
// config shape.
type Config struct {
	// Dir is the directory holding wal.tick, wal.tock, wal.log, wal.meta.
	Dir string `yaml:"dir"`

	// RecordIndexPreload, when true, has walctl open a recordstream.Store
	// right after opening the WAL, forcing its offset index to build before
	// the command runs. When false, walctl never builds the index.
	RecordIndexPreload bool `yaml:"record_index_preload"`
}

// Default returns the configuration a fresh crashwal directory starts with.
// RecordIndexPreload defaults to false: a directory holding raw bytes rather
// than recordstream-encoded records would fail to parse as one.
func Default() *Config {
	return &Config{
		Dir:                "./data/wal",
		RecordIndexPreload: false,
	}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
