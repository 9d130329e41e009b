package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/flowatlas/flowatlas/pkg/cache"
	"github.com/flowatlas/flowatlas/pkg/layout"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
	"github.com/flowatlas/flowatlas/pkg/store"
)

// configFile is the config file name searched in the working directory and
// in the XDG config directory.
const configFile = "flowatlas.toml"

// Config is the flowatlas.toml file structure. All fields are optional;
// zero values fall back to built-in defaults.
type Config struct {
	// Vocabulary adds entity types beyond the built-in defaults.
	Vocabulary []string `toml:"vocabulary"`

	// Engine selects the layout engine: "graphviz" or "grid".
	Engine string `toml:"engine"`

	Layout LayoutSection `toml:"layout"`
	Server ServerSection `toml:"server"`
	Redis  RedisSection  `toml:"redis"`
	Mongo  MongoSection  `toml:"mongo"`
}

// LayoutSection overrides individual layout tuning constants.
type LayoutSection struct {
	NodeWidth        float64 `toml:"node_width"`
	ExternalWeight   int     `toml:"external_weight"`
	StrongTie        int     `toml:"strong_tie"`
	MaxCommunitySize int     `toml:"max_community_size"`
	GroupSpacing     float64 `toml:"group_spacing"`
}

// ServerSection configures the serve command.
type ServerSection struct {
	Addr string `toml:"addr"`
}

// RedisSection configures the optional Redis pipeline cache for serve.
type RedisSection struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoSection configures the optional MongoDB build store for serve.
type MongoSection struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Engine: pipeline.DefaultEngine,
		Server: ServerSection{Addr: ":8080"},
	}
}

// LoadConfig reads the config file. An explicit path must exist; otherwise
// ./flowatlas.toml and ~/.config/flowatlas/flowatlas.toml are tried in
// order and a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		return cfg, nil
	}

	for _, candidate := range configCandidates() {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(candidate, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", candidate, err)
		}
		return cfg, nil
	}
	return cfg, nil
}

func configCandidates() []string {
	candidates := []string{configFile}
	if dir, err := configDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, configFile))
	}
	return candidates
}

// PipelineOptions converts the config into pipeline options, applying
// layout overrides on top of the defaults.
func (c Config) PipelineOptions() pipeline.Options {
	lc := layout.DefaultConfig()
	if c.Layout.NodeWidth > 0 {
		lc.NodeWidth = c.Layout.NodeWidth
	}
	if c.Layout.ExternalWeight > 0 {
		lc.ExternalWeight = c.Layout.ExternalWeight
	}
	if c.Layout.StrongTie > 0 {
		lc.StrongTie = c.Layout.StrongTie
	}
	if c.Layout.MaxCommunitySize > 0 {
		lc.MaxCommunitySize = c.Layout.MaxCommunitySize
	}
	if c.Layout.GroupSpacing > 0 {
		lc.GroupSpacing = c.Layout.GroupSpacing
	}

	return pipeline.Options{
		Vocabulary: c.Vocabulary,
		Engine:     c.Engine,
		Layout:     lc,
	}
}

// RedisConfig converts the redis section for the cache backend.
func (c Config) RedisConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// MongoConfig converts the mongo section for the build store.
func (c Config) MongoConfig() store.MongoConfig {
	return store.MongoConfig{
		URI:      c.Mongo.URI,
		Database: c.Mongo.Database,
	}
}
