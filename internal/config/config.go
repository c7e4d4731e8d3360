// Package config defines the engine's external configuration surface
// (spec.md §6 "Configuration"), loadable from YAML via gopkg.in/yaml.v3 the
// way weaviate-weaviate and jinterlante1206-AleutianLocal load their
// config trees.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// IslandPolicy decides what the linear repair path (spec.md §4.6 Phase 5)
// does with a segment whose both endpoints are non-HDN -- decision 1 of
// DESIGN.md's Open Question resolutions.
type IslandPolicy string

const (
	// IslandEmit builds and keeps an ISLAND edge immediately.
	IslandEmit IslandPolicy = "emit"
	// IslandSkip never materializes an ISLAND edge; a bare linear run with
	// no HDN endpoint is left unrepresented in the edge store until one of
	// its ends is promoted to an HDN.
	IslandSkip IslandPolicy = "skip"
)

// Config is the engine-wide tunable surface.
type Config struct {
	// K is the k-mer length; must agree with the oracle's KSize().
	K int `yaml:"k"`
	// TagDensity is the planting interval, in k-mers, for both the
	// compactor's edge tags and the partitioner's tags.
	TagDensity uint32 `yaml:"tag_density"`
	// IslandPolicy controls Phase 5 island handling.
	IslandPolicy IslandPolicy `yaml:"island_policy"`
	// UpdateDebug toggles trace-level logging in the compactor (the
	// partitioner does not log).
	UpdateDebug bool `yaml:"update_debug"`
}

// DefaultConfig returns the engine's built-in defaults: TagDensity=100
// mirrors oxli's DEFAULT_TAG_DENSITY, IslandPolicy=skip mirrors the
// original's "don't deal with islands for now" comment, UpdateDebug=false.
func DefaultConfig() Config {
	return Config{
		K:            21,
		TagDensity:   100,
		IslandPolicy: IslandSkip,
		UpdateDebug:  false,
	}
}

// Load reads and validates a Config from a YAML file at path, filling any
// zero-valued field from DefaultConfig().
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot operate under.
func (c Config) Validate() error {
	if c.K < 3 || c.K > 32 {
		return errors.Errorf("config: k must be in [3, 32], got %d", c.K)
	}
	if c.TagDensity == 0 {
		return errors.New("config: tag_density must be positive")
	}
	switch c.IslandPolicy {
	case IslandEmit, IslandSkip, "":
	default:
		return errors.Errorf("config: unknown island_policy %q", c.IslandPolicy)
	}
	return nil
}
