// Package config decodes YAML configuration for the Graph Generator and
// View-Analysis engine, following the flat-struct-plus-tags convention
// used elsewhere in this codebase's configuration layer.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GeneratorConfig mirrors graphgen.Config but with YAML tags and
// zero-value-means-default semantics, decoded at process start and
// converted to a graphgen.Config by the caller (internal/mcpserver).
type GeneratorConfig struct {
	SpacingX float32 `yaml:"spacing_x"`
	SpacingY float32 `yaml:"spacing_y"`
	SpacingZ float32 `yaml:"spacing_z"`

	MaxNodes int `yaml:"max_nodes"`

	UpStep       float32 `yaml:"up_step"`
	DownStep     float32 `yaml:"down_step"`
	UpSlopeDeg   float32 `yaml:"up_slope_deg"`
	DownSlopeDeg float32 `yaml:"down_slope_deg"`

	MaxStepConnections int `yaml:"max_step_connections"`
	MinConnections     int `yaml:"min_connections"`
	CoreCount          int `yaml:"core_count"`

	EightNeighborhood bool `yaml:"eight_neighborhood"`
}

// ViewAnalysisConfig mirrors viewanalysis.Params, decoded from YAML.
type ViewAnalysisConfig struct {
	RayCount     int     `yaml:"ray_count"`
	HeightOffset float32 `yaml:"height_offset"`
	MaxDistance  float32 `yaml:"max_distance"`
	UpFovDeg     float32 `yaml:"up_fov_deg"`
	DownFovDeg   float32 `yaml:"down_fov_deg"`
}

// Config is the top-level process configuration decoded from a single
// YAML file by Load.
type Config struct {
	MetricsAddr string             `yaml:"metrics_addr"`
	MCPAddr     string             `yaml:"mcp_addr"`
	Generator   GeneratorConfig    `yaml:"generator"`
	ViewAnalysis ViewAnalysisConfig `yaml:"view_analysis"`
}

// DefaultGeneratorConfig returns the zero-value-safe defaults applied
// after decode: spacing of 1 unit, 8-neighborhood expansion, a 45° slope
// ceiling in both directions, and worker count left to the runtime.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		SpacingX: 1, SpacingY: 1, SpacingZ: 1,
		UpStep: 0.3, DownStep: 0.3,
		UpSlopeDeg: 45, DownSlopeDeg: 45,
		MaxStepConnections: 1,
		MinConnections:     0,
		CoreCount:          -1,
		EightNeighborhood:  true,
	}
}

// DefaultViewAnalysisConfig returns the zero-value-safe defaults: a full
// sphere of 1000 rays, no height offset, and a generous max distance.
func DefaultViewAnalysisConfig() ViewAnalysisConfig {
	return ViewAnalysisConfig{
		RayCount:    1000,
		MaxDistance: 100,
		UpFovDeg:    0,
		DownFovDeg:  180,
	}
}

// Default returns a Config with every field at its documented default.
func Default() Config {
	return Config{
		MetricsAddr:  ":9090",
		MCPAddr:      ":7090",
		Generator:    DefaultGeneratorConfig(),
		ViewAnalysis: DefaultViewAnalysisConfig(),
	}
}

// Load reads and decodes path, applying defaults to any field the YAML
// document leaves at its zero value.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config %q: %w", path, err)
	}
	applyGeneratorDefaults(&cfg.Generator)
	applyViewAnalysisDefaults(&cfg.ViewAnalysis)
	return cfg, nil
}

func applyGeneratorDefaults(c *GeneratorConfig) {
	d := DefaultGeneratorConfig()
	if c.SpacingX == 0 {
		c.SpacingX = d.SpacingX
	}
	if c.SpacingY == 0 {
		c.SpacingY = d.SpacingY
	}
	if c.SpacingZ == 0 {
		c.SpacingZ = d.SpacingZ
	}
	if c.UpSlopeDeg == 0 {
		c.UpSlopeDeg = d.UpSlopeDeg
	}
	if c.DownSlopeDeg == 0 {
		c.DownSlopeDeg = d.DownSlopeDeg
	}
	if c.MaxStepConnections == 0 {
		c.MaxStepConnections = d.MaxStepConnections
	}
	if c.CoreCount == 0 {
		c.CoreCount = d.CoreCount
	}
}

func applyViewAnalysisDefaults(c *ViewAnalysisConfig) {
	d := DefaultViewAnalysisConfig()
	if c.RayCount == 0 {
		c.RayCount = d.RayCount
	}
	if c.MaxDistance == 0 {
		c.MaxDistance = d.MaxDistance
	}
	if c.DownFovDeg == 0 {
		c.DownFovDeg = d.DownFovDeg
	}
}
