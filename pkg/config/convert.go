package config

import (
	"github.com/dhartgo/spatialcore/pkg/graphgen"
	"github.com/dhartgo/spatialcore/pkg/spatial"
	"github.com/dhartgo/spatialcore/pkg/viewanalysis"
)

// ToGraphgenConfig builds a graphgen.Config from the decoded YAML fields
// plus the seed start position, which is supplied per-request rather than
// read from the config file.
func (c GeneratorConfig) ToGraphgenConfig(start spatial.Vec3) graphgen.Config {
	return graphgen.Config{
		Start:              start,
		SpacingX:           c.SpacingX,
		SpacingY:           c.SpacingY,
		SpacingZ:           c.SpacingZ,
		MaxNodes:           c.MaxNodes,
		UpStep:             c.UpStep,
		DownStep:           c.DownStep,
		UpSlopeDeg:         c.UpSlopeDeg,
		DownSlopeDeg:       c.DownSlopeDeg,
		MaxStepConnections: c.MaxStepConnections,
		MinConnections:     c.MinConnections,
		CoreCount:          c.CoreCount,
		EightNeighborhood:  c.EightNeighborhood,
	}
}

// ToViewAnalysisParams builds a viewanalysis.Params from the decoded YAML
// fields.
func (c ViewAnalysisConfig) ToViewAnalysisParams() viewanalysis.Params {
	return viewanalysis.Params{
		RayCount:     c.RayCount,
		HeightOffset: c.HeightOffset,
		MaxDistance:  c.MaxDistance,
		UpFovDeg:     c.UpFovDeg,
		DownFovDeg:   c.DownFovDeg,
	}
}
