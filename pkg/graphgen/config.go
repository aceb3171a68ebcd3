package graphgen

import "github.com/dhartgo/spatialcore/pkg/spatial"

// Config parameterizes a single Generate call (spec §4.D). The zero value
// for the slope/step bounds is the most restrictive setting — it rejects
// every candidate with any rise, drop, or slope at all — not "anything is
// accepted", so a Config built by decoding YAML (pkg/config) must apply
// the documented defaults before use — see pkg/config.Load.
type Config struct {
	Start spatial.Vec3

	SpacingX, SpacingY, SpacingZ float32

	MaxNodes int // 0 = unbounded

	UpStep, DownStep   float32
	UpSlopeDeg         float32
	DownSlopeDeg       float32

	MaxStepConnections int
	MinConnections     int

	// CoreCount is the worker-parallelism hint; -1 resolves to
	// runtime.GOMAXPROCS(0).
	CoreCount int

	// EightNeighborhood selects 8 compass offsets per node instead of 4.
	// The zero value selects 4; pkg/config's DefaultGeneratorConfig sets it
	// to true (spec §4.D step 3a "default 8").
	EightNeighborhood bool
}

var compass4 = [4][2]float32{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
}

var compass8 = [8][2]float32{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

func (c Config) offsets() [][2]float32 {
	if c.EightNeighborhood {
		out := make([][2]float32, len(compass8))
		copy(out, compass8[:])
		return out
	}
	out := make([][2]float32, len(compass4))
	copy(out, compass4[:])
	return out
}
