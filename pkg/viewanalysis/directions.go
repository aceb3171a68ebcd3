// Package viewanalysis casts stratified ray bundles from graph nodes
// against a scene and aggregates the hits into per-node scores (spec
// §4.G).
package viewanalysis

import (
	"math"

	"github.com/dhartgo/spatialcore/pkg/spatial"
)

// FibonacciDirections returns n near-uniformly distributed unit directions
// over the sphere, restricted to the polar range [upFovDeg, downFovDeg]
// measured from straight up (0°) to straight down (180°). Directions
// outside the fov are discarded, so the returned slice may be shorter than
// n (spec §4.G).
func FibonacciDirections(n int, upFovDeg, downFovDeg float32) []spatial.Vec3 {
	if n <= 0 {
		return nil
	}
	const goldenAngle = math.Pi * (1 + 2.23606797749979) // π(1+√5)

	out := make([]spatial.Vec3, 0, n)
	for i := 0; i < n; i++ {
		theta := math.Acos(1 - 2*(float64(i)+0.5)/float64(n))
		phi := goldenAngle * float64(i)

		thetaDeg := theta * 180 / math.Pi
		if thetaDeg < float64(upFovDeg) || thetaDeg > float64(downFovDeg) {
			continue
		}

		sinTheta := math.Sin(theta)
		out = append(out, spatial.Vec3{
			X: float32(sinTheta * math.Cos(phi)),
			Y: float32(sinTheta * math.Sin(phi)),
			Z: float32(math.Cos(theta)),
		})
	}
	return out
}
