// Package spatial provides the 3-D numeric primitives shared by the rest of
// the toolkit: points, distances, and direction normalization.
//
// Internal arithmetic runs through gonum's r3.Vec at float64 precision and is
// truncated to float32 at the boundary, which keeps dot/cross products
// correctly rounded for the ray-triangle tests in package raytracer without
// hand-rolling vector algebra here.
package spatial

import (
	"cmp"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultEpsilon is the absolute tolerance used for componentwise Point
// equality and for quantizing positions into hash buckets.
const DefaultEpsilon float32 = 1e-4

// Vec3 is a 3-D point or direction with 32-bit components.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) r3() r3.Vec { return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)} }

func fromR3(v r3.Vec) Vec3 {
	return Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// Add returns a+b.
func Add(a, b Vec3) Vec3 { return fromR3(r3.Add(a.r3(), b.r3())) }

// Sub returns a-b.
func Sub(a, b Vec3) Vec3 { return fromR3(r3.Sub(a.r3(), b.r3())) }

// Scale returns s*v.
func Scale(s float32, v Vec3) Vec3 { return fromR3(r3.Scale(float64(s), v.r3())) }

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float32 { return float32(r3.Dot(a.r3(), b.r3())) }

// Cross returns the cross product a×b.
func Cross(a, b Vec3) Vec3 { return fromR3(r3.Cross(a.r3(), b.r3())) }

// Norm returns the Euclidean length of v.
func Norm(v Vec3) float32 { return float32(r3.Norm(v.r3())) }

// Distance returns the Euclidean L2 distance between a and b.
func Distance(a, b Vec3) float32 { return Norm(Sub(a, b)) }

// Normalize returns the unit vector in the direction of v. On a zero-length
// input it returns the zero vector; callers must check for that case
// themselves (spec §4.A).
func Normalize(v Vec3) Vec3 {
	n := r3.Norm(v.r3())
	if n == 0 {
		return Vec3{}
	}
	return fromR3(r3.Scale(1/n, v.r3()))
}

// EqualEpsilon reports whether a and b are equal within eps, componentwise.
func EqualEpsilon(a, b Vec3, eps float32) bool {
	return abs32(a.X-b.X) <= eps && abs32(a.Y-b.Y) <= eps && abs32(a.Z-b.Z) <= eps
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// QuantKey is the ε-bucketed coordinate tuple used to hash a Point into the
// Graph's id map: each coordinate is rounded to the nearest multiple of ε,
// so points in the same rounding cell share a key. Two points that compare
// equal under EqualEpsilon but lie on opposite sides of a cell boundary get
// different keys.
type QuantKey struct {
	X, Y, Z int32
}

// Quantize produces the bucket key for v under tolerance eps.
func Quantize(v Vec3, eps float32) QuantKey {
	inv := 1 / eps
	return QuantKey{
		X: int32(math.Round(float64(v.X * inv))),
		Y: int32(math.Round(float64(v.Y * inv))),
		Z: int32(math.Round(float64(v.Z * inv))),
	}
}

// Less gives QuantKey a total order, used to sort per-worker batches into a
// canonical order before they are drained into a Graph (spec §4.D).
func (k QuantKey) Less(o QuantKey) bool {
	if k.X != o.X {
		return k.X < o.X
	}
	if k.Y != o.Y {
		return k.Y < o.Y
	}
	return k.Z < o.Z
}

// IsValidWeight reports whether w is usable as an edge weight: finite and
// not NaN. NaN weights must never enter a cost table (spec §4.A).
func IsValidWeight(w float32) bool {
	return !math.IsNaN(float64(w)) && !math.IsInf(float64(w), 0)
}

// CompareTotalOrder imposes a total order on float32 costs so that
// tie-breaking logic never has to reason about NaN directly. Costs are
// expected to already be validated by IsValidWeight, but this keeps any
// accidental NaN from breaking heap invariants.
func CompareTotalOrder(a, b float32) int {
	return cmp.Compare(a, b)
}
