package raytracer

import (
	"math"

	"github.com/dhartgo/spatialcore/pkg/spatial"
)

// selfIntersectEpsilon offsets a ray's origin along the surface normal to
// avoid re-hitting the surface it was just cast from (spec §4.B).
const selfIntersectEpsilon float32 = 1e-4

// Ray is an origin + unit direction.
type Ray struct {
	Origin    spatial.Vec3
	Direction spatial.Vec3
}

// Offset returns a copy of the ray whose origin has been nudged by
// selfIntersectEpsilon along n, the surface normal it was cast from.
func (r Ray) Offset(n spatial.Vec3) Ray {
	return Ray{Origin: spatial.Add(r.Origin, spatial.Scale(selfIntersectEpsilon, n)), Direction: r.Direction}
}

// Hit describes the closest intersection of a ray against a scene.
type Hit struct {
	Hit        bool
	Distance   float32
	TriangleID int
	MeshID     int
}

// intersectTriangle implements the Möller–Trumbore ray-triangle
// intersection test. It returns the hit distance t along the ray and true
// if the ray hits the triangle at t >= epsilon.
func intersectTriangle(origin, dir, a, b, c spatial.Vec3) (t float32, ok bool) {
	const epsilon = 1e-7

	edge1 := spatial.Sub(b, a)
	edge2 := spatial.Sub(c, a)
	h := spatial.Cross(dir, edge2)
	det := spatial.Dot(edge1, h)
	if det > -epsilon && det < epsilon {
		return 0, false // ray parallel to the triangle's plane
	}
	invDet := 1 / det
	s := spatial.Sub(origin, a)
	u := invDet * spatial.Dot(s, h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := spatial.Cross(s, edge1)
	v := invDet * spatial.Dot(dir, q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t = invDet * spatial.Dot(edge2, q)
	if t <= epsilon {
		return 0, false
	}
	return t, true
}

func isFiniteVec(v spatial.Vec3) bool {
	return !math.IsNaN(float64(v.X)) && !math.IsNaN(float64(v.Y)) && !math.IsNaN(float64(v.Z))
}
