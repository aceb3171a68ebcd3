package raytracer

import (
	"math"

	"github.com/dhartgo/spatialcore/pkg/spatial"
)

// closestHit walks the BVH and returns the nearest triangle the ray hits
// within (0, maxDist], or ok=false on a miss.
func (b *BVH) closestHit(origin, dir spatial.Vec3, maxDist float32) (triangle int, dist float32, ok bool) {
	if len(b.nodes) == 0 {
		return 0, 0, false
	}
	invDir := invDirOf(dir)
	best := maxDist
	bestTri := -1

	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		node := &b.nodes[stack[sp]]
		if !node.Bounds.intersectRay(origin, invDir, best) {
			continue
		}
		if node.isLeaf() {
			for i := node.Start; i < node.Start+node.Count; i++ {
				triIdx := int(b.triOrder[i])
				a, v1, v2 := b.mesh.Triangle(triIdx)
				if t, hit := intersectTriangle(origin, dir, a, v1, v2); hit && t < best {
					best = t
					bestTri = triIdx
				}
			}
			continue
		}
		stack[sp] = node.Left
		sp++
		stack[sp] = node.Right
		sp++
	}

	if bestTri < 0 {
		return 0, 0, false
	}
	return bestTri, best, true
}

// anyHit reports whether the ray hits anything within (0, maxDist) — used
// for occlusion queries, which need no closest-hit bookkeeping.
func (b *BVH) anyHit(origin, dir spatial.Vec3, maxDist float32) bool {
	if len(b.nodes) == 0 {
		return false
	}
	invDir := invDirOf(dir)

	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		node := &b.nodes[stack[sp]]
		if !node.Bounds.intersectRay(origin, invDir, maxDist) {
			continue
		}
		if node.isLeaf() {
			for i := node.Start; i < node.Start+node.Count; i++ {
				triIdx := int(b.triOrder[i])
				a, v1, v2 := b.mesh.Triangle(triIdx)
				if t, hit := intersectTriangle(origin, dir, a, v1, v2); hit && t < maxDist {
					return true
				}
			}
			continue
		}
		stack[sp] = node.Left
		sp++
		stack[sp] = node.Right
		sp++
	}
	return false
}

func positiveInf() float32 { return float32(math.Inf(1)) }
