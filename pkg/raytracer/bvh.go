package raytracer

import (
	"math"
	"sort"

	"github.com/dhartgo/spatialcore/pkg/spatial"
)

// aabb is an axis-aligned bounding box.
type aabb struct {
	Min, Max spatial.Vec3
}

func emptyAABB() aabb {
	const inf = float32(math.MaxFloat32)
	return aabb{Min: spatial.Vec3{X: inf, Y: inf, Z: inf}, Max: spatial.Vec3{X: -inf, Y: -inf, Z: -inf}}
}

func (b aabb) expand(p spatial.Vec3) aabb {
	return aabb{
		Min: spatial.Vec3{X: min32(b.Min.X, p.X), Y: min32(b.Min.Y, p.Y), Z: min32(b.Min.Z, p.Z)},
		Max: spatial.Vec3{X: max32(b.Max.X, p.X), Y: max32(b.Max.Y, p.Y), Z: max32(b.Max.Z, p.Z)},
	}
}

func (b aabb) union(o aabb) aabb {
	return aabb{
		Min: spatial.Vec3{X: min32(b.Min.X, o.Min.X), Y: min32(b.Min.Y, o.Min.Y), Z: min32(b.Min.Z, o.Min.Z)},
		Max: spatial.Vec3{X: max32(b.Max.X, o.Max.X), Y: max32(b.Max.Y, o.Max.Y), Z: max32(b.Max.Z, o.Max.Z)},
	}
}

func (b aabb) centroid() spatial.Vec3 {
	return spatial.Scale(0.5, spatial.Add(b.Min, b.Max))
}

// intersectRay returns whether the ray hits the box within [0, tMax].
func (b aabb) intersectRay(origin, invDir spatial.Vec3, tMax float32) bool {
	tMin := float32(0)
	for axis := 0; axis < 3; axis++ {
		o, d, lo, hi := axisComponents(axis, origin, invDir, b)
		t1 := (lo - o) * d
		t2 := (hi - o) * d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}

func axisComponents(axis int, origin, invDir spatial.Vec3, b aabb) (o, d, lo, hi float32) {
	switch axis {
	case 0:
		return origin.X, invDir.X, b.Min.X, b.Max.X
	case 1:
		return origin.Y, invDir.Y, b.Min.Y, b.Max.Y
	default:
		return origin.Z, invDir.Z, b.Min.Z, b.Max.Z
	}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// bvhNode is one node of the array-backed bounding volume hierarchy.
// Leaves store a contiguous range [Start, Start+Count) into the BVH's
// triangle index permutation; interior nodes store both children's indices.
type bvhNode struct {
	Bounds    aabb
	Left      int32 // interior only
	Right     int32 // interior only
	Start     int32 // leaf only: start offset into tri order
	Count     int32 // leaf only: 0 for interior nodes
	SplitAxis int8
}

func (n *bvhNode) isLeaf() bool { return n.Count > 0 }

// BVH is a median-split bounding volume hierarchy over a Mesh's triangles,
// built once and immutable thereafter (spec §4.B).
type BVH struct {
	mesh     *Mesh
	nodes    []bvhNode
	triOrder []int32 // permutation of triangle indices, referenced by leaves
}

const leafSize = 4

func buildBVH(mesh *Mesh) *BVH {
	n := mesh.TriangleCount()
	triOrder := make([]int32, n)
	centroids := make([]spatial.Vec3, n)
	bounds := make([]aabb, n)
	for i := 0; i < n; i++ {
		triOrder[i] = int32(i)
		a, b, c := mesh.Triangle(i)
		box := emptyAABB().expand(a).expand(b).expand(c)
		bounds[i] = box
		centroids[i] = box.centroid()
	}

	b := &BVH{mesh: mesh, triOrder: triOrder}
	b.nodes = make([]bvhNode, 0, 2*n)
	b.build(0, n, bounds, centroids)
	return b
}

// build recursively partitions triOrder[start:end], appending nodes to
// b.nodes, and returns the index of the node it created.
func (b *BVH) build(start, end int, bounds []aabb, centroids []spatial.Vec3) int32 {
	box := emptyAABB()
	for i := start; i < end; i++ {
		box = box.union(bounds[b.triOrder[i]])
	}

	count := end - start
	if count <= leafSize {
		idx := int32(len(b.nodes))
		b.nodes = append(b.nodes, bvhNode{Bounds: box, Start: int32(start), Count: int32(count)})
		return idx
	}

	axis := longestAxis(box)
	slice := b.triOrder[start:end]
	sort.Slice(slice, func(i, j int) bool {
		return componentOf(centroids[slice[i]], axis) < componentOf(centroids[slice[j]], axis)
	})
	mid := start + count/2

	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, bvhNode{Bounds: box, SplitAxis: int8(axis)})
	left := b.build(start, mid, bounds, centroids)
	right := b.build(mid, end, bounds, centroids)
	b.nodes[idx].Left = left
	b.nodes[idx].Right = right
	return idx
}

func longestAxis(b aabb) int {
	ext := spatial.Sub(b.Max, b.Min)
	if ext.X >= ext.Y && ext.X >= ext.Z {
		return 0
	}
	if ext.Y >= ext.Z {
		return 1
	}
	return 2
}

func componentOf(v spatial.Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func invDirOf(d spatial.Vec3) spatial.Vec3 {
	return spatial.Vec3{X: safeInv(d.X), Y: safeInv(d.Y), Z: safeInv(d.Z)}
}

func safeInv(v float32) float32 {
	if v == 0 {
		return float32(math.Inf(1))
	}
	return 1 / v
}
