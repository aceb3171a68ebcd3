// Package raytracer implements a BVH-backed closest-hit / occlusion ray
// tracer over one or more triangle meshes (spec §4.B). A Scene is the
// "embree-like" multi-mesh container: each mesh added to it gets its own
// integer mesh id, and hit results report both the triangle id (local to
// its mesh) and the mesh id.
package raytracer

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"

	"github.com/dhartgo/spatialcore/pkg/metrics"
	"github.com/dhartgo/spatialcore/pkg/spatial"
)

type builtMesh struct {
	mesh *Mesh
	bvh  *BVH
}

// Scene owns one or more built meshes and is safe for concurrent read-only
// queries once Build/AddMesh has returned (spec §5: "Ray-tracer scene:
// read-only after build, freely shared").
type Scene struct {
	meshes []builtMesh
	closed bool
}

// NewScene creates an empty, mutable scene.
func NewScene() *Scene {
	metrics.LiveScenes.Inc()
	return &Scene{}
}

// Build constructs a single-mesh scene in one step — the common case
// described in spec §4.B's build(vertices, indices) contract.
func Build(vertices []spatial.Vec3, indices []uint32) (*Scene, error) {
	mesh, err := NewMesh(vertices, indices)
	if err != nil {
		return nil, err
	}
	s := NewScene()
	s.AddMesh(mesh)
	return s, nil
}

// AddMesh adds mesh to the scene and returns its mesh id.
func (s *Scene) AddMesh(mesh *Mesh) int {
	id := len(s.meshes)
	s.meshes = append(s.meshes, builtMesh{mesh: mesh, bvh: buildBVH(mesh)})
	return id
}

// Close releases the scene. Graphs generated from this scene do not retain
// a reference to it and remain valid after Close (spec §6 lifetime rule).
func (s *Scene) Close() error {
	if !s.closed {
		s.closed = true
		metrics.LiveScenes.Dec()
	}
	s.meshes = nil
	return nil
}

// Intersect finds the closest hit along a unit ray across every mesh in
// the scene.
func (s *Scene) Intersect(origin, direction spatial.Vec3) Hit {
	if !isFiniteVec(direction) {
		return Hit{}
	}
	best := Hit{Distance: positiveInf()}
	for meshID, bm := range s.meshes {
		tri, dist, ok := bm.bvh.closestHit(origin, direction, best.Distance)
		if ok {
			best = Hit{Hit: true, Distance: dist, TriangleID: tri, MeshID: meshID}
		}
	}
	if !best.Hit {
		return Hit{}
	}
	return best
}

// Occluded reports whether any mesh is hit within [0, maxDistance].
func (s *Scene) Occluded(origin, direction spatial.Vec3, maxDistance float32) bool {
	if !isFiniteVec(direction) {
		return false
	}
	for _, bm := range s.meshes {
		if bm.bvh.anyHit(origin, direction, maxDistance) {
			return true
		}
	}
	return false
}

// rayBatchChunk picks a per-worker chunk size for FireBundle. On hosts with
// wide SIMD (AVX2) the underlying Vec3 math pipelines better with larger
// contiguous chunks; elsewhere a conservative default keeps scheduling
// overhead low without assuming anything about cache size.
func rayBatchChunk(total int) int {
	chunk := 256
	if cpuid.CPU.Has(cpuid.AVX2) {
		chunk = 1024
	}
	if chunk > total {
		chunk = total
	}
	if chunk < 1 {
		chunk = 1
	}
	return chunk
}

// FireBundle fires one ray per (origins[i], directions[i]) pair in
// parallel and returns results in input order (spec §4.B, §5).
func (s *Scene) FireBundle(ctx context.Context, origins, directions []spatial.Vec3) ([]Hit, error) {
	if len(origins) != len(directions) {
		return nil, fmt.Errorf("%w: %d origins, %d directions", ErrShapeMismatch, len(origins), len(directions))
	}
	n := len(origins)
	results := make([]Hit, n)
	if n == 0 {
		return results, nil
	}

	chunk := rayBatchChunk(n)
	workers := runtime.GOMAXPROCS(0)
	jobs := make(chan [2]int, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				for i := r[0]; i < r[1]; i++ {
					results[i] = s.Intersect(origins[i], directions[i])
				}
			}
		}()
	}

	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- [2]int{start, end}:
		}
	}
	close(jobs)
	wg.Wait()
	return results, nil
}
