package raytracer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/dhartgo/spatialcore/pkg/spatial"
)

// quadAtZero returns two triangles forming an axis-aligned plane at z=0 spanning
// [-size, size] in x and y.
func quadAtZero(size float32) ([]spatial.Vec3, []uint32) {
	v := []spatial.Vec3{
		{X: -size, Y: -size, Z: 0},
		{X: size, Y: -size, Z: 0},
		{X: size, Y: size, Z: 0},
		{X: -size, Y: size, Z: 0},
	}
	idx := []uint32{0, 1, 2, 0, 2, 3}
	return v, idx
}

func TestBuildRejectsEmptyMesh(t *testing.T) {
	if _, err := Build(nil, nil); err == nil {
		t.Fatalf("expected error building from empty buffers")
	}
}

func TestBuildRejectsOutOfRangeIndex(t *testing.T) {
	v, _ := quadAtZero(1)
	_, err := Build(v, []uint32{0, 1, 9})
	if err == nil {
		t.Fatalf("expected invalid-mesh error")
	}
}

func TestIntersectDownwardHitsPlane(t *testing.T) {
	v, idx := quadAtZero(5)
	scene, err := Build(v, idx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer scene.Close()

	hit := scene.Intersect(spatial.Vec3{X: 0, Y: 0, Z: 10}, spatial.Vec3{X: 0, Y: 0, Z: -1})
	if !hit.Hit {
		t.Fatalf("expected a hit")
	}
	if math.Abs(float64(hit.Distance-10)) > 1e-3 {
		t.Fatalf("hit distance = %v, want 10", hit.Distance)
	}
}

func TestIntersectMiss(t *testing.T) {
	v, idx := quadAtZero(5)
	scene, _ := Build(v, idx)
	defer scene.Close()

	hit := scene.Intersect(spatial.Vec3{X: 100, Y: 100, Z: 10}, spatial.Vec3{X: 0, Y: 0, Z: -1})
	if hit.Hit {
		t.Fatalf("expected a miss far from the plane")
	}
}

func TestOccludedRespectsMaxDistance(t *testing.T) {
	v, idx := quadAtZero(5)
	scene, _ := Build(v, idx)
	defer scene.Close()

	origin := spatial.Vec3{X: 0, Y: 0, Z: 10}
	dir := spatial.Vec3{X: 0, Y: 0, Z: -1}
	if scene.Occluded(origin, dir, 5) {
		t.Fatalf("plane is farther than max distance, should not be occluded")
	}
	if !scene.Occluded(origin, dir, 20) {
		t.Fatalf("plane is within max distance, should be occluded")
	}
}

func TestFireBundlePreservesOrder(t *testing.T) {
	v, idx := quadAtZero(5)
	scene, _ := Build(v, idx)
	defer scene.Close()

	n := 200
	origins := make([]spatial.Vec3, n)
	dirs := make([]spatial.Vec3, n)
	for i := 0; i < n; i++ {
		z := float32(1 + i)
		origins[i] = spatial.Vec3{X: 0, Y: 0, Z: z}
		dirs[i] = spatial.Vec3{X: 0, Y: 0, Z: -1}
	}

	hits, err := scene.FireBundle(context.Background(), origins, dirs)
	if err != nil {
		t.Fatalf("FireBundle: %v", err)
	}
	for i, h := range hits {
		if !h.Hit {
			t.Fatalf("ray %d: expected hit", i)
		}
		want := float32(1 + i)
		if math.Abs(float64(h.Distance-want)) > 1e-2 {
			t.Fatalf("ray %d: distance = %v, want %v", i, h.Distance, want)
		}
	}
}

func TestFireBundleRejectsShapeMismatch(t *testing.T) {
	v, idx := quadAtZero(5)
	scene, _ := Build(v, idx)
	defer scene.Close()

	origins := []spatial.Vec3{{X: 0, Y: 0, Z: 1}}
	dirs := []spatial.Vec3{{X: 0, Y: 0, Z: -1}, {X: 0, Y: 0, Z: -1}}

	if _, err := scene.FireBundle(context.Background(), origins, dirs); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("FireBundle with mismatched lengths: err = %v, want ErrShapeMismatch", err)
	}
}

func TestFireBundleCancellation(t *testing.T) {
	v, idx := quadAtZero(5)
	scene, _ := Build(v, idx)
	defer scene.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := 10000
	origins := make([]spatial.Vec3, n)
	dirs := make([]spatial.Vec3, n)
	_, err := scene.FireBundle(ctx, origins, dirs)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestHollowCubeViewFromCenter(t *testing.T) {
	// A hollow unit cube centered at the origin with inward-facing normals,
	// used by the view-analysis end-to-end scenario (spec §8 seed 5).
	verts, idx := hollowCube(1)
	scene, err := Build(verts, idx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer scene.Close()

	hit := scene.Intersect(spatial.Vec3{}, spatial.Vec3{X: 1, Y: 0, Z: 0})
	if !hit.Hit {
		t.Fatalf("expected to hit the +x face from the center")
	}
	if math.Abs(float64(hit.Distance-0.5)) > 1e-3 {
		t.Fatalf("distance = %v, want 0.5", hit.Distance)
	}
}

// hollowCube builds the six faces of an axis-aligned cube of the given side
// length, centered at the origin, as 12 triangles.
func hollowCube(side float32) ([]spatial.Vec3, []uint32) {
	h := side / 2
	v := []spatial.Vec3{
		{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h},
		{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h},
	}
	idx := []uint32{
		0, 1, 2, 0, 2, 3, // -z
		4, 6, 5, 4, 7, 6, // +z
		0, 4, 5, 0, 5, 1, // -y
		1, 5, 6, 1, 6, 2, // +x
		2, 6, 7, 2, 7, 3, // +y
		3, 7, 4, 3, 4, 0, // -x
	}
	return v, idx
}
