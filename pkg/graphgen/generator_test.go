package graphgen

import (
	"context"
	"errors"
	"testing"

	"github.com/dhartgo/spatialcore/pkg/graph"
	"github.com/dhartgo/spatialcore/pkg/raytracer"
	"github.com/dhartgo/spatialcore/pkg/spatial"
)

// flatPlane builds a single large two-triangle quad at z=0, big enough that
// a 10x10 grid with 1-unit spacing stays within it.
func flatPlane(half float32) (*raytracer.Scene, error) {
	verts := []spatial.Vec3{
		{X: -half, Y: -half, Z: 0},
		{X: half, Y: -half, Z: 0},
		{X: half, Y: half, Z: 0},
		{X: -half, Y: half, Z: 0},
	}
	idx := []uint32{0, 1, 2, 0, 2, 3}
	return raytracer.Build(verts, idx)
}

func baseConfig(start spatial.Vec3) Config {
	return Config{
		Start:             start,
		SpacingX:          1,
		SpacingY:          1,
		SpacingZ:          1,
		UpStep:            0.1,
		DownStep:          0.1,
		UpSlopeDeg:        45,
		DownSlopeDeg:      45,
		MaxStepConnections: 1,
		EightNeighborhood: true,
	}
}

func TestGenerateFlatPlaneYieldsGrid(t *testing.T) {
	scene, err := flatPlane(20)
	if err != nil {
		t.Fatalf("flatPlane: %v", err)
	}
	defer scene.Close()

	cfg := baseConfig(spatial.Vec3{X: 0, Y: 0, Z: 1})
	cfg.MaxNodes = 100

	g := graph.New()
	defer g.Close()

	if err := Generate(context.Background(), scene, g, cfg); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if g.Len() == 0 {
		t.Fatalf("expected nodes on a flat walkable plane, got 0")
	}
	if g.NeedsCompression() {
		t.Fatalf("Generate must leave the graph compressed")
	}
}

func TestGenerateNoGroundFails(t *testing.T) {
	scene, err := flatPlane(5)
	if err != nil {
		t.Fatalf("flatPlane: %v", err)
	}
	defer scene.Close()

	// Start far outside the plane's extent, so the downward probe from
	// above the start position misses the mesh entirely.
	cfg := baseConfig(spatial.Vec3{X: 100, Y: 100, Z: 1})
	cfg.UpStep = 0.01

	g := graph.New()
	defer g.Close()

	if err := Generate(context.Background(), scene, g, cfg); !errors.Is(err, ErrNoGround) {
		t.Fatalf("Generate off-mesh: err = %v, want ErrNoGround", err)
	}
}

func TestGenerateMaxNodesOneReturnsSeedOnly(t *testing.T) {
	scene, err := flatPlane(20)
	if err != nil {
		t.Fatalf("flatPlane: %v", err)
	}
	defer scene.Close()

	cfg := baseConfig(spatial.Vec3{X: 0, Y: 0, Z: 1})
	cfg.MaxNodes = 1

	g := graph.New()
	defer g.Close()

	if err := Generate(context.Background(), scene, g, cfg); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := g.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1 (seed only)", got)
	}
	edges, err := g.GetEdges()
	if err != nil {
		t.Fatalf("GetEdges: %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("expected zero edges at max_nodes=1, got %d parents with edges", len(edges))
	}
}

func TestGenerateRespectsCancellation(t *testing.T) {
	scene, err := flatPlane(50)
	if err != nil {
		t.Fatalf("flatPlane: %v", err)
	}
	defer scene.Close()

	cfg := baseConfig(spatial.Vec3{X: 0, Y: 0, Z: 1})
	cfg.MaxNodes = 0 // unbounded, so it needs several frontier rounds

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := graph.New()
	defer g.Close()

	if err := Generate(ctx, scene, g, cfg); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Generate with pre-cancelled context: err = %v, want ErrCancelled", err)
	}
}

func TestGenerateWeightsMatchSpacing(t *testing.T) {
	scene, err := flatPlane(20)
	if err != nil {
		t.Fatalf("flatPlane: %v", err)
	}
	defer scene.Close()

	cfg := baseConfig(spatial.Vec3{X: 0, Y: 0, Z: 1})
	cfg.MaxNodes = 9 // small enough to stay well inside the plane

	g := graph.New()
	defer g.Close()
	if err := Generate(context.Background(), scene, g, cfg); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	edgeSets, err := g.GetEdges()
	if err != nil {
		t.Fatalf("GetEdges: %v", err)
	}
	for _, es := range edgeSets {
		for _, cw := range es.Children {
			if cw.Weight < 0.99 || cw.Weight > 1.42 {
				t.Fatalf("edge weight %v out of expected [1, sqrt(2)] range for unit spacing", cw.Weight)
			}
		}
	}
}
