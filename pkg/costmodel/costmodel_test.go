package costmodel

import (
	"testing"

	"github.com/dhartgo/spatialcore/pkg/graph"
	"github.com/dhartgo/spatialcore/pkg/raytracer"
	"github.com/dhartgo/spatialcore/pkg/spatial"
)

func v(x, y, z float32) spatial.Vec3 { return spatial.Vec3{X: x, Y: y, Z: z} }

func flatScene(t *testing.T, half float32) *raytracer.Scene {
	verts := []spatial.Vec3{
		{X: -half, Y: -half, Z: 0},
		{X: half, Y: -half, Z: 0},
		{X: half, Y: half, Z: 0},
		{X: -half, Y: half, Z: 0},
	}
	idx := []uint32{0, 1, 2, 0, 2, 3}
	scene, err := raytracer.Build(verts, idx)
	if err != nil {
		t.Fatalf("raytracer.Build: %v", err)
	}
	t.Cleanup(func() { scene.Close() })
	return scene
}

func TestComputeCrossSlopeFlatGroundIsZero(t *testing.T) {
	scene := flatScene(t, 20)
	g := graph.New()
	t.Cleanup(func() { g.Close() })

	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1)
	g.Compress()

	if err := ComputeCrossSlope(g, scene); err != nil {
		t.Fatalf("ComputeCrossSlope: %v", err)
	}
	layer, err := g.Layer(CrossSlopeLayer)
	if err != nil {
		t.Fatalf("Layer: %v", err)
	}
	w, ok := layer.Get(0, 1)
	if !ok {
		t.Fatalf("expected cross_slope entry for (0,1)")
	}
	if w > 0.5 {
		t.Fatalf("cross_slope on perfectly flat ground = %v, want ~0", w)
	}
}

func TestComputeEnergySkipsZeroHorizontalEdges(t *testing.T) {
	g := graph.New()
	t.Cleanup(func() { g.Close() })

	g.AddEdge(v(0, 0, 0), v(0, 0, 1), 1) // pure vertical: undefined gradient
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1)
	g.Compress()

	if err := ComputeEnergy(g); err != nil {
		t.Fatalf("ComputeEnergy: %v", err)
	}
	layer, err := g.Layer(EnergyLayer)
	if err != nil {
		t.Fatalf("Layer: %v", err)
	}
	id0, _ := g.IDOf(v(0, 0, 0))
	id1, _ := g.IDOf(v(0, 0, 1))
	id2, _ := g.IDOf(v(1, 0, 0))

	if _, ok := layer.Get(id0, id1); ok {
		t.Fatalf("energy layer should omit the zero-horizontal-distance edge")
	}
	if _, ok := layer.Get(id0, id2); !ok {
		t.Fatalf("energy layer should contain the flat-walk edge")
	}
}

func TestMinettiCostUphillExceedsFlat(t *testing.T) {
	flat := minettiCost(0)
	steep := minettiCost(0.3)
	if flat <= 0 {
		t.Fatalf("minettiCost(0) = %v, want > 0 (walking always costs energy)", flat)
	}
	if steep <= flat {
		t.Fatalf("minettiCost(0.3) = %v, should exceed minettiCost(0) = %v", steep, flat)
	}
}
