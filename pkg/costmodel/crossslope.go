// Package costmodel derives alternate Graph cost layers — cross-slope and
// energy — from a compressed default layer and, for cross-slope, the mesh
// the graph was generated over (spec §4.E).
package costmodel

import (
	"math"

	"github.com/dhartgo/spatialcore/pkg/graph"
	"github.com/dhartgo/spatialcore/pkg/raytracer"
	"github.com/dhartgo/spatialcore/pkg/spatial"
)

// CrossSlopeLayer is the cost-layer name cross-slope values are stored
// under (spec §4.E).
const CrossSlopeLayer = "cross_slope"

// defaultProbeOffset is the half-width, in plan-distance, of the
// perpendicular probe cast on each side of an edge's midpoint.
const defaultProbeOffset float32 = 0.25

// ComputeCrossSlope walks every edge of g's default layer, casts a downward
// ray at a probe point offset perpendicular to the walking direction on
// each side of the edge's midpoint, and stores the terrain slope between
// the two probe hits (in degrees) as the
// cross_slope layer. Edges with zero horizontal extent (pure vertical
// moves) are skipped, matching the energy layer's convention for
// slope-undefined edges.
func ComputeCrossSlope(g *graph.Graph, scene *raytracer.Scene) error {
	sets, err := g.GetEdges()
	if err != nil {
		return err
	}

	var triplets []graph.Triplet
	for _, es := range sets {
		parent, err := g.NodeFromID(es.Parent)
		if err != nil {
			continue
		}
		for _, cw := range es.Children {
			child, err := g.NodeFromID(cw.Child)
			if err != nil {
				continue
			}
			slopeDeg, ok := crossSlopeOf(scene, parent.Position, child.Position)
			if !ok {
				continue
			}
			triplets = append(triplets, graph.Triplet{Parent: es.Parent, Child: cw.Child, Weight: slopeDeg})
		}
	}
	return g.AttachCostLayer(CrossSlopeLayer, triplets)
}

func crossSlopeOf(scene *raytracer.Scene, parent, child spatial.Vec3) (float32, bool) {
	walk := spatial.Vec3{X: child.X - parent.X, Y: child.Y - parent.Y, Z: 0}
	horiz := spatial.Norm(walk)
	if horiz == 0 {
		return 0, false
	}
	dir := spatial.Scale(1/horiz, walk)
	perp := spatial.Vec3{X: -dir.Y, Y: dir.X, Z: 0}

	mid := spatial.Scale(0.5, spatial.Add(parent, child))
	left := spatial.Add(mid, spatial.Scale(defaultProbeOffset, perp))
	right := spatial.Sub(mid, spatial.Scale(defaultProbeOffset, perp))

	leftZ, leftOK := castDown(scene, left)
	rightZ, rightOK := castDown(scene, right)
	if !leftOK || !rightOK {
		return 0, false
	}

	dz := leftZ - rightZ
	theta := float32(math.Atan2(float64(abs32(dz)), float64(2*defaultProbeOffset))) * 180 / math.Pi
	return theta, true
}

func castDown(scene *raytracer.Scene, p spatial.Vec3) (float32, bool) {
	const probeHeight = 10
	hit := scene.Intersect(spatial.Vec3{X: p.X, Y: p.Y, Z: p.Z + probeHeight}, spatial.Vec3{X: 0, Y: 0, Z: -1})
	if !hit.Hit {
		return 0, false
	}
	return p.Z + probeHeight - hit.Distance, true
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
