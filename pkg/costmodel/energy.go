package costmodel

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/dhartgo/spatialcore/pkg/graph"
)

// EnergyLayer is the cost-layer name energy values are stored under
// (spec §4.E).
const EnergyLayer = "energy"

// minettiCoefficients are the published pedestrian energy-cost-of-walking
// coefficients (joules per kilogram per meter, as a function of gradient),
// from Minetti et al.'s piecewise-polynomial model, highest power first to
// match the descending powers built by slopePowers.
var minettiCoefficients = []float64{280.5, -58.7, -76.8, 51.9, 19.6, 2.5}

// minettiCost evaluates the Minetti energy-cost curve at gradient i
// (rise/run, dimensionless) via a dot product against precomputed powers
// of i, rather than an unrolled polynomial (SPEC_FULL §4.E).
func minettiCost(gradient float64) float64 {
	powers := slopePowers(gradient, len(minettiCoefficients)-1)
	return floats.Dot(minettiCoefficients, powers)
}

// slopePowers returns [i^degree, i^(degree-1), ..., i^1, i^0].
func slopePowers(i float64, degree int) []float64 {
	out := make([]float64, degree+1)
	p := 1.0
	for k := degree; k >= 0; k-- {
		out[k] = p
		p *= i
	}
	return out
}

// ComputeEnergy walks every edge of g's default layer and stores the
// Minetti energy cost (joules per kilogram, scaled by the edge's
// horizontal distance) as the energy layer. Edges with zero horizontal
// distance have an undefined gradient and are omitted (spec §4.E).
func ComputeEnergy(g *graph.Graph) error {
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
			dx := child.Position.X - parent.Position.X
			dy := child.Position.Y - parent.Position.Y
			horiz := float64(dx*dx + dy*dy)
			if horiz == 0 {
				continue
			}
			horiz = math.Sqrt(horiz)
			gradient := float64(child.Position.Z-parent.Position.Z) / horiz
			cost := minettiCost(gradient) * horiz
			triplets = append(triplets, graph.Triplet{Parent: es.Parent, Child: cw.Child, Weight: float32(cost)})
		}
	}
	return g.AttachCostLayer(EnergyLayer, triplets)
}
