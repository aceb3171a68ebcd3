// Package pathfinder implements single-pair, multi-pair, and all-pairs
// Dijkstra shortest paths over a Graph's CSR cost layers (spec §4.F).
package pathfinder

import "github.com/dhartgo/spatialcore/pkg/graph"

// PathMember is one node along a Path, with the edge cost that led to it.
// The first member of any Path always has CostFromParent == 0 (spec §3).
type PathMember struct {
	NodeID         int
	CostFromParent float32
}

// Path is an ordered sequence of PathMembers. Found is false when no path
// exists between the requested endpoints — "no path" is modeled as a
// sentinel value rather than an error (spec §7, §9 "model as a sum type").
type Path struct {
	Members []PathMember
	Found   bool
}

// TotalCost sums every member's CostFromParent (the first is always 0).
func (p Path) TotalCost() float32 {
	var total float32
	for _, m := range p.Members {
		total += m.CostFromParent
	}
	return total
}

func singleNodePath(id int) Path {
	return Path{Members: []PathMember{{NodeID: id, CostFromParent: 0}}, Found: true}
}

func emptyPath() Path { return Path{Found: false} }

// layerOf resolves a layer name to its CSR ("" selects the default layer).
func layerOf(g *graph.Graph, layer string) (*graph.CSR, error) {
	return g.Layer(layer)
}
