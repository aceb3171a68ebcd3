package graph

import (
	"errors"
	"testing"

	"github.com/dhartgo/spatialcore/pkg/spatial"
)

func v(x, y, z float32) spatial.Vec3 { return spatial.Vec3{X: x, Y: y, Z: z} }

func TestAddEdgeAssignsDenseIDs(t *testing.T) {
	g := New()
	defer g.Close()

	if err := g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1.5); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge(v(1, 0, 0), v(2, 0, 0), 2.5); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	g.Compress()

	if got := g.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	id0, ok := g.IDOf(v(0, 0, 0))
	if !ok || id0 != 0 {
		t.Fatalf("IDOf(origin) = (%d,%v), want (0,true)", id0, ok)
	}
	w, ok := g.defaultCSR.Get(0, 1)
	if !ok || w != 1.5 {
		t.Fatalf("edge (0,1) = (%v,%v), want (1.5,true)", w, ok)
	}
}

func TestAddEdgeRejectsInvalidWeight(t *testing.T) {
	g := New()
	defer g.Close()

	nan := float32(0)
	nan = nan / nan
	if err := g.AddEdge(v(0, 0, 0), v(1, 0, 0), nan); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("AddEdge(NaN) error = %v, want ErrInvalidWeight", err)
	}
}

func TestUncompressedQueriesFail(t *testing.T) {
	g := New()
	defer g.Close()
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1)
	if _, err := g.GetEdges(); !errors.Is(err, ErrUncompressed) {
		t.Fatalf("GetEdges before Compress: err = %v, want ErrUncompressed", err)
	}
}

func TestCompressLastWriteWins(t *testing.T) {
	g := New()
	defer g.Close()
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1)
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 9) // duplicate pair, later weight should win
	g.Compress()

	w, ok := g.defaultCSR.Get(0, 1)
	if !ok || w != 9 {
		t.Fatalf("Get(0,1) = (%v,%v), want (9,true)", w, ok)
	}
	if nnz := g.defaultCSR.NNZ(); nnz != 1 {
		t.Fatalf("NNZ() = %d, want 1 (duplicate collapsed)", nnz)
	}
}

func TestCompressIsIdempotent(t *testing.T) {
	g := New()
	defer g.Close()
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1)
	g.Compress()
	first := *g.defaultCSR
	g.Compress() // no new edges staged
	second := *g.defaultCSR

	if first.NNZ() != second.NNZ() || first.Rows != second.Rows {
		t.Fatalf("Compress() without new edges changed the CSR: %+v vs %+v", first, second)
	}
}

func TestSpecExampleCSR(t *testing.T) {
	// The worked example from the specification: three points on a line,
	// edges 0->1 weight 1, 1->2 weight 1, 0->2 weight 2.
	g := New()
	defer g.Close()
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1)
	g.AddEdge(v(1, 0, 0), v(2, 0, 0), 1)
	g.AddEdge(v(0, 0, 0), v(2, 0, 0), 2)
	g.Compress()

	ptrs := g.GetCSRPointers()
	if ptrs.Rows != 3 || ptrs.NNZ != 3 {
		t.Fatalf("CSRPtrs = %+v, want Rows=3 NNZ=3", ptrs)
	}
	edges, err := g.GetEdges()
	if err != nil {
		t.Fatalf("GetEdges: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("len(edges) = %d, want 2 parents with outgoing edges", len(edges))
	}
}

func TestAggregateGraphSumAndCount(t *testing.T) {
	g := New()
	defer g.Close()
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1)
	g.AddEdge(v(0, 0, 0), v(2, 0, 0), 2)
	g.Compress()

	sums, err := g.AggregateGraph(Sum, true)
	if err != nil {
		t.Fatalf("AggregateGraph(Sum): %v", err)
	}
	if sums[0] != 3 {
		t.Fatalf("sums[0] = %v, want 3", sums[0])
	}

	counts, err := g.AggregateGraph(Count, true)
	if err != nil {
		t.Fatalf("AggregateGraph(Count): %v", err)
	}
	if counts[0] != 2 {
		t.Fatalf("counts[0] = %v, want 2", counts[0])
	}
	if counts[1] != 0 {
		t.Fatalf("counts[1] = %v, want 0 (leaf node)", counts[1])
	}
}

func TestAggregateGraphAverageOfNoEdgesIsZero(t *testing.T) {
	g := New()
	defer g.Close()
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 4)
	g.Compress()

	avgs, err := g.AggregateGraph(Average, true)
	if err != nil {
		t.Fatalf("AggregateGraph(Average): %v", err)
	}
	if avgs[1] != 0 {
		t.Fatalf("avgs[1] = %v, want 0", avgs[1])
	}
	if avgs[0] != 4 {
		t.Fatalf("avgs[0] = %v, want 4", avgs[0])
	}
}

func TestAttachCostLayerRejectsUnknownEdge(t *testing.T) {
	g := New()
	defer g.Close()
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1)
	g.Compress()

	err := g.AttachCostLayer("energy", []Triplet{{Parent: 0, Child: 5, Weight: 1}})
	if !errors.Is(err, ErrNoSuchEdge) {
		t.Fatalf("AttachCostLayer with unknown edge: err = %v, want ErrNoSuchEdge", err)
	}
}

func TestAttachCostLayerIsSubsetOfDefault(t *testing.T) {
	g := New()
	defer g.Close()
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1)
	g.AddEdge(v(1, 0, 0), v(2, 0, 0), 1)
	g.Compress()

	if err := g.AttachCostLayer("energy", []Triplet{{Parent: 0, Child: 1, Weight: 7}}); err != nil {
		t.Fatalf("AttachCostLayer: %v", err)
	}
	layer, err := g.Layer("energy")
	if err != nil {
		t.Fatalf("Layer: %v", err)
	}
	if w, ok := layer.Get(0, 1); !ok || w != 7 {
		t.Fatalf("layer.Get(0,1) = (%v,%v), want (7,true)", w, ok)
	}
	if _, ok := layer.Get(1, 2); ok {
		t.Fatalf("layer contains an edge not explicitly attached")
	}
}

func TestNodeFromIDRoundTrip(t *testing.T) {
	g := New()
	defer g.Close()
	p := v(3, 4, 5)
	g.AddEdge(p, v(0, 0, 0), 1)
	g.Compress()

	id, ok := g.IDOf(p)
	if !ok {
		t.Fatalf("IDOf did not find point just inserted")
	}
	node, err := g.NodeFromID(id)
	if err != nil {
		t.Fatalf("NodeFromID: %v", err)
	}
	if !spatial.EqualEpsilon(node.Position, p, 1e-6) {
		t.Fatalf("NodeFromID position = %+v, want %+v", node.Position, p)
	}
}

func TestNodeFromIDOutOfRange(t *testing.T) {
	g := New()
	defer g.Close()
	if _, err := g.NodeFromID(42); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("NodeFromID(42) on empty graph: err = %v, want ErrOutOfRange", err)
	}
}

func TestHasEdgeUndirected(t *testing.T) {
	g := New()
	defer g.Close()
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1)
	g.Compress()

	has, err := g.HasEdge(v(1, 0, 0), v(0, 0, 0), false)
	if err != nil {
		t.Fatalf("HasEdge: %v", err)
	}
	if has {
		t.Fatalf("directed HasEdge(1,0) should be false; only 0->1 was added")
	}
	has, err = g.HasEdge(v(1, 0, 0), v(0, 0, 0), true)
	if err != nil {
		t.Fatalf("HasEdge: %v", err)
	}
	if !has {
		t.Fatalf("undirected HasEdge(1,0) should be true given 0->1")
	}
}

func TestFromArraysShapeMismatch(t *testing.T) {
	nodes := []spatial.Vec3{v(0, 0, 0), v(1, 0, 0)}
	edges := [][]int{{1}}
	distances := [][]float32{{1}}
	if _, err := FromArrays(nodes, edges, distances); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("FromArrays with mismatched lengths: err = %v, want ErrShapeMismatch", err)
	}
}

func TestFromArraysBuildsCompressedGraph(t *testing.T) {
	nodes := []spatial.Vec3{v(0, 0, 0), v(1, 0, 0)}
	edges := [][]int{{1}, {}}
	distances := [][]float32{{2}, {}}
	g, err := FromArrays(nodes, edges, distances)
	if err != nil {
		t.Fatalf("FromArrays: %v", err)
	}
	defer g.Close()

	if g.NeedsCompression() {
		t.Fatalf("FromArrays should return a compressed graph")
	}
	w, ok := g.defaultCSR.Get(0, 1)
	if !ok || w != 2 {
		t.Fatalf("Get(0,1) = (%v,%v), want (2,true)", w, ok)
	}
}

func TestClearResetsGraph(t *testing.T) {
	g := New()
	defer g.Close()
	g.AddEdge(v(0, 0, 0), v(1, 0, 0), 1)
	g.Compress()
	g.Clear()

	if g.Len() != 0 {
		t.Fatalf("Len() after Clear() = %d, want 0", g.Len())
	}
	if g.HasNode(v(0, 0, 0)) {
		t.Fatalf("HasNode after Clear() should be false")
	}
}
