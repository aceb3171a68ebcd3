// Package graph implements the sparse, multi-cost-layer Graph described in
// spec §3/§4.C: node ids are assigned densely from 0 as Points are first
// seen, edges are staged as triplets and merged into a CSR on Compress,
// and alternate named cost layers share the default layer's topology.
package graph

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/dhartgo/spatialcore/pkg/metrics"
	"github.com/dhartgo/spatialcore/pkg/spatial"
)

// Graph is a sparse graph over 3-D positions with multiple parallel
// edge-cost layers, convertible to CSR form (spec §3).
type Graph struct {
	mu sync.Mutex // guards everything below during mutation (spec §5)

	orderedNodes []Node
	idIndex      map[spatial.QuantKey]int
	epsilon      float32

	defaultCSR *CSR
	altCSRs    map[string]*CSR

	pendingTriplets []Triplet
	needsCompression bool

	closed bool
}

// New creates an empty, mutable Graph.
func New() *Graph {
	g := &Graph{
		idIndex: make(map[spatial.QuantKey]int),
		altCSRs: make(map[string]*CSR),
		epsilon: spatial.DefaultEpsilon,
	}
	metrics.LiveGraphs.Inc()
	return g
}

// FromArrays builds a Graph from parallel (nodes, edges, distances) arrays,
// matching the constructor original_source/graph.h documents: edges[i] and
// distances[i] describe the outgoing edges of nodes[i]. The graph is
// compressed immediately.
func FromArrays(nodes []spatial.Vec3, edges [][]int, distances [][]float32) (*Graph, error) {
	if len(nodes) != len(edges) || len(edges) != len(distances) {
		return nil, fmt.Errorf("%w: nodes=%d edges=%d distances=%d", ErrShapeMismatch, len(nodes), len(edges), len(distances))
	}
	g := New()
	for _, p := range nodes {
		g.getOrAssignID(p)
	}
	for parentID, children := range edges {
		if len(children) != len(distances[parentID]) {
			return nil, fmt.Errorf("%w: node %d has %d edges but %d distances", ErrShapeMismatch, parentID, len(children), len(distances[parentID]))
		}
		for i, childID := range children {
			w := distances[parentID][i]
			if !spatial.IsValidWeight(w) {
				return nil, fmt.Errorf("%w: edge (%d,%d)=%v", ErrInvalidWeight, parentID, childID, w)
			}
			g.pendingTriplets = append(g.pendingTriplets, Triplet{Parent: parentID, Child: childID, Weight: w})
		}
	}
	g.needsCompression = true
	g.Compress()
	return g, nil
}

// Close releases the graph's live-object metrics accounting. The Graph's
// own memory is left to the garbage collector; this exists purely so the
// handle-lifetime bookkeeping in spec §6 has a concrete Go analog.
func (g *Graph) Close() error {
	if !g.closed {
		g.closed = true
		metrics.LiveGraphs.Dec()
	}
	return nil
}

// Clear resets the graph to empty (spec §3 lifecycle).
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orderedNodes = nil
	g.idIndex = make(map[spatial.QuantKey]int)
	g.defaultCSR = nil
	g.altCSRs = make(map[string]*CSR)
	g.pendingTriplets = nil
	g.needsCompression = false
}

// getOrAssignID returns p's existing id, or assigns and returns the next
// dense id if p has not been seen before (spec §4.C).
func (g *Graph) getOrAssignID(p spatial.Vec3) int {
	key := spatial.Quantize(p, g.epsilon)
	if id, ok := g.idIndex[key]; ok {
		return id
	}
	id := len(g.orderedNodes)
	g.orderedNodes = append(g.orderedNodes, Node{ID: id, Position: p, Type: Walkable})
	g.idIndex[key] = id
	return id
}

// GetOrAssignID is the public, locked entry point used by callers (such as
// the Graph Generator) that need a node's id without also adding an edge.
func (g *Graph) GetOrAssignID(p spatial.Vec3) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.getOrAssignID(p)
}

// AddEdge stages a directed edge from parent to child, assigning ids to
// either endpoint if they are new. The edge is not visible to queries until
// Compress runs (spec §4.C).
func (g *Graph) AddEdge(parent, child spatial.Vec3, weight float32) error {
	if !spatial.IsValidWeight(weight) {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, weight)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	pid := g.getOrAssignID(parent)
	cid := g.getOrAssignID(child)
	g.pendingTriplets = append(g.pendingTriplets, Triplet{Parent: pid, Child: cid, Weight: weight})
	g.needsCompression = true
	return nil
}

// AddEdgeByID stages a directed edge between two already-known (or
// soon-to-exist) node ids.
func (g *Graph) AddEdgeByID(parentID, childID int, weight float32) error {
	if !spatial.IsValidWeight(weight) {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, weight)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingTriplets = append(g.pendingTriplets, Triplet{Parent: parentID, Child: childID, Weight: weight})
	g.needsCompression = true
	return nil
}

// StageTriplets bulk-appends pending triplets under a single lock
// acquisition — the drain step the Graph Generator's worker pool uses to
// merge a batch of staged edges without contending per-edge (spec §4.D,
// §5 "per-worker staging buffers drained in bulk").
func (g *Graph) StageTriplets(triplets []Triplet) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingTriplets = append(g.pendingTriplets, triplets...)
	g.needsCompression = true
}

// Compress merges pending_triplets into the default CSR using "last write
// wins" on duplicate (parent,child) pairs, resizes to (maxID+1, maxID+1),
// and clears the dirty flag. It is idempotent: calling it again with no new
// edges staged leaves the CSR unchanged. Pending triplets are retained only
// until they are merged — each call empties the list it just consumed
// (spec §4.C, §9 Open Question).
func (g *Graph) Compress() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.compressLocked()
}

func (g *Graph) compressLocked() {
	dim := len(g.orderedNodes)
	all := existingTriplets(g.defaultCSR)
	all = append(all, g.pendingTriplets...)
	g.defaultCSR = buildCSR(dim, all)
	g.pendingTriplets = g.pendingTriplets[:0]
	g.needsCompression = false

	metrics.LiveNodes.Set(float64(dim))
	metrics.LiveEdges.Set(float64(g.defaultCSR.NNZ()))
}

func (g *Graph) requireCompressed() error {
	if g.needsCompression {
		return ErrUncompressed
	}
	return nil
}

// HasEdge reports whether an edge from parent to child exists in the
// default layer (and, if undirected, the reverse edge too).
func (g *Graph) HasEdge(parent, child spatial.Vec3, undirected bool) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireCompressed(); err != nil {
		return false, err
	}
	pKey, cKey := spatial.Quantize(parent, g.epsilon), spatial.Quantize(child, g.epsilon)
	pid, pok := g.idIndex[pKey]
	cid, cok := g.idIndex[cKey]
	if !pok || !cok {
		return false, nil
	}
	return g.hasEdgeByIDLocked(pid, cid, undirected), nil
}

// HasEdgeByID is the id-keyed overload of HasEdge.
func (g *Graph) HasEdgeByID(parentID, childID int, undirected bool) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireCompressed(); err != nil {
		return false, err
	}
	return g.hasEdgeByIDLocked(parentID, childID, undirected), nil
}

func (g *Graph) hasEdgeByIDLocked(parentID, childID int, undirected bool) bool {
	if _, ok := g.defaultCSR.Get(parentID, childID); ok {
		return true
	}
	if undirected {
		if _, ok := g.defaultCSR.Get(childID, parentID); ok {
			return true
		}
	}
	return false
}

// Nodes returns the ordered list of nodes, indexed by id.
func (g *Graph) Nodes() []Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Node, len(g.orderedNodes))
	copy(out, g.orderedNodes)
	return out
}

// NodesAsVec3 projects Nodes() to their bare positions, in id order
// (original_source/graph.h's NodesAsFloat3, supplemented per SPEC_FULL §
// SUPPLEMENTED FEATURES).
func (g *Graph) NodesAsVec3() []spatial.Vec3 {
	nodes := g.Nodes()
	out := make([]spatial.Vec3, len(nodes))
	for i, n := range nodes {
		out[i] = n.Position
	}
	return out
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.orderedNodes)
}

// HasNode reports whether p has already been assigned an id.
func (g *Graph) HasNode(p spatial.Vec3) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.idIndex[spatial.Quantize(p, g.epsilon)]
	return ok
}

// IDOf returns the id assigned to p, if any.
func (g *Graph) IDOf(p spatial.Vec3) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.idIndex[spatial.Quantize(p, g.epsilon)]
	return id, ok
}

// NodeFromID returns the node with the given id.
func (g *Graph) NodeFromID(id int) (Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id < 0 || id >= len(g.orderedNodes) {
		return Node{}, fmt.Errorf("%w: id %d", ErrOutOfRange, id)
	}
	return g.orderedNodes[id], nil
}

// GetEdges returns every node's outgoing edge set in the default layer.
func (g *Graph) GetEdges() ([]EdgeSet, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireCompressed(); err != nil {
		return nil, err
	}
	sets := make([]EdgeSet, 0, g.defaultCSR.Rows)
	for row := 0; row < int(g.defaultCSR.Rows); row++ {
		start, end := g.defaultCSR.RowRange(row)
		if start == end {
			continue
		}
		cw := make([]ChildWeight, end-start)
		for i := start; i < end; i++ {
			cw[i-start] = ChildWeight{Child: int(g.defaultCSR.Inner[i]), Weight: g.defaultCSR.Data[i]}
		}
		sets = append(sets, EdgeSet{Parent: row, Children: cw})
	}
	return sets, nil
}

// Neighbors returns the outgoing edges of node n (operator[] in spec §4.C).
func (g *Graph) Neighbors(n Node) ([]Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireCompressed(); err != nil {
		return nil, err
	}
	return g.outgoingLocked(n.ID), nil
}

func (g *Graph) outgoingLocked(id int) []Edge {
	if id < 0 || id >= int(g.defaultCSR.Rows) {
		return nil
	}
	start, end := g.defaultCSR.RowRange(id)
	out := make([]Edge, end-start)
	for i := start; i < end; i++ {
		out[i-start] = Edge{Parent: id, Child: int(g.defaultCSR.Inner[i]), Weight: g.defaultCSR.Data[i]}
	}
	return out
}

// GetUndirectedEdges returns the union of outgoing and incoming edges of n,
// with each (n, other) pair reported once even if both directions exist.
func (g *Graph) GetUndirectedEdges(n Node) ([]Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireCompressed(); err != nil {
		return nil, err
	}
	return g.undirectedEdgesLocked(n.ID), nil
}

// AggregateGraph reduces every node's incident edges to a single scalar
// (spec §4.C). directed=true considers outgoing edges only; directed=false
// considers the undirected union, each pair counted once.
func (g *Graph) AggregateGraph(agg Aggregation, directed bool) ([]float32, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireCompressed(); err != nil {
		return nil, err
	}
	switch agg {
	case Sum, Average, Count:
	default:
		return nil, ErrUnknownAgg
	}

	n := int(g.defaultCSR.Rows)
	out := make([]float32, n)
	buf := make([]float64, 0, 16)
	for i := 0; i < n; i++ {
		buf = buf[:0]
		if directed {
			start, end := g.defaultCSR.RowRange(i)
			for j := start; j < end; j++ {
				buf = append(buf, float64(g.defaultCSR.Data[j]))
			}
		} else {
			for _, e := range g.undirectedEdgesLocked(i) {
				buf = append(buf, float64(e.Weight))
			}
		}
		out[i] = reduce(agg, buf)
	}
	return out, nil
}

// undirectedEdgesLocked is GetUndirectedEdges without re-acquiring the
// mutex, for internal callers that already hold it.
func (g *Graph) undirectedEdgesLocked(id int) []Edge {
	seen := make(map[int]float32)
	order := make([]int, 0)
	for _, e := range g.outgoingLocked(id) {
		if _, ok := seen[e.Child]; !ok {
			order = append(order, e.Child)
		}
		seen[e.Child] = e.Weight
	}
	for row := 0; row < int(g.defaultCSR.Rows); row++ {
		if row == id {
			continue
		}
		if w, ok := g.defaultCSR.Get(row, id); ok {
			if _, exists := seen[row]; !exists {
				order = append(order, row)
				seen[row] = w
			}
		}
	}
	out := make([]Edge, len(order))
	for i, other := range order {
		out[i] = Edge{Parent: id, Child: other, Weight: seen[other]}
	}
	return out
}

func reduce(agg Aggregation, values []float64) float32 {
	switch agg {
	case Sum:
		return float32(floats.Sum(values))
	case Count:
		return float32(len(values))
	case Average:
		if len(values) == 0 {
			// spec §4.C/§9: documented convention is 0, not NaN.
			return 0
		}
		return float32(stat.Mean(values, nil))
	default:
		return 0
	}
}

// GetCSRPointers returns pointers into the default CSR's backing arrays,
// compressing first if needed (spec §4.C, §6).
func (g *Graph) GetCSRPointers() CSRPtrs {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.needsCompression || g.defaultCSR == nil {
		g.compressLocked()
	}
	return g.defaultCSR.Pointers()
}

// AttachCostLayer installs edges as a named alternate cost layer. Every
// (parent,child) pair in edges must already exist in the default layer;
// inserting a pair that is not present fails with ErrNoSuchEdge
// (spec §3, §4.C "alt_csrs ... sub-pattern of default_csr").
func (g *Graph) AttachCostLayer(name string, edges []Triplet) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireCompressed(); err != nil {
		return err
	}
	for _, e := range edges {
		if !spatial.IsValidWeight(e.Weight) {
			return fmt.Errorf("%w: edge (%d,%d)=%v", ErrInvalidWeight, e.Parent, e.Child, e.Weight)
		}
		if _, ok := g.defaultCSR.Get(e.Parent, e.Child); !ok {
			return fmt.Errorf("%w: (%d,%d) absent from default layer", ErrNoSuchEdge, e.Parent, e.Child)
		}
	}
	g.altCSRs[name] = buildCSR(int(g.defaultCSR.Rows), edges)
	return nil
}

// Layer returns the named alternate CSR, or the default layer for name="".
func (g *Graph) Layer(name string) (*CSR, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireCompressed(); err != nil {
		return nil, err
	}
	if name == "" {
		return g.defaultCSR, nil
	}
	csr, ok := g.altCSRs[name]
	if !ok {
		return nil, fmt.Errorf("%w: layer %q", ErrNoSuchEdge, name)
	}
	return csr, nil
}

// Dims returns the current (rows, cols) shape of the default layer's CSR.
func (g *Graph) Dims() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.defaultCSR == nil {
		return 0, 0
	}
	return int(g.defaultCSR.Rows), int(g.defaultCSR.Cols)
}

// NeedsCompression reports whether pending mutations are unmerged.
func (g *Graph) NeedsCompression() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.needsCompression
}
