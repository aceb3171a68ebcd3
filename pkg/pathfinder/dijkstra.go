package pathfinder

import (
	"container/heap"
	"math"

	"github.com/dhartgo/spatialcore/pkg/graph"
)

// dijkstraItem is one candidate in the priority queue: a node id and its
// tentative cost from the source. Ties in cost are broken by lower node id
// first, for deterministic results (spec §4.F).
type dijkstraItem struct {
	nodeID int
	cost   float32
}

type dijkstraHeap []dijkstraItem

func (h dijkstraHeap) Len() int { return len(h) }
func (h dijkstraHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].nodeID < h[j].nodeID
}
func (h dijkstraHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *dijkstraHeap) Push(x any)   { *h = append(*h, x.(dijkstraItem)) }
func (h *dijkstraHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// DijkstraShortestPath finds the minimum-cost path from start to end over
// layer ("" = default). It returns Path{Found: false} if end is
// unreachable — that is not an error (spec §4.F, §7).
func DijkstraShortestPath(g *graph.Graph, start, end int, layer string) (Path, error) {
	csr, err := layerOf(g, layer)
	if err != nil {
		return Path{}, err
	}
	if err := checkNonNegative(csr); err != nil {
		return Path{}, err
	}
	if start < 0 || start >= int(csr.Rows) || end < 0 || end >= int(csr.Rows) {
		return Path{}, graph.ErrOutOfRange
	}
	if start == end {
		return singleNodePath(start), nil
	}

	dist, pred, ok := runDijkstra(csr, start, end)
	if !ok {
		return emptyPath(), nil
	}
	return reconstruct(csr, start, end, dist, pred), nil
}

func checkNonNegative(csr *graph.CSR) error {
	for _, w := range csr.Data {
		if w < 0 {
			return ErrNegativeWeight
		}
	}
	return nil
}

// runDijkstra runs a single-source Dijkstra from start over csr, stopping
// early once end is finalized if end >= 0. It returns the distance and
// predecessor arrays, and whether end was reached (always true if end<0,
// meaning "run to completion").
func runDijkstra(csr *graph.CSR, start, end int) (dist []float32, pred []int, reached bool) {
	n := int(csr.Rows)
	dist = make([]float32, n)
	pred = make([]int, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = positiveInfinity
		pred[i] = -1
	}
	dist[start] = 0

	h := &dijkstraHeap{{nodeID: start, cost: 0}}
	heap.Init(h)

	for h.Len() > 0 {
		cur := heap.Pop(h).(dijkstraItem)
		if visited[cur.nodeID] {
			continue
		}
		visited[cur.nodeID] = true
		if end >= 0 && cur.nodeID == end {
			return dist, pred, true
		}

		rowStart, rowEnd := csr.RowRange(cur.nodeID)
		for i := rowStart; i < rowEnd; i++ {
			child := int(csr.Inner[i])
			if visited[child] {
				continue
			}
			w := csr.Data[i]
			alt := cur.cost + w
			if alt < dist[child] {
				dist[child] = alt
				pred[child] = cur.nodeID
				heap.Push(h, dijkstraItem{nodeID: child, cost: alt})
			}
		}
	}
	if end < 0 {
		return dist, pred, true
	}
	return dist, pred, dist[end] < positiveInfinity
}

const positiveInfinity = float32(math.MaxFloat32)

func reconstruct(csr *graph.CSR, start, end int, dist []float32, pred []int) Path {
	var ids []int
	for cur := end; cur != -1; cur = pred[cur] {
		ids = append(ids, cur)
		if cur == start {
			break
		}
	}
	// ids is end->...->start; reverse in place.
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}

	members := make([]PathMember, len(ids))
	for i, id := range ids {
		cost := float32(0)
		if i > 0 {
			w, _ := csr.Get(ids[i-1], id)
			cost = w
		}
		members[i] = PathMember{NodeID: id, CostFromParent: cost}
	}
	return Path{Members: members, Found: true}
}
