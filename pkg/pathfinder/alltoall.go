package pathfinder

import (
	"runtime"
	"sync"

	"github.com/dhartgo/spatialcore/pkg/graph"
)

// DijkstraAllToAll computes every pair's shortest path over layer, returned
// row-major: entry i*n+j is the path from i to j. Diagonal entries (i==j)
// are the empty path (spec §4.F), not the single-member path
// DijkstraShortestPath returns for start==end — AllToAll's diagonal means
// "no traversal happened", distinct from the single-pair "trivial path"
// case (spec §8).
func DijkstraAllToAll(g *graph.Graph, layer string) ([]Path, error) {
	csr, err := layerOf(g, layer)
	if err != nil {
		return nil, err
	}
	if err := checkNonNegative(csr); err != nil {
		return nil, err
	}

	n := int(csr.Rows)
	results := make([]Path, n*n)
	if n == 0 {
		return results, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	rows := make(chan int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range rows {
				dist, pred, _ := runDijkstra(csr, src, -1)
				for dst := 0; dst < n; dst++ {
					if src == dst {
						results[src*n+dst] = emptyPath()
						continue
					}
					if dist[dst] >= positiveInfinity {
						results[src*n+dst] = emptyPath()
						continue
					}
					results[src*n+dst] = reconstruct(csr, src, dst, dist, pred)
				}
			}
		}()
	}
	for src := 0; src < n; src++ {
		rows <- src
	}
	close(rows)
	wg.Wait()
	return results, nil
}
