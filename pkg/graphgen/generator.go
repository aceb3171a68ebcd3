// Package graphgen discovers walkable nodes over a triangle mesh by
// breadth-frontier expansion, ray-casting the ground beneath candidate
// offsets and rejecting candidates that violate step-height or slope
// limits (spec §4.D).
package graphgen

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/tidwall/btree"

	"github.com/dhartgo/spatialcore/pkg/graph"
	"github.com/dhartgo/spatialcore/pkg/metrics"
	"github.com/dhartgo/spatialcore/pkg/raytracer"
	"github.com/dhartgo/spatialcore/pkg/spatial"
)

// candidate is a node accepted during expansion, staged for a canonical
// drain before it is handed to the Graph (spec §4.D "canonical ordering of
// per-worker batches").
type candidate struct {
	key      spatial.QuantKey
	position spatial.Vec3
	parentID int
	weight   float32
}

func lessCandidate(a, b candidate) bool {
	if a.key != b.key {
		return a.key.Less(b.key)
	}
	return a.parentID < b.parentID
}

// Generate runs the breadth-frontier expansion described in spec §4.D,
// staging discovered nodes and edges into g. g is expected to be freshly
// created or cleared; Generate does not itself call g.Clear().
func Generate(ctx context.Context, scene *raytracer.Scene, g *graph.Graph, cfg Config) error {
	start := time.Now()
	err := generate(ctx, scene, g, cfg)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if err == ErrCancelled {
			outcome = "cancelled"
		} else if err == ErrNoGround {
			outcome = "no-ground"
		}
		metrics.GenerationsTotal.WithLabelValues(outcome).Inc()
		return err
	}
	metrics.GenerationsTotal.WithLabelValues("ok").Inc()
	return nil
}

func generate(ctx context.Context, scene *raytracer.Scene, g *graph.Graph, cfg Config) error {
	groundZ, ok := castDown(scene, cfg.Start.X, cfg.Start.Y, cfg.Start.Z+max(cfg.UpStep, 1))
	if !ok {
		return ErrNoGround
	}
	seed := spatial.Vec3{X: cfg.Start.X, Y: cfg.Start.Y, Z: groundZ}
	seedID := g.GetOrAssignID(seed)

	xyEps := 0.5 * avgSpacing(cfg)
	visited := map[spatial.QuantKey]struct{}{
		spatial.Quantize(xyOf(seed), xyEps): {},
	}

	frontier := []graph.Node{{ID: seedID, Position: seed}}
	discovered := 1

	workers := cfg.CoreCount
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	connectionCounts := map[int]int{seedID: 0}

	for len(frontier) > 0 {
		if cfg.MaxNodes > 0 && discovered >= cfg.MaxNodes {
			break
		}
		select {
		case <-ctx.Done():
			return ErrCancelled
		default:
		}

		batches := splitFrontier(frontier, workers)
		perWorker := make([][]candidate, len(batches))
		var wg sync.WaitGroup
		for wi, batch := range batches {
			wi, batch := wi, batch
			wg.Add(1)
			go func() {
				defer wg.Done()
				perWorker[wi] = expandBatch(scene, batch, cfg)
			}()
		}
		wg.Wait()

		drained := canonicalDrain(perWorker)

		var nextFrontier []graph.Node
		for _, c := range drained {
			if cfg.MaxNodes > 0 && discovered >= cfg.MaxNodes {
				break
			}
			if _, seen := visited[c.key]; seen {
				// Still a valid edge target even if already visited: wire
				// the edge, but do not re-enqueue.
				childID := g.GetOrAssignID(c.position)
				addBidirectional(g, connectionCounts, c.parentID, childID, c.weight)
				continue
			}
			visited[c.key] = struct{}{}
			childID := g.GetOrAssignID(c.position)
			addBidirectional(g, connectionCounts, c.parentID, childID, c.weight)
			discovered++
			nextFrontier = append(nextFrontier, graph.Node{ID: childID, Position: c.position})
		}
		frontier = nextFrontier
	}

	g.Compress()

	if cfg.MinConnections > 0 {
		pruneLowDegree(g, connectionCounts, cfg.MinConnections)
		g.Compress()
	}

	return nil
}

func addBidirectional(g *graph.Graph, counts map[int]int, parentID, childID int, weight float32) {
	if parentID == childID {
		return
	}
	g.StageTriplets([]graph.Triplet{
		{Parent: parentID, Child: childID, Weight: weight},
		{Parent: childID, Child: parentID, Weight: weight},
	})
	counts[parentID]++
	counts[childID]++
}

// pruneLowDegree drops nodes with fewer than min outgoing edges in the
// compressed default layer and removes their edges, by rebuilding the graph
// from the surviving triplet set (spec §4.D step 5). This is a post-pass:
// the Graph type itself has no node-removal primitive, matching
// original_source's "re-compress after trimming" approach.
func pruneLowDegree(g *graph.Graph, counts map[int]int, min int) {
	sets, err := g.GetEdges()
	if err != nil {
		return
	}
	degree := make(map[int]int, len(sets))
	for _, es := range sets {
		degree[es.Parent] = len(es.Children)
	}
	drop := make(map[int]bool)
	for id := range counts {
		if degree[id] < min {
			drop[id] = true
		}
	}
	if len(drop) == 0 {
		return
	}
	type survivingEdge struct {
		parentID, childID int
		weight            float32
	}
	var keep []survivingEdge
	positions := make(map[int]spatial.Vec3)
	for _, es := range sets {
		if drop[es.Parent] {
			continue
		}
		if n, err := g.NodeFromID(es.Parent); err == nil {
			positions[es.Parent] = n.Position
		}
		for _, cw := range es.Children {
			if drop[cw.Child] {
				continue
			}
			if n, err := g.NodeFromID(cw.Child); err == nil {
				positions[cw.Child] = n.Position
			}
			keep = append(keep, survivingEdge{parentID: es.Parent, childID: cw.Child, weight: cw.Weight})
		}
	}

	g.Clear()
	oldIDs := make([]int, 0, len(positions))
	for oldID := range positions {
		oldIDs = append(oldIDs, oldID)
	}
	sort.Ints(oldIDs)
	remap := make(map[int]int, len(positions))
	for _, oldID := range oldIDs {
		remap[oldID] = g.GetOrAssignID(positions[oldID])
	}
	for _, e := range keep {
		newParent, ok1 := remap[e.parentID]
		newChild, ok2 := remap[e.childID]
		if !ok1 || !ok2 {
			continue
		}
		g.AddEdgeByID(newParent, newChild, e.weight)
	}
}

func splitFrontier(frontier []graph.Node, workers int) [][]graph.Node {
	if workers < 1 {
		workers = 1
	}
	if workers > len(frontier) {
		workers = len(frontier)
	}
	if workers == 0 {
		return nil
	}
	batches := make([][]graph.Node, workers)
	for i, n := range frontier {
		batches[i%workers] = append(batches[i%workers], n)
	}
	return batches
}

// expandBatch generates and ray-tests every candidate child of every node
// in batch, returning the accepted ones (spec §4.D steps 3a-3g).
func expandBatch(scene *raytracer.Scene, batch []graph.Node, cfg Config) []candidate {
	var out []candidate
	offsets := cfg.offsets()
	xyEps := 0.5 * avgSpacing(cfg)
	for _, n := range batch {
		for _, off := range offsets {
			cx := n.Position.X + off[0]*cfg.SpacingX
			cy := n.Position.Y + off[1]*cfg.SpacingY

			horiz := float32(math.Hypot(float64(cx-n.Position.X), float64(cy-n.Position.Y)))
			horizDir := spatial.Normalize(spatial.Vec3{X: cx - n.Position.X, Y: cy - n.Position.Y, Z: 0})

			var hitZ float32
			var ok bool
			for attempt := 0; attempt < max(1, cfg.MaxStepConnections); attempt++ {
				fromZ := n.Position.Z + cfg.UpStep + float32(attempt)*cfg.SpacingZ
				origin := spatial.Vec3{X: n.Position.X, Y: n.Position.Y, Z: fromZ}
				if horiz > 0 && scene.Occluded(origin, horizDir, horiz) {
					continue
				}
				hitZ, ok = castDown(scene, cx, cy, fromZ)
				if ok {
					break
				}
			}
			if !ok {
				continue
			}

			dz := hitZ - n.Position.Z
			if dz > 0 && dz > cfg.UpStep {
				continue
			}
			if dz < 0 && -dz > cfg.DownStep {
				continue
			}
			theta := float32(math.Atan2(float64(abs32(dz)), float64(horiz))) * 180 / math.Pi
			if dz > 0 && theta > cfg.UpSlopeDeg {
				continue
			}
			if dz < 0 && theta > cfg.DownSlopeDeg {
				continue
			}

			candidatePos := spatial.Vec3{X: cx, Y: cy, Z: hitZ}
			out = append(out, candidate{
				key:      spatial.Quantize(xyOf(candidatePos), xyEps),
				position: candidatePos,
				parentID: n.ID,
				weight:   spatial.Distance(n.Position, candidatePos),
			})
		}
	}
	return out
}

// canonicalDrain merges every worker's batch into an ordered B-tree keyed
// by quantized position, then parent id, and returns all of them in that
// order, so candidates reaching one position from several parents each
// keep their own edge. This gives a deterministic
// drain order independent of goroutine completion order (spec §4.D,
// SPEC_FULL §4.D).
func canonicalDrain(perWorker [][]candidate) []candidate {
	tree := btree.NewBTreeG[candidate](lessCandidate)
	for _, batch := range perWorker {
		for _, c := range batch {
			tree.Set(c)
		}
	}
	out := make([]candidate, 0, tree.Len())
	tree.Scan(func(c candidate) bool {
		out = append(out, c)
		return true
	})
	return out
}

func castDown(scene *raytracer.Scene, x, y, fromZ float32) (float32, bool) {
	hit := scene.Intersect(spatial.Vec3{X: x, Y: y, Z: fromZ}, spatial.Vec3{X: 0, Y: 0, Z: -1})
	if !hit.Hit {
		return 0, false
	}
	return fromZ - hit.Distance, true
}

func xyOf(v spatial.Vec3) spatial.Vec3 { return spatial.Vec3{X: v.X, Y: v.Y, Z: 0} }

func avgSpacing(cfg Config) float32 {
	return (cfg.SpacingX + cfg.SpacingY) / 2
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

