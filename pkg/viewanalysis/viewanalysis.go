package viewanalysis

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/dhartgo/spatialcore/pkg/metrics"
	"github.com/dhartgo/spatialcore/pkg/raytracer"
	"github.com/dhartgo/spatialcore/pkg/spatial"
)

// Params configures a view-analysis run (spec §4.G).
type Params struct {
	RayCount    int
	HeightOffset float32
	MaxDistance  float32
	UpFovDeg     float32 // 0 = straight up
	DownFovDeg   float32 // 180 = straight down; not defaulted, so 0 keeps no directions
}

// RayResult is one ray's outcome, used by the per-ray mode (spec §4.G).
type RayResult struct {
	Hit      bool
	Distance float32
	MeshID   int
}

// Aggregate runs view-analysis in aggregate mode: for each origin it fires
// the direction bundle offset upward by HeightOffset and reduces the hit
// distances to a single score, returned as a ScoreArray tagged with agg
// (spec §4.G, spec §3 "Score array").
func Aggregate(ctx context.Context, scene *raytracer.Scene, origins []spatial.Vec3, params Params, agg Aggregation) (*ScoreArray, error) {
	start := time.Now()
	defer func() { metrics.ViewAnalysisDuration.Observe(time.Since(start).Seconds()) }()

	directions := FibonacciDirections(params.RayCount, params.UpFovDeg, params.DownFovDeg)
	scores := make([]float32, len(origins))
	if len(origins) == 0 || len(directions) == 0 {
		return newScoreArray(scores, agg), nil
	}

	err := parallelOverOrigins(ctx, len(origins), func(i int) error {
		hits, err := fireFromOrigin(ctx, scene, origins[i], directions, params)
		if err != nil {
			return err
		}
		var hitDists []float64
		for _, h := range hits {
			if h.Hit {
				hitDists = append(hitDists, float64(h.Distance))
			}
		}
		scores[i] = reduce(agg, hitDists)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newScoreArray(scores, agg), nil
}

// PerRay runs view-analysis in per-ray mode, returning the full
// [|origins|*rayCount] result grid flattened as origin*rayCount+ray
// (spec §4.G). The effective ray count (after fov clamping) may be less
// than params.RayCount; callers should use len(result)/len(origins) to
// recover it.
func PerRay(ctx context.Context, scene *raytracer.Scene, origins []spatial.Vec3, params Params) ([]RayResult, int, error) {
	start := time.Now()
	defer func() { metrics.ViewAnalysisDuration.Observe(time.Since(start).Seconds()) }()

	directions := FibonacciDirections(params.RayCount, params.UpFovDeg, params.DownFovDeg)
	n := len(directions)
	grid := make([]RayResult, len(origins)*n)
	if len(origins) == 0 || n == 0 {
		return grid, n, nil
	}

	err := parallelOverOrigins(ctx, len(origins), func(i int) error {
		hits, err := fireFromOrigin(ctx, scene, origins[i], directions, params)
		if err != nil {
			return err
		}
		copy(grid[i*n:(i+1)*n], hits)
		return nil
	})
	return grid, n, err
}

func fireFromOrigin(ctx context.Context, scene *raytracer.Scene, origin spatial.Vec3, directions []spatial.Vec3, params Params) ([]RayResult, error) {
	lifted := spatial.Vec3{X: origin.X, Y: origin.Y, Z: origin.Z + params.HeightOffset}
	origins := make([]spatial.Vec3, len(directions))
	for i := range origins {
		origins[i] = lifted
	}
	hits, err := scene.FireBundle(ctx, origins, directions)
	if err != nil {
		return nil, err
	}
	out := make([]RayResult, len(hits))
	for i, h := range hits {
		if h.Hit && h.Distance <= params.MaxDistance {
			out[i] = RayResult{Hit: true, Distance: h.Distance, MeshID: h.MeshID}
		} else {
			out[i] = RayResult{Hit: false, Distance: params.MaxDistance}
		}
	}
	return out, nil
}

// parallelOverOrigins runs fn(i) for i in [0,n) across a worker pool and
// returns the first error reported (e.g. context cancellation surfaced
// through a ray bundle) once all dispatched work has finished. Dispatch of
// new indices stops when ctx is cancelled; an error from fn alone does not
// stop it (spec §5, mirroring the Graph Generator's cancellation discipline).
func parallelOverOrigins(ctx context.Context, n int, fn func(i int) error) error {
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	jobs := make(chan int, workers)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs <- fn(i)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
