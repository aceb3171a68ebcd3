package viewanalysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Aggregation selects the reduction Aggregate applies to one origin's hit
// distances (spec §4.G).
type Aggregation int

const (
	AverageDistance Aggregation = iota
	SumDistance
	CountHits
	AverageReciprocal
	MaxDistance
	MinDistance
)

// reduce computes agg over hitDistances, which holds only the distances of
// rays that actually hit something (miss rays are excluded per spec
// §4.G "over hit rays only").
func reduce(agg Aggregation, hitDistances []float64) float32 {
	if len(hitDistances) == 0 {
		return 0
	}
	switch agg {
	case AverageDistance:
		return float32(stat.Mean(hitDistances, nil))
	case SumDistance:
		return float32(floats.Sum(hitDistances))
	case CountHits:
		return float32(len(hitDistances))
	case AverageReciprocal:
		// gonum has no reciprocal-mean primitive; computed by hand.
		sum := 0.0
		for _, d := range hitDistances {
			if d == 0 {
				continue
			}
			sum += 1 / d
		}
		return float32(sum / float64(len(hitDistances)))
	case MaxDistance:
		max := hitDistances[0]
		for _, d := range hitDistances[1:] {
			if d > max {
				max = d
			}
		}
		return float32(max)
	case MinDistance:
		min := hitDistances[0]
		for _, d := range hitDistances[1:] {
			if d < min {
				min = d
			}
		}
		return float32(min)
	default:
		return 0
	}
}
