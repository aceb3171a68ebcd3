package viewanalysis

import (
	"github.com/x448/float16"

	"github.com/dhartgo/spatialcore/pkg/metrics"
)

// ScoreArray is the handle-like result of Aggregate: a flat f32 score
// vector tagged with the aggregation that produced it (spec §3 "Score
// array"). Like Scene and Graph, it owns a live-object gauge and an
// explicit Close.
type ScoreArray struct {
	Scores      []float32
	Aggregation Aggregation
	closed      bool
}

func newScoreArray(scores []float32, agg Aggregation) *ScoreArray {
	metrics.LiveScoreArrays.Inc()
	return &ScoreArray{Scores: scores, Aggregation: agg}
}

// Close releases the ScoreArray. Calling it more than once is a no-op.
func (s *ScoreArray) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	metrics.LiveScoreArrays.Dec()
	return nil
}

// Float16 returns Scores encoded as IEEE 754 half-precision values, for
// bandwidth-constrained design-tool clients that don't need full f32
// precision over the wire.
func (s *ScoreArray) Float16() []float16.Float16 {
	out := make([]float16.Float16, len(s.Scores))
	for i, v := range s.Scores {
		out[i] = float16.Fromfloat32(v)
	}
	return out
}
