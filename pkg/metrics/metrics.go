// Package metrics defines the Prometheus collectors shared across the
// toolkit's components. Collectors are package-level vars registered via
// promauto, so importing a component that increments one is enough to
// register it with the default registry — no separate init call needed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts Graph Generator runs, by outcome.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spatialcore_generations_total",
			Help: "Total number of graph-generation runs, by outcome",
		},
		[]string{"outcome"}, // ok, no-ground, cancelled, error
	)

	// GenerationDuration measures wall-clock time spent expanding a graph.
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spatialcore_generation_duration_seconds",
			Help:    "Duration of graph-generation runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	// LiveNodes and LiveEdges track the size of the most recently compressed
	// graph per generation run; useful as a live gauge during long runs.
	LiveNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spatialcore_graph_nodes",
			Help: "Number of nodes in the most recently compressed graph",
		},
	)
	LiveEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spatialcore_graph_edges",
			Help: "Number of edges (default layer, nnz) in the most recently compressed graph",
		},
	)

	// PathQueriesTotal counts the pairs DijkstraShortestPathMulti resolves,
	// by outcome.
	PathQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spatialcore_path_queries_total",
			Help: "Total number of pathfinder queries, by outcome",
		},
		[]string{"outcome"}, // found, no-path
	)

	// ViewAnalysisDuration measures wall-clock time spent firing and
	// aggregating a ray bundle across a set of origins.
	ViewAnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spatialcore_view_analysis_duration_seconds",
			Help:    "Duration of view-analysis runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	// LiveScenes and LiveGraphs track outstanding handle-like objects,
	// incremented on construction and decremented on Close.
	LiveScenes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spatialcore_live_scenes",
			Help: "Number of raytracer Scenes currently open",
		},
	)
	LiveGraphs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spatialcore_live_graphs",
			Help: "Number of Graphs currently open",
		},
	)
	LiveScoreArrays = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spatialcore_live_score_arrays",
			Help: "Number of view-analysis ScoreArrays currently open",
		},
	)
)
