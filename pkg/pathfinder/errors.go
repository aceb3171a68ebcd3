package pathfinder

import "errors"

// ErrNegativeWeight is returned when the chosen layer contains a negative
// edge weight; Dijkstra's correctness requires non-negative weights
// (spec §4.F).
var ErrNegativeWeight = errors.New("negative-weight")

// ErrShapeMismatch is returned by DijkstraShortestPathMulti when starts
// and ends have different lengths (spec §4.F).
var ErrShapeMismatch = errors.New("shape-mismatch")
