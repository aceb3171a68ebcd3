package graph

import "github.com/dhartgo/spatialcore/pkg/spatial"

// NodeType tags what kind of position a Node represents. Walkable is the
// default produced by the Graph Generator; other values are reserved for
// callers that attach their own classification.
type NodeType int

const (
	Walkable NodeType = iota
	Obstacle
	Unknown
)

// Node is a Point plus the dense id the Graph assigned it (spec §3).
type Node struct {
	ID       int
	Position spatial.Vec3
	Type     NodeType
}
