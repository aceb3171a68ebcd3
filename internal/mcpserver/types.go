package mcpserver

import "github.com/x448/float16"

// --- Tool Arguments/Results ---

type Vec3Arg struct {
	X float32 `json:"x" jsonschema:"X coordinate,required"`
	Y float32 `json:"y" jsonschema:"Y coordinate,required"`
	Z float32 `json:"z" jsonschema:"Z coordinate,required"`
}

type BuildMeshArgs struct {
	Vertices []Vec3Arg `json:"vertices" jsonschema:"Flat vertex buffer of the triangle mesh,required"`
	Indices  []uint32  `json:"indices" jsonschema:"Flat index buffer, three per triangle,required"`
}

type BuildMeshResult struct {
	MeshID        string `json:"mesh_id"`
	TriangleCount int    `json:"triangle_count"`
}

type GenerateGraphArgs struct {
	MeshID string  `json:"mesh_id" jsonschema:"Handle returned by build_mesh,required"`
	Start  Vec3Arg `json:"start" jsonschema:"Seed position to project onto the mesh,required"`

	SpacingX float32 `json:"spacing_x,omitempty" jsonschema:"Grid spacing in X (default 1)"`
	SpacingY float32 `json:"spacing_y,omitempty" jsonschema:"Grid spacing in Y (default 1)"`
	SpacingZ float32 `json:"spacing_z,omitempty" jsonschema:"Grid spacing in Z (default 1)"`

	MaxNodes int `json:"max_nodes,omitempty" jsonschema:"Upper bound on discovered nodes, 0 = unbounded"`

	UpStep       float32 `json:"up_step,omitempty" jsonschema:"Max vertical rise across an edge (default 0.3)"`
	DownStep     float32 `json:"down_step,omitempty" jsonschema:"Max vertical drop across an edge (default 0.3)"`
	UpSlopeDeg   float32 `json:"up_slope_deg,omitempty" jsonschema:"Max permissible upward slope in degrees (default 45)"`
	DownSlopeDeg float32 `json:"down_slope_deg,omitempty" jsonschema:"Max permissible downward slope in degrees (default 45)"`

	MinConnections int `json:"min_connections,omitempty" jsonschema:"Minimum outgoing edges a node must keep"`
}

type GenerateGraphResult struct {
	GraphID   string `json:"graph_id"`
	NodeCount int    `json:"node_count"`
	EdgeCount int     `json:"edge_count"`
}

type ShortestPathArgs struct {
	GraphID string  `json:"graph_id" jsonschema:"Handle returned by generate_graph,required"`
	Start   Vec3Arg `json:"start" jsonschema:"Start position (snapped to the nearest existing node),required"`
	End     Vec3Arg `json:"end" jsonschema:"End position (snapped to the nearest existing node),required"`
	Layer   string  `json:"layer,omitempty" jsonschema:"Cost layer name; empty string selects geometric distance"`
}

type PathMemberResult struct {
	NodeID         int     `json:"node_id"`
	CostFromParent float32 `json:"cost_from_parent"`
}

type ShortestPathResult struct {
	Found      bool               `json:"found"`
	TotalCost  float32            `json:"total_cost"`
	Members    []PathMemberResult `json:"members"`
}

type ViewAnalysisArgs struct {
	GraphID string    `json:"graph_id" jsonschema:"Handle returned by generate_graph,required"`
	MeshID  string    `json:"mesh_id" jsonschema:"Handle returned by build_mesh,required"`
	Origins []Vec3Arg `json:"origins,omitempty" jsonschema:"Explicit origin positions; if empty, every graph node is used"`

	RayCount     int     `json:"ray_count,omitempty" jsonschema:"Rays per origin (default 1000)"`
	HeightOffset float32 `json:"height_offset,omitempty" jsonschema:"Vertical offset applied before firing rays"`
	MaxDistance  float32 `json:"max_distance,omitempty" jsonschema:"Miss distance (default 100)"`
	UpFovDeg     float32 `json:"up_fov_deg,omitempty" jsonschema:"Upper polar bound in degrees, 0=straight up"`
	DownFovDeg   float32 `json:"down_fov_deg,omitempty" jsonschema:"Lower polar bound in degrees, 180=straight down"`

	Aggregation string `json:"aggregation,omitempty" jsonschema:"One of average,sum,count,reciprocal_average,max,min (default average)"`

	CompactOutput bool `json:"compact_output,omitempty" jsonschema:"Also include scores_f16, a half-precision encoding for bandwidth-constrained clients"`
}

type ViewAnalysisResult struct {
	Scores      []float32         `json:"scores"`
	Aggregation string            `json:"aggregation"`
	ScoresF16   []float16.Float16 `json:"scores_f16,omitempty"`
}

type CloseHandleArgs struct {
	HandleID string `json:"handle_id" jsonschema:"Any handle id returned by build_mesh or generate_graph,required"`
}

type CloseHandleResult struct {
	Closed bool `json:"closed"`
}
