package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dhartgo/spatialcore/pkg/config"
	"github.com/dhartgo/spatialcore/pkg/costmodel"
	"github.com/dhartgo/spatialcore/pkg/graph"
	"github.com/dhartgo/spatialcore/pkg/graphgen"
	"github.com/dhartgo/spatialcore/pkg/pathfinder"
	"github.com/dhartgo/spatialcore/pkg/raytracer"
	"github.com/dhartgo/spatialcore/pkg/spatial"
	"github.com/dhartgo/spatialcore/pkg/viewanalysis"
)

// Service implements the MCP tool handlers over a per-session handle
// registry.
type Service struct {
	registry *handleRegistry
}

// NewService creates a Service with a fresh, empty handle registry.
func NewService() *Service {
	return &Service{registry: newHandleRegistry()}
}

func toVec3(v Vec3Arg) spatial.Vec3 { return spatial.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func (s *Service) BuildMesh(ctx context.Context, req *mcp.CallToolRequest, args BuildMeshArgs) (*mcp.CallToolResult, BuildMeshResult, error) {
	verts := make([]spatial.Vec3, len(args.Vertices))
	for i, v := range args.Vertices {
		verts[i] = toVec3(v)
	}
	scene, err := raytracer.Build(verts, args.Indices)
	if err != nil {
		return nil, BuildMeshResult{}, err
	}
	id := s.registry.putScene(scene)
	return nil, BuildMeshResult{MeshID: id, TriangleCount: len(args.Indices) / 3}, nil
}

func (s *Service) GenerateGraph(ctx context.Context, req *mcp.CallToolRequest, args GenerateGraphArgs) (*mcp.CallToolResult, GenerateGraphResult, error) {
	scene, err := s.registry.scene(args.MeshID)
	if err != nil {
		return nil, GenerateGraphResult{}, err
	}

	genCfg := config.DefaultGeneratorConfig().ToGraphgenConfig(toVec3(args.Start))
	if args.SpacingX != 0 {
		genCfg.SpacingX = args.SpacingX
	}
	if args.SpacingY != 0 {
		genCfg.SpacingY = args.SpacingY
	}
	if args.SpacingZ != 0 {
		genCfg.SpacingZ = args.SpacingZ
	}
	genCfg.MaxNodes = args.MaxNodes
	if args.UpStep != 0 {
		genCfg.UpStep = args.UpStep
	}
	if args.DownStep != 0 {
		genCfg.DownStep = args.DownStep
	}
	if args.UpSlopeDeg != 0 {
		genCfg.UpSlopeDeg = args.UpSlopeDeg
	}
	if args.DownSlopeDeg != 0 {
		genCfg.DownSlopeDeg = args.DownSlopeDeg
	}
	genCfg.MinConnections = args.MinConnections

	g := graph.New()
	if err := graphgen.Generate(ctx, scene, g, genCfg); err != nil {
		g.Close()
		return nil, GenerateGraphResult{}, err
	}

	id := s.registry.putGraph(g, args.MeshID)
	edgeSets, _ := g.GetEdges()
	edgeCount := 0
	for _, es := range edgeSets {
		edgeCount += len(es.Children)
	}
	return nil, GenerateGraphResult{GraphID: id, NodeCount: g.Len(), EdgeCount: edgeCount}, nil
}

func (s *Service) ShortestPath(ctx context.Context, req *mcp.CallToolRequest, args ShortestPathArgs) (*mcp.CallToolResult, ShortestPathResult, error) {
	g, err := s.registry.graphOf(args.GraphID)
	if err != nil {
		return nil, ShortestPathResult{}, err
	}

	if args.Layer == costmodel.EnergyLayer || args.Layer == costmodel.CrossSlopeLayer {
		if _, layerErr := g.Layer(args.Layer); layerErr != nil {
			if err := s.materializeLayer(g, args.GraphID, args.Layer); err != nil {
				return nil, ShortestPathResult{}, err
			}
		}
	}

	startID, ok := nearestNode(g, toVec3(args.Start))
	if !ok {
		return nil, ShortestPathResult{Found: false}, nil
	}
	endID, ok := nearestNode(g, toVec3(args.End))
	if !ok {
		return nil, ShortestPathResult{Found: false}, nil
	}

	p, err := pathfinder.DijkstraShortestPath(g, startID, endID, args.Layer)
	if err != nil {
		return nil, ShortestPathResult{}, err
	}
	if !p.Found {
		return nil, ShortestPathResult{Found: false}, nil
	}

	members := make([]PathMemberResult, len(p.Members))
	for i, m := range p.Members {
		members[i] = PathMemberResult{NodeID: m.NodeID, CostFromParent: m.CostFromParent}
	}
	return nil, ShortestPathResult{Found: true, TotalCost: p.TotalCost(), Members: members}, nil
}

func (s *Service) ViewAnalysis(ctx context.Context, req *mcp.CallToolRequest, args ViewAnalysisArgs) (*mcp.CallToolResult, ViewAnalysisResult, error) {
	g, err := s.registry.graphOf(args.GraphID)
	if err != nil {
		return nil, ViewAnalysisResult{}, err
	}
	scene, err := s.registry.scene(args.MeshID)
	if err != nil {
		return nil, ViewAnalysisResult{}, err
	}

	var origins []spatial.Vec3
	if len(args.Origins) > 0 {
		origins = make([]spatial.Vec3, len(args.Origins))
		for i, o := range args.Origins {
			origins[i] = toVec3(o)
		}
	} else {
		origins = g.NodesAsVec3()
	}

	params := config.DefaultViewAnalysisConfig().ToViewAnalysisParams()
	if args.RayCount != 0 {
		params.RayCount = args.RayCount
	}
	params.HeightOffset = args.HeightOffset
	if args.MaxDistance != 0 {
		params.MaxDistance = args.MaxDistance
	}
	if args.DownFovDeg != 0 {
		params.DownFovDeg = args.DownFovDeg
	}
	params.UpFovDeg = args.UpFovDeg

	agg, err := parseAggregation(args.Aggregation)
	if err != nil {
		return nil, ViewAnalysisResult{}, err
	}

	result, err := viewanalysis.Aggregate(ctx, scene, origins, params, agg)
	if err != nil {
		return nil, ViewAnalysisResult{}, err
	}
	defer result.Close()

	out := ViewAnalysisResult{Scores: result.Scores, Aggregation: aggregationName(result.Aggregation)}
	if args.CompactOutput {
		out.ScoresF16 = result.Float16()
	}
	return nil, out, nil
}

func (s *Service) CloseHandle(ctx context.Context, req *mcp.CallToolRequest, args CloseHandleArgs) (*mcp.CallToolResult, CloseHandleResult, error) {
	closed := s.registry.close(args.HandleID)
	return nil, CloseHandleResult{Closed: closed}, nil
}

func nearestNode(g *graph.Graph, p spatial.Vec3) (int, bool) {
	if id, ok := g.IDOf(p); ok {
		return id, true
	}
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return 0, false
	}
	best := nodes[0]
	bestDist := spatial.Distance(p, best.Position)
	for _, n := range nodes[1:] {
		if d := spatial.Distance(p, n.Position); d < bestDist {
			bestDist = d
			best = n
		}
	}
	return best.ID, true
}

func parseAggregation(name string) (viewanalysis.Aggregation, error) {
	switch name {
	case "", "average":
		return viewanalysis.AverageDistance, nil
	case "sum":
		return viewanalysis.SumDistance, nil
	case "count":
		return viewanalysis.CountHits, nil
	case "reciprocal_average":
		return viewanalysis.AverageReciprocal, nil
	case "max":
		return viewanalysis.MaxDistance, nil
	case "min":
		return viewanalysis.MinDistance, nil
	default:
		return 0, fmt.Errorf("unknown aggregation %q", name)
	}
}

func aggregationName(agg viewanalysis.Aggregation) string {
	switch agg {
	case viewanalysis.AverageDistance:
		return "average"
	case viewanalysis.SumDistance:
		return "sum"
	case viewanalysis.CountHits:
		return "count"
	case viewanalysis.AverageReciprocal:
		return "reciprocal_average"
	case viewanalysis.MaxDistance:
		return "max"
	case viewanalysis.MinDistance:
		return "min"
	default:
		return ""
	}
}

// materializeLayer computes the energy or cross_slope layer on first
// request, using the scene the graph was generated from, so
// shortest_path's layer argument works without a separate tool call.
func (s *Service) materializeLayer(g *graph.Graph, graphID, layer string) error {
	switch layer {
	case costmodel.EnergyLayer:
		return costmodel.ComputeEnergy(g)
	case costmodel.CrossSlopeLayer:
		scene, err := s.registry.sceneForGraph(graphID)
		if err != nil {
			return err
		}
		return costmodel.ComputeCrossSlope(g, scene)
	default:
		return fmt.Errorf("unknown derived layer %q", layer)
	}
}
