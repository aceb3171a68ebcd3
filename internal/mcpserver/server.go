// Package mcpserver exposes the spatial-analysis core to design and
// accessibility client tools over the Model Context Protocol.
package mcpserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer builds an MCP server with the spatial-analysis toolkit's
// tools registered. Each server instance owns its own handle registry —
// there is no shared state between servers (spec §9 Design Notes).
func NewMCPServer() *mcp.Server {
	service := NewService()

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "spatialcore",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "build_mesh",
		Description: "Build a ray-traceable mesh handle from vertex and index buffers.",
	}, service.BuildMesh)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Discover a walkable graph over a mesh by breadth-frontier expansion from a seed position.",
	}, service.GenerateGraph)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "shortest_path",
		Description: "Find the shortest path between two positions on a generated graph, optionally over a named cost layer (energy, cross_slope).",
	}, service.ShortestPath)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "view_analysis",
		Description: "Cast ray bundles from graph nodes (or explicit origins) and aggregate hit distances into per-origin visibility scores.",
	}, service.ViewAnalysis)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "close_handle",
		Description: "Release a mesh or graph handle returned by build_mesh or generate_graph.",
	}, service.CloseHandle)

	return s
}
