package mcpserver

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dhartgo/spatialcore/pkg/graph"
	"github.com/dhartgo/spatialcore/pkg/raytracer"
)

// handleRegistry owns the lifetime of Scene and Graph handles exposed to
// MCP clients as opaque string ids. It is created once per server/session
// — never a process-wide global (spec §9 Design Notes: "tie each handle's
// lifetime to an explicit owner passed by the caller").
type handleRegistry struct {
	mu          sync.Mutex
	scenes      map[string]*raytracer.Scene
	graphs      map[string]*graph.Graph
	graphScenes map[string]string // graph handle id -> the mesh handle id it was generated from
}

func newHandleRegistry() *handleRegistry {
	return &handleRegistry{
		scenes:      make(map[string]*raytracer.Scene),
		graphs:      make(map[string]*graph.Graph),
		graphScenes: make(map[string]string),
	}
}

func (r *handleRegistry) putScene(s *raytracer.Scene) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.scenes[id] = s
	r.mu.Unlock()
	return id
}

// putGraph records g under a fresh handle id, remembering which mesh
// handle it was generated from so cost layers can be derived lazily
// (spec §4.E components need the originating scene, not just the graph).
func (r *handleRegistry) putGraph(g *graph.Graph, fromMeshID string) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.graphs[id] = g
	r.graphScenes[id] = fromMeshID
	r.mu.Unlock()
	return id
}

func (r *handleRegistry) sceneForGraph(graphID string) (*raytracer.Scene, error) {
	r.mu.Lock()
	meshID, ok := r.graphScenes[graphID]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("not-found: no originating mesh recorded for graph %q", graphID)
	}
	return r.scene(meshID)
}

func (r *handleRegistry) scene(id string) (*raytracer.Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scenes[id]
	if !ok {
		return nil, fmt.Errorf("not-found: no mesh handle %q", id)
	}
	return s, nil
}

func (r *handleRegistry) graphOf(id string) (*graph.Graph, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.graphs[id]
	if !ok {
		return nil, fmt.Errorf("not-found: no graph handle %q", id)
	}
	return g, nil
}

// close destroys whichever handle id refers to, reporting whether it found
// one (spec §6 "explicit destroy operation").
func (r *handleRegistry) close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.scenes[id]; ok {
		s.Close()
		delete(r.scenes, id)
		return true
	}
	if g, ok := r.graphs[id]; ok {
		g.Close()
		delete(r.graphs, id)
		delete(r.graphScenes, id)
		return true
	}
	return false
}
