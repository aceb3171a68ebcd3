package raytracer

import (
	"errors"
	"fmt"

	"github.com/dhartgo/spatialcore/pkg/spatial"
)

// ErrInvalidMesh is returned by NewMesh when the vertex/index buffers don't
// describe a usable triangle soup (spec §4.B: "fails invalid-mesh if
// indices are out of range or triangle count is zero").
var ErrInvalidMesh = errors.New("invalid-mesh")

// ErrShapeMismatch is returned by FireBundle when origins and directions
// have different lengths.
var ErrShapeMismatch = errors.New("shape-mismatch")

// Mesh owns an immutable vertex and index buffer describing a triangle
// soup. It is the shape the OBJ loader (an external collaborator, out of
// scope here) is expected to hand the toolkit: a flat vertex array and a
// flat index array, three indices per triangle.
type Mesh struct {
	Vertices []spatial.Vec3
	Indices  []uint32 // length must be a multiple of 3
}

// NewMesh validates and wraps vertex/index buffers.
func NewMesh(vertices []spatial.Vec3, indices []uint32) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: index buffer length %d is not a multiple of 3", ErrInvalidMesh, len(indices))
	}
	triCount := len(indices) / 3
	if triCount == 0 {
		return nil, fmt.Errorf("%w: zero triangles", ErrInvalidMesh)
	}
	nv := uint32(len(vertices))
	for i, idx := range indices {
		if idx >= nv {
			return nil, fmt.Errorf("%w: index %d at position %d out of range for %d vertices", ErrInvalidMesh, idx, i, nv)
		}
	}
	return &Mesh{Vertices: vertices, Indices: indices}, nil
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Triangle returns the three vertex positions of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c spatial.Vec3) {
	base := i * 3
	return m.Vertices[m.Indices[base]], m.Vertices[m.Indices[base+1]], m.Vertices[m.Indices[base+2]]
}

// Normal returns the (unnormalized direction, then normalized) geometric
// normal of triangle i, using the right-handed winding order spec §6
// assumes of the caller's vertex buffer.
func (m *Mesh) Normal(i int) spatial.Vec3 {
	a, b, c := m.Triangle(i)
	return spatial.Normalize(spatial.Cross(spatial.Sub(b, a), spatial.Sub(c, a)))
}
