package kernel

import (
	"fmt"

	"github.com/chazu/hemesh/pkg/halfedge"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`        // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`         // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`         // [i0,i1,i2, ...] triangles
	Faces    []uint32  `json:"faces,omitempty"` // source polygon of each triangle
	Name     string    `json:"name"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// ToHalfEdge welds coincident corners within tol and builds a half-edge
// mesh from the triangles.
func (m *Mesh) ToHalfEdge(tol float64) (*halfedge.Mesh, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("kernel: mesh %q is empty", m.Name)
	}
	hm, err := halfedge.FromTriangles(m.Vertices, m.Indices, tol)
	if err != nil {
		return nil, fmt.Errorf("kernel: mesh %q: %w", m.Name, err)
	}
	return hm, nil
}
