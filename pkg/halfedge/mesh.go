// Package halfedge implements an index-based half-edge mesh: a store of
// vertices, half-edges and faces whose cross references are plain indices
// into the store's own slices. A mesh is built once from flat position and
// face-index arrays and is read-only afterwards.
package halfedge

import (
	"fmt"

	"github.com/chazu/hemesh/pkg/geom"
)

// VertexID indexes Mesh.Vertices.
type VertexID int

// HalfEdgeID indexes Mesh.HalfEdges.
type HalfEdgeID int

// FaceID indexes Mesh.Faces.
type FaceID int

// Sentinels for absent references.
const (
	NoVertex   VertexID   = -1
	NoHalfEdge HalfEdgeID = -1
	NoFace     FaceID     = -1
)

// Vertex is a mesh vertex. HalfEdge is any one half-edge leaving it.
type Vertex struct {
	ID       VertexID
	Position geom.Point
	HalfEdge HalfEdgeID
}

// HalfEdge is one directed, face-owned side of an edge.
//
// Origin is the vertex it leaves from. Next and Prev walk counter-clockwise
// around Face. Twin is the opposite half-edge on the neighbouring face, or
// NoHalfEdge on a boundary.
type HalfEdge struct {
	ID     HalfEdgeID
	Origin VertexID
	Face   FaceID
	Next   HalfEdgeID
	Prev   HalfEdgeID
	Twin   HalfEdgeID
}

// Face is a polygon with at least three sides, wound counter-clockwise.
type Face struct {
	ID       FaceID
	HalfEdge HalfEdgeID
}

// Mesh owns every vertex, half-edge and face it was built with.
type Mesh struct {
	Vertices  []Vertex
	HalfEdges []HalfEdge
	Faces     []Face
}

func (v Vertex) String() string {
	return fmt.Sprintf("Vertex %d %v", v.ID, v.Position)
}

func (e HalfEdge) String() string {
	return fmt.Sprintf("HalfEdge %d (origin: %d, face: %d, next: %d, prev: %d, twin: %d)",
		e.ID, e.Origin, e.Face, e.Next, e.Prev, e.Twin)
}

func (f Face) String() string {
	return fmt.Sprintf("Face %d (halfedge: %d)", f.ID, f.HalfEdge)
}

func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh(vertices: %d, halfedges: %d, faces: %d)",
		len(m.Vertices), len(m.HalfEdges), len(m.Faces))
}

// EdgeKey identifies an undirected edge by its endpoints, smaller ID first.
type EdgeKey struct {
	A, B VertexID
}

// NewEdgeKey returns the canonical key for the edge between u and v.
func NewEdgeKey(u, v VertexID) EdgeKey {
	if v < u {
		u, v = v, u
	}
	return EdgeKey{A: u, B: v}
}

// Positions returns a copy of every vertex position, indexed by VertexID.
func (m *Mesh) Positions() []geom.Point {
	out := make([]geom.Point, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.Position
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the vertex positions.
// An empty mesh has a zero box.
func (m *Mesh) Bounds() (min, max geom.Point) {
	if len(m.Vertices) == 0 {
		return min, max
	}
	min, max = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		p := v.Position
		min = geom.New(minf(min.X, p.X), minf(min.Y, p.Y), minf(min.Z, p.Z))
		max = geom.New(maxf(max.X, p.X), maxf(max.Y, p.Y), maxf(max.Z, p.Z))
	}
	return min, max
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func (m *Mesh) hasVertex(v VertexID) bool {
	return v >= 0 && int(v) < len(m.Vertices)
}

func (m *Mesh) hasHalfEdge(e HalfEdgeID) bool {
	return e >= 0 && int(e) < len(m.HalfEdges)
}

func (m *Mesh) hasFace(f FaceID) bool {
	return f >= 0 && int(f) < len(m.Faces)
}
