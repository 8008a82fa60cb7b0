package halfedge

import (
	"fmt"
	"slices"

	"github.com/chazu/hemesh/pkg/geom"
	"github.com/samber/lo"
)

// Every query below is a read-only walk over Next/Prev/Twin. Per-vertex
// queries cost O(valence), per-face queries O(sides).

// ---------------------------------------------------------------------------
// Half-edges
// ---------------------------------------------------------------------------

// HalfEdge returns the half-edge with the given ID.
func (m *Mesh) HalfEdge(e HalfEdgeID) (HalfEdge, error) {
	if !m.hasHalfEdge(e) {
		return HalfEdge{}, halfEdgeNotFound(e)
	}
	return m.HalfEdges[e], nil
}

// Destination returns the vertex a half-edge points at.
func (m *Mesh) Destination(e HalfEdgeID) (VertexID, error) {
	if !m.hasHalfEdge(e) {
		return NoVertex, halfEdgeNotFound(e)
	}
	return m.dest(e), nil
}

// EdgeVertices returns the origin and destination of a half-edge.
func (m *Mesh) EdgeVertices(e HalfEdgeID) (VertexID, VertexID, error) {
	if !m.hasHalfEdge(e) {
		return NoVertex, NoVertex, halfEdgeNotFound(e)
	}
	return m.HalfEdges[e].Origin, m.dest(e), nil
}

// IsBoundaryHalfEdge reports whether a half-edge has no twin.
func (m *Mesh) IsBoundaryHalfEdge(e HalfEdgeID) (bool, error) {
	if !m.hasHalfEdge(e) {
		return false, halfEdgeNotFound(e)
	}
	return m.HalfEdges[e].Twin == NoHalfEdge, nil
}

// EdgeLength returns the distance between a half-edge's endpoints.
func (m *Mesh) EdgeLength(e HalfEdgeID) (float64, error) {
	if !m.hasHalfEdge(e) {
		return 0, halfEdgeNotFound(e)
	}
	a := m.Vertices[m.HalfEdges[e].Origin].Position
	b := m.Vertices[m.dest(e)].Position
	return a.Distance(b), nil
}

func (m *Mesh) dest(e HalfEdgeID) VertexID {
	return m.HalfEdges[m.HalfEdges[e].Next].Origin
}

// ---------------------------------------------------------------------------
// Vertices
// ---------------------------------------------------------------------------

// Vertex returns the vertex with the given ID.
func (m *Mesh) Vertex(v VertexID) (Vertex, error) {
	if !m.hasVertex(v) {
		return Vertex{}, vertexNotFound(v)
	}
	return m.Vertices[v], nil
}

// fan is the ordered set of half-edges leaving a vertex. When the vertex
// lies on a boundary, the fan is open: Edges runs from the outgoing
// boundary half-edge around to the last face, and Incoming is the
// twinless half-edge that closes the other side.
type fan struct {
	Edges    []HalfEdgeID
	Boundary bool
	Incoming HalfEdgeID
}

// vertexFan walks the half-edges leaving v. The walk first turns with
// twin.next; if it runs into a boundary it restarts from the seed and
// turns the other way with prev.twin, so a boundary vertex still yields
// every outgoing half-edge exactly once. Any reference that leaves the
// mesh, or a half-edge on the fan that does not start at v, ends the walk
// with ErrBrokenFan.
func (m *Mesh) vertexFan(v VertexID) (fan, error) {
	f := fan{Incoming: NoHalfEdge}
	start := m.Vertices[v].HalfEdge
	if start == NoHalfEdge {
		return f, nil
	}
	if !m.fanEdge(start, v) {
		return f, vertexFanError(v)
	}
	limit := len(m.HalfEdges)

	forward := []HalfEdgeID{start}
	for e := start; ; {
		t := m.HalfEdges[e].Twin
		if t == NoHalfEdge {
			f.Boundary = true
			break
		}
		if !m.hasHalfEdge(t) {
			return f, vertexFanError(v)
		}
		e = m.HalfEdges[t].Next
		if e == start {
			f.Edges = forward
			return f, nil
		}
		if len(forward) >= limit || !m.fanEdge(e, v) {
			return f, vertexFanError(v)
		}
		forward = append(forward, e)
	}

	var backward []HalfEdgeID
	for e := start; ; {
		p := m.HalfEdges[e].Prev
		t := m.HalfEdges[p].Twin
		if t == NoHalfEdge {
			f.Incoming = p
			break
		}
		e = t
		if len(forward)+len(backward) >= limit || !m.fanEdge(e, v) {
			return f, vertexFanError(v)
		}
		backward = append(backward, e)
	}
	slices.Reverse(backward)
	f.Edges = append(backward, forward...)
	return f, nil
}

// fanEdge reports whether e can sit on the fan of v: it exists, starts at
// v, and its next and prev exist.
func (m *Mesh) fanEdge(e HalfEdgeID, v VertexID) bool {
	if !m.hasHalfEdge(e) {
		return false
	}
	he := m.HalfEdges[e]
	return he.Origin == v && m.hasHalfEdge(he.Next) && m.hasHalfEdge(he.Prev)
}

// OutgoingHalfEdges returns every half-edge that starts at v, in fan order.
func (m *Mesh) OutgoingHalfEdges(v VertexID) ([]HalfEdgeID, error) {
	if !m.hasVertex(v) {
		return nil, vertexNotFound(v)
	}
	f, err := m.vertexFan(v)
	if err != nil {
		return nil, err
	}
	return f.Edges, nil
}

// AdjacentVertices returns the 1-ring of v: the destinations of its
// outgoing half-edges and, on a boundary, the origin of the twinless
// half-edge arriving at v, so adjacency stays symmetric.
func (m *Mesh) AdjacentVertices(v VertexID) ([]VertexID, error) {
	if !m.hasVertex(v) {
		return nil, vertexNotFound(v)
	}
	f, err := m.vertexFan(v)
	if err != nil {
		return nil, err
	}
	out := lo.Map(f.Edges, func(e HalfEdgeID, _ int) VertexID {
		return m.dest(e)
	})
	if f.Incoming != NoHalfEdge {
		out = append(out, m.HalfEdges[f.Incoming].Origin)
	}
	return out, nil
}

// IncidentFaces returns the faces around v.
func (m *Mesh) IncidentFaces(v VertexID) ([]FaceID, error) {
	out, err := m.OutgoingHalfEdges(v)
	if err != nil {
		return nil, err
	}
	faces := lo.Map(out, func(e HalfEdgeID, _ int) FaceID {
		return m.HalfEdges[e].Face
	})
	return lo.Filter(faces, func(f FaceID, _ int) bool {
		return f != NoFace
	}), nil
}

// Valence returns the number of half-edges leaving v. For an interior
// vertex this equals its edge and face count; a boundary vertex has one
// more incident edge than its valence.
func (m *Mesh) Valence(v VertexID) (int, error) {
	out, err := m.OutgoingHalfEdges(v)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// IsBoundaryVertex reports whether any edge at v lacks a twin.
func (m *Mesh) IsBoundaryVertex(v VertexID) (bool, error) {
	if !m.hasVertex(v) {
		return false, vertexNotFound(v)
	}
	f, err := m.vertexFan(v)
	if err != nil {
		return false, err
	}
	return f.Boundary, nil
}

// AreVerticesAdjacent reports whether an edge joins u and v.
func (m *Mesh) AreVerticesAdjacent(u, v VertexID) (bool, error) {
	if !m.hasVertex(v) {
		return false, vertexNotFound(v)
	}
	adj, err := m.AdjacentVertices(u)
	if err != nil {
		return false, err
	}
	return lo.Contains(adj, v), nil
}

// HalfEdgeBetween returns the half-edge running from u to v. The bool is
// false when no such half-edge exists; a boundary edge only exists in one
// direction.
func (m *Mesh) HalfEdgeBetween(u, v VertexID) (HalfEdgeID, bool, error) {
	if !m.hasVertex(v) {
		return NoHalfEdge, false, vertexNotFound(v)
	}
	out, err := m.OutgoingHalfEdges(u)
	if err != nil {
		return NoHalfEdge, false, err
	}
	for _, e := range out {
		if m.dest(e) == v {
			return e, true, nil
		}
	}
	return NoHalfEdge, false, nil
}

// KRingNeighbors returns the vertices within k edge hops of v, excluding v
// itself, sorted by ID. k = 0 yields no vertices and k = 1 the 1-ring.
func (m *Mesh) KRingNeighbors(v VertexID, k int) ([]VertexID, error) {
	if !m.hasVertex(v) {
		return nil, vertexNotFound(v)
	}
	if k < 0 {
		return nil, fmt.Errorf("halfedge: vertex %d: %w", v, ErrNegativeRing)
	}

	visited := map[VertexID]bool{v: true}
	ring := []VertexID{v}
	for hop := 0; hop < k && len(ring) > 0; hop++ {
		var next []VertexID
		for _, u := range ring {
			adj, err := m.AdjacentVertices(u)
			if err != nil {
				return nil, err
			}
			for _, w := range adj {
				if !visited[w] {
					visited[w] = true
					next = append(next, w)
				}
			}
		}
		ring = next
	}

	delete(visited, v)
	out := lo.Keys(visited)
	slices.Sort(out)
	return out, nil
}

// ---------------------------------------------------------------------------
// Faces
// ---------------------------------------------------------------------------

// Face returns the face with the given ID.
func (m *Mesh) Face(f FaceID) (Face, error) {
	if !m.hasFace(f) {
		return Face{}, faceNotFound(f)
	}
	return m.Faces[f], nil
}

// FaceHalfEdges returns the half-edges bounding f in CCW order, starting
// at the face's recorded half-edge.
func (m *Mesh) FaceHalfEdges(f FaceID) ([]HalfEdgeID, error) {
	if !m.hasFace(f) {
		return nil, faceNotFound(f)
	}
	start := m.Faces[f].HalfEdge
	if !m.cycleEdge(start) {
		return nil, faceCycleError(f)
	}
	out := []HalfEdgeID{start}
	for e := m.HalfEdges[start].Next; e != start; e = m.HalfEdges[e].Next {
		if len(out) >= len(m.HalfEdges) || !m.cycleEdge(e) {
			return nil, faceCycleError(f)
		}
		out = append(out, e)
	}
	return out, nil
}

// cycleEdge reports whether e exists and points at an existing origin and
// next half-edge.
func (m *Mesh) cycleEdge(e HalfEdgeID) bool {
	if !m.hasHalfEdge(e) {
		return false
	}
	he := m.HalfEdges[e]
	return m.hasVertex(he.Origin) && m.hasHalfEdge(he.Next)
}

// FaceVertices returns the corners of f in CCW order.
func (m *Mesh) FaceVertices(f FaceID) ([]VertexID, error) {
	hes, err := m.FaceHalfEdges(f)
	if err != nil {
		return nil, err
	}
	return lo.Map(hes, func(e HalfEdgeID, _ int) VertexID {
		return m.HalfEdges[e].Origin
	}), nil
}

// FacePositions returns the corner positions of f in CCW order.
func (m *Mesh) FacePositions(f FaceID) ([]geom.Point, error) {
	vs, err := m.FaceVertices(f)
	if err != nil {
		return nil, err
	}
	return lo.Map(vs, func(v VertexID, _ int) geom.Point {
		return m.Vertices[v].Position
	}), nil
}

// FaceCentroid returns the average of the corners of f.
func (m *Mesh) FaceCentroid(f FaceID) (geom.Point, error) {
	ps, err := m.FacePositions(f)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Centroid(ps...), nil
}

// NumSides returns the number of corners of f.
func (m *Mesh) NumSides(f FaceID) (int, error) {
	hes, err := m.FaceHalfEdges(f)
	if err != nil {
		return 0, err
	}
	return len(hes), nil
}

// IsTriangle reports whether f has three sides.
func (m *Mesh) IsTriangle(f FaceID) (bool, error) {
	n, err := m.NumSides(f)
	return n == 3, err
}

// IsQuad reports whether f has four sides.
func (m *Mesh) IsQuad(f FaceID) (bool, error) {
	n, err := m.NumSides(f)
	return n == 4, err
}

// HasBoundaryEdge reports whether any side of f lacks a twin.
func (m *Mesh) HasBoundaryEdge(f FaceID) (bool, error) {
	hes, err := m.FaceHalfEdges(f)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(hes, func(e HalfEdgeID) bool {
		return m.HalfEdges[e].Twin == NoHalfEdge
	}), nil
}

// AdjacentFaces returns the faces across each side of f, in side order.
func (m *Mesh) AdjacentFaces(f FaceID) ([]FaceID, error) {
	hes, err := m.FaceHalfEdges(f)
	if err != nil {
		return nil, err
	}
	var out []FaceID
	for _, e := range hes {
		t := m.HalfEdges[e].Twin
		if !m.hasHalfEdge(t) || m.HalfEdges[t].Face == NoFace {
			continue
		}
		out = append(out, m.HalfEdges[t].Face)
	}
	return out, nil
}

// AreFacesAdjacent reports whether f and g share an edge.
func (m *Mesh) AreFacesAdjacent(f, g FaceID) (bool, error) {
	if !m.hasFace(g) {
		return false, faceNotFound(g)
	}
	adj, err := m.AdjacentFaces(f)
	if err != nil {
		return false, err
	}
	return lo.Contains(adj, g), nil
}

// CommonVertices returns the corners of g that are also corners of f, in
// g's winding order.
func (m *Mesh) CommonVertices(f, g FaceID) ([]VertexID, error) {
	fv, err := m.FaceVertices(f)
	if err != nil {
		return nil, err
	}
	gv, err := m.FaceVertices(g)
	if err != nil {
		return nil, err
	}
	return lo.Filter(gv, func(v VertexID, _ int) bool {
		return lo.Contains(fv, v)
	}), nil
}
