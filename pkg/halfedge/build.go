package halfedge

import (
	"fmt"

	"github.com/chazu/hemesh/pkg/geom"
)

// directedEdge keys the build-time map used for twin discovery.
type directedEdge struct {
	from, to VertexID
}

// Build constructs a mesh from vertex positions and CCW face index lists.
//
// Faces are created in order, then twins are linked in a second pass since
// a face's twin may belong to a face that comes later. Build fails without
// returning a mesh on a face with fewer than three corners, an index
// outside positions, a zero-length side, or a directed edge claimed by two
// faces.
func Build(positions []geom.Point, faces [][]int) (*Mesh, error) {
	m := &Mesh{
		Vertices: make([]Vertex, len(positions)),
		Faces:    make([]Face, 0, len(faces)),
	}
	for i, p := range positions {
		m.Vertices[i] = Vertex{ID: VertexID(i), Position: p, HalfEdge: NoHalfEdge}
	}

	edges := make(map[directedEdge]HalfEdgeID)
	for fi, corners := range faces {
		if err := m.checkFace(fi, corners, edges); err != nil {
			return nil, err
		}
		m.addFace(corners, edges)
	}

	m.linkTwins(edges)
	return m, nil
}

// MustBuild is Build for fixed, known-good data. It panics on error.
func MustBuild(positions []geom.Point, faces [][]int) *Mesh {
	m, err := Build(positions, faces)
	if err != nil {
		panic(err)
	}
	return m
}

// checkFace rejects a face before any of it is added to the mesh.
func (m *Mesh) checkFace(fi int, corners []int, edges map[directedEdge]HalfEdgeID) error {
	n := len(corners)
	if n < 3 {
		return &BuildError{Face: fi, Side: -1, Err: fmt.Errorf("%w: got %d", ErrDegenerateFace, n)}
	}
	for side, idx := range corners {
		if idx < 0 || idx >= len(m.Vertices) {
			return &BuildError{Face: fi, Side: side,
				Err: fmt.Errorf("%w: %d not in [0, %d)", ErrVertexOutOfRange, idx, len(m.Vertices))}
		}
	}
	seen := make(map[directedEdge]bool, n)
	for side := range corners {
		u, v := VertexID(corners[side]), VertexID(corners[(side+1)%n])
		if u == v {
			return &BuildError{Face: fi, Side: side, Err: fmt.Errorf("%w: %d", ErrRepeatedVertex, u)}
		}
		key := directedEdge{u, v}
		if owner, ok := edges[key]; ok {
			return &BuildError{Face: fi, Side: side,
				Err: fmt.Errorf("%w: %d->%d already on face %d", ErrNonManifoldEdge, u, v, m.HalfEdges[owner].Face)}
		}
		if seen[key] {
			return &BuildError{Face: fi, Side: side,
				Err: fmt.Errorf("%w: %d->%d repeated within the face", ErrNonManifoldEdge, u, v)}
		}
		seen[key] = true
	}
	return nil
}

// addFace appends a face and its half-edge cycle. corners must already
// have passed checkFace.
func (m *Mesh) addFace(corners []int, edges map[directedEdge]HalfEdgeID) {
	n := len(corners)
	fid := FaceID(len(m.Faces))
	first := HalfEdgeID(len(m.HalfEdges))

	for side, idx := range corners {
		id := first + HalfEdgeID(side)
		origin := VertexID(idx)
		m.HalfEdges = append(m.HalfEdges, HalfEdge{
			ID:     id,
			Origin: origin,
			Face:   fid,
			Next:   first + HalfEdgeID((side+1)%n),
			Prev:   first + HalfEdgeID((side+n-1)%n),
			Twin:   NoHalfEdge,
		})
		edges[directedEdge{origin, VertexID(corners[(side+1)%n])}] = id
		if m.Vertices[origin].HalfEdge == NoHalfEdge {
			m.Vertices[origin].HalfEdge = id
		}
	}
	m.Faces = append(m.Faces, Face{ID: fid, HalfEdge: first})
}

// linkTwins pairs every half-edge u->v with v->u when both exist.
func (m *Mesh) linkTwins(edges map[directedEdge]HalfEdgeID) {
	for i := range m.HalfEdges {
		e := &m.HalfEdges[i]
		if e.Twin != NoHalfEdge {
			continue
		}
		dest := m.HalfEdges[e.Next].Origin
		if t, ok := edges[directedEdge{dest, e.Origin}]; ok {
			e.Twin = t
			m.HalfEdges[t].Twin = e.ID
		}
	}
}
