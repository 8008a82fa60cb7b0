// Package subdivide refines half-edge meshes with the Catmull-Clark scheme.
//
// One step turns every n-sided face into n quads. The refined mesh indexes
// its vertices as follows: the repositioned original vertices keep their
// IDs, face points follow in face order, and edge points come last in the
// order their edges are first met when walking half-edges by ID.
package subdivide

import (
	"fmt"

	"github.com/chazu/hemesh/pkg/geom"
	"github.com/chazu/hemesh/pkg/halfedge"
	"golang.org/x/sync/errgroup"
)

// edge is one undirected edge of the input mesh.
type edge struct {
	key  halfedge.EdgeKey
	side halfedge.HalfEdgeID // any half-edge of the edge
}

type subdivider struct {
	m    *halfedge.Mesh
	opts options

	edges     []edge
	edgeIndex map[halfedge.EdgeKey]int

	facePoints   []geom.Point
	edgePoints   []geom.Point
	vertexPoints []geom.Point
}

// CatmullClark performs one subdivision step and returns a new mesh. The
// input must pass Validate and is never modified.
func CatmullClark(m *halfedge.Mesh, opts ...Option) (*halfedge.Mesh, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mesh", ErrInvalidInput)
	}
	if res := m.Validate(); !res.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, res.Errors[0])
	}

	s := &subdivider{m: m, opts: newOptions(opts)}
	s.collectEdges()

	if err := s.each(len(m.Faces), s.facePoint); err != nil {
		return nil, err
	}
	// Edge and vertex points both read face points, so they wait for the
	// face pass to finish.
	if err := s.each(len(s.edges), s.edgePoint); err != nil {
		return nil, err
	}
	if err := s.each(len(m.Vertices), s.vertexPoint); err != nil {
		return nil, err
	}

	positions, faces, err := s.assemble()
	if err != nil {
		return nil, err
	}
	out, err := halfedge.Build(positions, faces)
	if err != nil {
		return nil, fmt.Errorf("subdivide: build refined mesh: %w", err)
	}
	return out, nil
}

// Iterate applies CatmullClark levels times. Zero levels returns m itself.
func Iterate(m *halfedge.Mesh, levels int, opts ...Option) (*halfedge.Mesh, error) {
	if levels < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNegativeLevels, levels)
	}
	for i := 0; i < levels; i++ {
		next, err := CatmullClark(m, opts...)
		if err != nil {
			return nil, fmt.Errorf("subdivide: level %d: %w", i+1, err)
		}
		m = next
	}
	return m, nil
}

// collectEdges enumerates undirected edges in half-edge ID order.
func (s *subdivider) collectEdges() {
	s.edgeIndex = make(map[halfedge.EdgeKey]int, len(s.m.HalfEdges)/2+1)
	for _, he := range s.m.HalfEdges {
		dest := s.m.HalfEdges[he.Next].Origin
		key := halfedge.NewEdgeKey(he.Origin, dest)
		if _, ok := s.edgeIndex[key]; ok {
			continue
		}
		s.edgeIndex[key] = len(s.edges)
		s.edges = append(s.edges, edge{key: key, side: he.ID})
	}
	s.facePoints = make([]geom.Point, len(s.m.Faces))
	s.edgePoints = make([]geom.Point, len(s.edges))
	s.vertexPoints = make([]geom.Point, len(s.m.Vertices))
}

// each calls fn for 0..n-1. With more than one worker the range is split
// into contiguous chunks; fn only writes its own slot.
func (s *subdivider) each(n int, fn func(i int) error) error {
	workers := s.opts.workers
	if workers <= 1 || n < 2 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *subdivider) facePoint(i int) error {
	c, err := s.m.FaceCentroid(halfedge.FaceID(i))
	if err != nil {
		return err
	}
	s.facePoints[i] = c
	return nil
}

// edgePoint averages the endpoints and the two neighbouring face points.
// A boundary edge has only one face and gets its midpoint.
func (s *subdivider) edgePoint(i int) error {
	e := s.edges[i]
	p0 := s.m.Vertices[e.key.A].Position
	p1 := s.m.Vertices[e.key.B].Position

	he := s.m.HalfEdges[e.side]
	if he.Twin == halfedge.NoHalfEdge {
		s.edgePoints[i] = geom.Midpoint(p0, p1)
		return nil
	}
	f1 := s.facePoints[he.Face]
	f2 := s.facePoints[s.m.HalfEdges[he.Twin].Face]
	s.edgePoints[i] = geom.Centroid(p0, p1, f1, f2)
	return nil
}

func (s *subdivider) vertexPoint(i int) error {
	v := halfedge.VertexID(i)
	p := s.m.Vertices[v].Position

	boundary, err := s.m.IsBoundaryVertex(v)
	if err != nil {
		return err
	}
	if boundary {
		s.vertexPoints[i], err = s.boundaryVertexPoint(v, p)
		return err
	}

	out, err := s.m.OutgoingHalfEdges(v)
	if err != nil {
		return err
	}
	n := float64(len(out))
	faces := make([]geom.Point, 0, len(out))
	mids := make([]geom.Point, 0, len(out))
	for _, e := range out {
		he := s.m.HalfEdges[e]
		faces = append(faces, s.facePoints[he.Face])
		mids = append(mids, geom.Midpoint(p, s.m.Vertices[s.m.HalfEdges[he.Next].Origin].Position))
	}

	// (F + 2R + (n-3)P) / n
	f := geom.Centroid(faces...)
	r := geom.Centroid(mids...)
	s.vertexPoints[i] = f.Add(r.Scale(2)).Add(p.Scale(n - 3)).Div(n)
	return nil
}

// boundaryVertexPoint applies the boundary rule. Only a vertex with exactly
// two boundary edges is smoothed; any other count is a corner that stays
// put.
func (s *subdivider) boundaryVertexPoint(v halfedge.VertexID, p geom.Point) (geom.Point, error) {
	if s.opts.boundary == BoundaryFixed {
		return p, nil
	}
	out, err := s.m.OutgoingHalfEdges(v)
	if err != nil {
		return p, err
	}
	var mids []geom.Point
	for _, e := range out {
		he := s.m.HalfEdges[e]
		if he.Twin == halfedge.NoHalfEdge {
			dest := s.m.HalfEdges[he.Next].Origin
			mids = append(mids, geom.Midpoint(p, s.m.Vertices[dest].Position))
		}
		if in := s.m.HalfEdges[he.Prev]; in.Twin == halfedge.NoHalfEdge {
			mids = append(mids, geom.Midpoint(p, s.m.Vertices[in.Origin].Position))
		}
	}
	if len(mids) != 2 {
		return p, nil
	}
	return geom.Centroid(mids...).Add(p).Scale(0.5), nil
}

// assemble lays out the refined positions and emits one quad per corner of
// every input face: vertex point, next edge point, face point, previous
// edge point.
func (s *subdivider) assemble() ([]geom.Point, [][]int, error) {
	nv, nf := len(s.m.Vertices), len(s.m.Faces)
	positions := make([]geom.Point, 0, nv+nf+len(s.edges))
	positions = append(positions, s.vertexPoints...)
	positions = append(positions, s.facePoints...)
	positions = append(positions, s.edgePoints...)

	edgeVertex := func(u, v halfedge.VertexID) (int, error) {
		idx, ok := s.edgeIndex[halfedge.NewEdgeKey(u, v)]
		if !ok {
			return 0, fmt.Errorf("%w: %d-%d", ErrMissingEdgePoint, u, v)
		}
		return nv + nf + idx, nil
	}

	var faces [][]int
	for _, f := range s.m.Faces {
		vs, err := s.m.FaceVertices(f.ID)
		if err != nil {
			return nil, nil, err
		}
		center := nv + int(f.ID)
		k := len(vs)
		for i, v := range vs {
			next, err := edgeVertex(v, vs[(i+1)%k])
			if err != nil {
				return nil, nil, err
			}
			prev, err := edgeVertex(vs[(i+k-1)%k], v)
			if err != nil {
				return nil, nil, err
			}
			faces = append(faces, []int{int(v), next, center, prev})
		}
	}
	return positions, faces, nil
}
