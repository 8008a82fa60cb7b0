package halfedge

// BoundaryHalfEdges returns every half-edge without a twin, in ID order.
func (m *Mesh) BoundaryHalfEdges() []HalfEdgeID {
	var out []HalfEdgeID
	for _, e := range m.HalfEdges {
		if e.Twin == NoHalfEdge {
			out = append(out, e.ID)
		}
	}
	return out
}

// BoundaryVertices returns every vertex touching a boundary edge, in ID
// order.
func (m *Mesh) BoundaryVertices() []VertexID {
	onBoundary := make([]bool, len(m.Vertices))
	for _, id := range m.BoundaryHalfEdges() {
		onBoundary[m.HalfEdges[id].Origin] = true
		onBoundary[m.dest(id)] = true
	}
	var out []VertexID
	for i, b := range onBoundary {
		if b {
			out = append(out, VertexID(i))
		}
	}
	return out
}

// BoundaryFaces returns every face with at least one boundary side, in ID
// order.
func (m *Mesh) BoundaryFaces() []FaceID {
	var out []FaceID
	last := NoFace
	for _, id := range m.BoundaryHalfEdges() {
		f := m.HalfEdges[id].Face
		if f != last && f != NoFace {
			out = append(out, f)
			last = f
		}
	}
	return out
}

// IsClosed reports whether the mesh has no boundary edges.
func (m *Mesh) IsClosed() bool {
	return len(m.BoundaryHalfEdges()) == 0
}
