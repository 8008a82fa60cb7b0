package halfedge

// Stats summarises the size of a mesh.
type Stats struct {
	NumVertices  int `json:"numVertices"`
	NumHalfEdges int `json:"numHalfEdges"`
	NumFaces     int `json:"numFaces"`
	NumEdges     int `json:"numEdges"` // undirected; a boundary edge has a single half-edge
}

// Stats counts the mesh elements. Every undirected edge is counted once.
func (m *Mesh) Stats() Stats {
	boundary := len(m.BoundaryHalfEdges())
	return Stats{
		NumVertices:  len(m.Vertices),
		NumHalfEdges: len(m.HalfEdges),
		NumFaces:     len(m.Faces),
		NumEdges:     (len(m.HalfEdges)-boundary)/2 + boundary,
	}
}

// EulerCharacteristic returns V - E + F. A closed genus-0 surface gives 2.
func (s Stats) EulerCharacteristic() int {
	return s.NumVertices - s.NumEdges + s.NumFaces
}
