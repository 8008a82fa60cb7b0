package halfedge

import (
	"errors"
	"testing"

	"github.com/chazu/hemesh/pkg/geom"
)

func TestBuildCube(t *testing.T) {
	m := Cube(2)

	want := Stats{NumVertices: 8, NumHalfEdges: 24, NumFaces: 6, NumEdges: 12}
	if got := m.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
	if got := m.Stats().EulerCharacteristic(); got != 2 {
		t.Errorf("Euler characteristic = %d, want 2", got)
	}
	if res := m.Validate(); !res.Valid() {
		for _, e := range res.Errors {
			t.Errorf("unexpected validation error: %s", e)
		}
	}
	if !m.IsClosed() {
		t.Error("cube should be closed")
	}
}

func TestBuildLinksEveryTwin(t *testing.T) {
	m := Cube(2)
	for _, e := range m.HalfEdges {
		if e.Twin == NoHalfEdge {
			t.Fatalf("half-edge %d has no twin on a closed cube", e.ID)
		}
		twin := m.HalfEdges[e.Twin]
		if twin.Twin != e.ID {
			t.Errorf("half-edge %d: twin.twin = %d", e.ID, twin.Twin)
		}
		u, v, err := m.EdgeVertices(e.ID)
		mustNoErr(t, err)
		tu, tv, err := m.EdgeVertices(twin.ID)
		mustNoErr(t, err)
		if tu != v || tv != u {
			t.Errorf("half-edge %d joins %d->%d but twin joins %d->%d", e.ID, u, v, tu, tv)
		}
	}
}

func TestBuildNextPrevCycles(t *testing.T) {
	m := Cube(2)
	for _, e := range m.HalfEdges {
		if m.HalfEdges[e.Next].Prev != e.ID {
			t.Errorf("half-edge %d: next.prev = %d", e.ID, m.HalfEdges[e.Next].Prev)
		}
		if m.HalfEdges[e.Prev].Next != e.ID {
			t.Errorf("half-edge %d: prev.next = %d", e.ID, m.HalfEdges[e.Prev].Next)
		}
	}
	for _, f := range m.Faces {
		e := f.HalfEdge
		for i := 0; i < 4; i++ {
			e = m.HalfEdges[e].Next
		}
		if e != f.HalfEdge {
			t.Errorf("face %d: four next steps end at %d, want %d", f.ID, e, f.HalfEdge)
		}
	}
}

func TestBuildOpenGrid(t *testing.T) {
	positions, faces := GridData(2)
	m := mustBuild(t, positions, faces)

	want := Stats{NumVertices: 9, NumHalfEdges: 16, NumFaces: 4, NumEdges: 12}
	if got := m.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
	if got := len(m.BoundaryHalfEdges()); got != 8 {
		t.Errorf("boundary half-edges = %d, want 8", got)
	}
}

func TestBuildErrors(t *testing.T) {
	square := []geom.Point{
		geom.New(0, 0, 0), geom.New(1, 0, 0), geom.New(1, 1, 0), geom.New(0, 1, 0),
	}

	tests := []struct {
		name  string
		faces [][]int
		want  error
		face  int
	}{
		{"two corners", [][]int{{0, 1}}, ErrDegenerateFace, 0},
		{"empty face", [][]int{{0, 1, 2}, {}}, ErrDegenerateFace, 1},
		{"index too large", [][]int{{0, 1, 4}}, ErrVertexOutOfRange, 0},
		{"negative index", [][]int{{0, -1, 2}}, ErrVertexOutOfRange, 0},
		{"same winding twice", [][]int{{0, 1, 2}, {0, 1, 3}}, ErrNonManifoldEdge, 1},
		{"edge repeated in face", [][]int{{0, 1, 2, 0, 1, 3}}, ErrNonManifoldEdge, 0},
		{"zero-length side", [][]int{{0, 1, 1, 2}}, ErrRepeatedVertex, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(square, tt.faces)
			if err == nil {
				t.Fatal("expected an error")
			}
			if m != nil {
				t.Error("a failed build must not return a mesh")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			var be *BuildError
			if !errors.As(err, &be) {
				t.Fatalf("error %v is not a *BuildError", err)
			}
			if be.Face != tt.face {
				t.Errorf("BuildError.Face = %d, want %d", be.Face, tt.face)
			}
		})
	}
}

func TestBuildDuplicateDirectedEdgeIsNotLinked(t *testing.T) {
	positions := []geom.Point{
		geom.New(0, 0, 0), geom.New(1, 0, 0), geom.New(0, 1, 0), geom.New(0, -1, 0),
	}
	// Both faces list 0->1: the second is flipped relative to the first.
	_, err := Build(positions, [][]int{{0, 1, 2}, {0, 1, 3}})
	if !errors.Is(err, ErrNonManifoldEdge) {
		t.Fatalf("error = %v, want ErrNonManifoldEdge", err)
	}
}

func TestBuildEmpty(t *testing.T) {
	m := mustBuild(t, nil, nil)
	if got := m.Stats(); got != (Stats{}) {
		t.Errorf("Stats() = %+v, want zero", got)
	}
	if !m.Validate().Valid() {
		t.Error("empty mesh should be valid")
	}
}

func TestBuildKeepsFaceOrder(t *testing.T) {
	positions, faces := CubeData(2)
	m := mustBuild(t, positions, faces)
	for i, want := range faces {
		got, err := m.FaceVertices(FaceID(i))
		mustNoErr(t, err)
		for j := range want {
			if int(got[j]) != want[j] {
				t.Errorf("face %d corners = %v, want %v", i, got, want)
				break
			}
		}
	}
}

func TestMustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustBuild should panic on malformed input")
		}
	}()
	MustBuild(nil, [][]int{{0, 1, 2}})
}

func TestBounds(t *testing.T) {
	min, max := Cube(2).Bounds()
	if !min.Equal(geom.New(-1, -1, -1)) || !max.Equal(geom.New(1, 1, 1)) {
		t.Errorf("Bounds() = %v, %v", min, max)
	}
}
