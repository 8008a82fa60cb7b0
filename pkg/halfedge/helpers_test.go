package halfedge

import (
	"slices"
	"testing"

	"github.com/chazu/hemesh/pkg/geom"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// tetraData returns a tetrahedron with outward CCW triangles.
func tetraData() ([]geom.Point, [][]int) {
	positions := []geom.Point{
		geom.New(0, 0, 0), // A
		geom.New(1, 0, 0), // B
		geom.New(0, 1, 0), // C
		geom.New(0, 0, 1), // D
	}
	faces := [][]int{
		{0, 2, 1}, // ACB
		{0, 1, 3}, // ABD
		{0, 3, 2}, // ADC
		{1, 2, 3}, // BCD
	}
	return positions, faces
}

func mustBuild(t *testing.T, positions []geom.Point, faces [][]int) *Mesh {
	t.Helper()
	m, err := Build(positions, faces)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

// ---------------------------------------------------------------------------
// Assertions
// ---------------------------------------------------------------------------

// hasCode returns true if findings contains at least one finding with the
// given code.
func hasCode(findings []ValidationError, code string) bool {
	for _, f := range findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

// sortedVertices returns a sorted copy for order-insensitive comparison.
func sortedVertices(vs []VertexID) []VertexID {
	out := slices.Clone(vs)
	slices.Sort(out)
	return out
}

func sortedFaces(fs []FaceID) []FaceID {
	out := slices.Clone(fs)
	slices.Sort(out)
	return out
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
