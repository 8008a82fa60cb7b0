package sdfx

import (
	"testing"

	"github.com/chazu/hemesh/pkg/geom"
	"github.com/chazu/hemesh/pkg/halfedge"
	"github.com/chazu/hemesh/pkg/kernel"
)

// mustSolid returns a function that unwraps a primitive constructor's
// result, so a call can be passed straight through: mustSolid(t)(k.Box(...)).
func mustSolid(t *testing.T) func(kernel.Solid, error) kernel.Solid {
	return func(s kernel.Solid, err error) kernel.Solid {
		t.Helper()
		if err != nil {
			t.Fatalf("primitive failed: %v", err)
		}
		return s
	}
}

func TestPrimitivesTessellate(t *testing.T) {
	k := New()
	tests := []struct {
		name  string
		solid func() (kernel.Solid, error)
	}{
		{"box", func() (kernel.Solid, error) { return k.Box(2, 1, 1) }},
		{"sphere", func() (kernel.Solid, error) { return k.Sphere(1) }},
		{"cylinder", func() (kernel.Solid, error) { return k.Cylinder(2, 0.5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSolid(t)(tt.solid())
			mesh, err := k.ToMesh(s, 16)
			if err != nil {
				t.Fatalf("ToMesh failed: %v", err)
			}
			if mesh.TriangleCount() == 0 {
				t.Fatal("expected triangles")
			}
			if len(mesh.Vertices) != len(mesh.Normals) {
				t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
			}
			if len(mesh.Indices) != mesh.TriangleCount()*3 {
				t.Fatalf("indices length %d != triangles*3", len(mesh.Indices))
			}
		})
	}
}

func TestInvalidPrimitive(t *testing.T) {
	k := New()
	if _, err := k.Sphere(-1); err == nil {
		t.Error("Sphere(-1) should fail")
	}
	if _, err := k.Box(-1, 1, 1); err == nil {
		t.Error("Box(-1, 1, 1) should fail")
	}
}

func TestWeldSharesCorners(t *testing.T) {
	k := New()
	s := mustSolid(t)(k.Sphere(1))
	mesh, err := k.ToMesh(s, 12)
	if err != nil {
		t.Fatal(err)
	}

	positions, faces, err := halfedge.Weld(mesh.Vertices, mesh.Indices, 1e-5)
	if err != nil {
		t.Fatalf("Weld failed: %v", err)
	}
	if len(positions) >= mesh.VertexCount() {
		t.Errorf("welding kept %d of %d corners", len(positions), mesh.VertexCount())
	}
	for i, f := range faces {
		for _, c := range f {
			if c < 0 || c >= len(positions) {
				t.Fatalf("face %d corner %d out of range", i, c)
			}
		}
	}
}

func TestBooleans(t *testing.T) {
	k := New()
	box := mustSolid(t)(k.Box(2, 2, 2))
	hole := mustSolid(t)(k.Cylinder(3, 0.5))

	tests := []struct {
		name  string
		solid kernel.Solid
	}{
		{"union", k.Union(box, k.Translate(box, 1, 0, 0))},
		{"difference", k.Difference(box, hole)},
		{"intersection", k.Intersection(box, k.Translate(box, 1, 0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := k.ToMesh(tt.solid, 16)
			if err != nil {
				t.Fatalf("ToMesh failed: %v", err)
			}
			if mesh.IsEmpty() {
				t.Fatal("mesh is empty")
			}
		})
	}
}

func TestBoundingBoxes(t *testing.T) {
	k := New()
	box := mustSolid(t)(k.Box(10, 10, 10))
	long := mustSolid(t)(k.Box(100, 10, 10))

	tests := []struct {
		name     string
		solid    kernel.Solid
		min, max geom.Point
		tol      float64
	}{
		{"centred box", mustSolid(t)(k.Box(100, 50, 25)), geom.New(-50, -25, -12.5), geom.New(50, 25, 12.5), 0.01},
		{"translated", k.Translate(box, 100, 200, 300), geom.New(95, 195, 295), geom.New(105, 205, 305), 0.5},
		{"rotated about z", k.Rotate(long, 0, 0, 90), geom.New(-5, -50, -5), geom.New(5, 50, 5), 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := tt.solid.BoundingBox()
			if !min.ApproxEqual(tt.min, tt.tol) || !max.ApproxEqual(tt.max, tt.tol) {
				t.Errorf("BoundingBox() = %v, %v; want %v, %v", min, max, tt.min, tt.max)
			}
		})
	}
}
