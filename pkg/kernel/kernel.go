// Package kernel defines the solid-modelling interface used to produce
// subdivision input from implicit shapes. A backend builds solids and
// tessellates them into a flat triangle Mesh, which is then welded into a
// half-edge mesh.
package kernel

import "github.com/chazu/hemesh/pkg/geom"

// Solid is an opaque handle to a backend solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max geom.Point)
}

// Kernel builds and tessellates solids. Primitives are centred on the
// origin.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates s on a grid with cells steps along its longest
	// side. cells <= 0 selects the backend default.
	ToMesh(s Solid, cells int) (*Mesh, error)
}
