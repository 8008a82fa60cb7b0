// Package geom defines the 3D point type shared by the half-edge mesh and
// the subdivision engine. Arithmetic is delegated to sdfx's v3.Vec so the
// whole repository speaks one vector vocabulary.
package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the default tolerance used by Equal.
const Epsilon = 1e-9

// Point is an immutable (x, y, z) triple. It doubles as a vector.
type Point v3.Vec

// New returns the point (x, y, z).
func New(x, y, z float64) Point {
	return Point{X: x, Y: y, Z: z}
}

// Vec returns p as an sdfx vector.
func (p Point) Vec() v3.Vec {
	return v3.Vec(p)
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point(p.Vec().Add(q.Vec()))
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point(p.Vec().Sub(q.Vec()))
}

// Scale returns p * k.
func (p Point) Scale(k float64) Point {
	return Point(p.Vec().MulScalar(k))
}

// Div returns p / k.
func (p Point) Div(k float64) Point {
	return p.Scale(1.0 / k)
}

// Length returns the Euclidean norm of p.
func (p Point) Length() float64 {
	return p.Vec().Length()
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// Less reports whether p sorts before q in lexicographic (x, y, z) order.
func (p Point) Less(q Point) bool {
	return Compare(p, q) < 0
}

// Compare orders points lexicographically by x, then y, then z. It is
// suitable for slices.SortFunc.
func Compare(p, q Point) int {
	switch {
	case p.X < q.X:
		return -1
	case p.X > q.X:
		return 1
	case p.Y < q.Y:
		return -1
	case p.Y > q.Y:
		return 1
	case p.Z < q.Z:
		return -1
	case p.Z > q.Z:
		return 1
	}
	return 0
}

// ApproxEqual reports whether every coordinate of p and q differs by at
// most tol.
func (p Point) ApproxEqual(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol &&
		math.Abs(p.Y-q.Y) <= tol &&
		math.Abs(p.Z-q.Z) <= tol
}

// Equal is ApproxEqual with Epsilon.
func (p Point) Equal(q Point) bool {
	return p.ApproxEqual(q, Epsilon)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", p.X, p.Y, p.Z)
}

// Sum returns the component-wise sum of points.
func Sum(points ...Point) Point {
	var s Point
	for _, p := range points {
		s = s.Add(p)
	}
	return s
}

// Centroid returns the average of points. The centroid of no points is
// the origin.
func Centroid(points ...Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	return Sum(points...).Div(float64(len(points)))
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return a.Add(b).Scale(0.5)
}
