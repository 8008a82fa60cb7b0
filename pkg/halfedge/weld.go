package halfedge

import (
	"fmt"
	"math"

	"github.com/chazu/hemesh/pkg/geom"
)

// Weld merges the corners of a flat triangle buffer into shared vertices.
//
// vertices holds 3 floats per corner and indices 3 corners per triangle,
// the layout produced by kernel.Mesh. A corner joins the first kept vertex
// that lies within tol of it on every axis; tol <= 0 welds only
// bit-identical positions. Kept vertices are bucketed on a grid with
// spacing tol and a corner is checked against its own cell and the 26
// around it, so near neighbours merge even across a cell border. Triangles
// that collapse to a line or point after welding are dropped.
func Weld(vertices []float32, indices []uint32, tol float64) ([]geom.Point, [][]int, error) {
	if len(vertices)%3 != 0 {
		return nil, nil, fmt.Errorf("halfedge: weld: %d vertex floats is not a multiple of 3", len(vertices))
	}
	if len(indices)%3 != 0 {
		return nil, nil, fmt.Errorf("halfedge: weld: %d indices is not a multiple of 3", len(indices))
	}
	corners := len(vertices) / 3

	var positions []geom.Point
	remap := make([]int, corners)
	if tol <= 0 {
		exact := make(map[geom.Point]int)
		for i := 0; i < corners; i++ {
			p := corner(vertices, i)
			id, ok := exact[p]
			if !ok {
				id = len(positions)
				positions = append(positions, p)
				exact[p] = id
			}
			remap[i] = id
		}
	} else {
		grid := make(map[[3]int64][]int)
		for i := 0; i < corners; i++ {
			p := corner(vertices, i)
			key := [3]int64{
				int64(math.Floor(p.X / tol)),
				int64(math.Floor(p.Y / tol)),
				int64(math.Floor(p.Z / tol)),
			}
			id := nearby(grid, key, positions, p, tol)
			if id < 0 {
				id = len(positions)
				positions = append(positions, p)
				grid[key] = append(grid[key], id)
			}
			remap[i] = id
		}
	}

	faces := make([][]int, 0, len(indices)/3)
	for t := 0; t < len(indices); t += 3 {
		var tri [3]int
		for j := 0; j < 3; j++ {
			c := int(indices[t+j])
			if c >= corners {
				return nil, nil, fmt.Errorf("halfedge: weld: triangle %d: %w: %d", t/3, ErrVertexOutOfRange, c)
			}
			tri[j] = remap[c]
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			continue
		}
		faces = append(faces, tri[:])
	}
	return positions, faces, nil
}

func corner(vertices []float32, i int) geom.Point {
	return geom.New(float64(vertices[3*i]), float64(vertices[3*i+1]), float64(vertices[3*i+2]))
}

// nearby returns the lowest-numbered kept vertex in the 3x3x3 block of
// cells around key that is within tol of p on every axis, or -1.
func nearby(grid map[[3]int64][]int, key [3]int64, positions []geom.Point, p geom.Point, tol float64) int {
	best := -1
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, id := range grid[[3]int64{key[0] + dx, key[1] + dy, key[2] + dz}] {
					q := positions[id]
					if math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol && math.Abs(p.Z-q.Z) <= tol &&
						(best < 0 || id < best) {
						best = id
					}
				}
			}
		}
	}
	return best
}

// FromTriangles welds a flat triangle buffer and builds a mesh from it.
func FromTriangles(vertices []float32, indices []uint32, tol float64) (*Mesh, error) {
	positions, faces, err := Weld(vertices, indices, tol)
	if err != nil {
		return nil, err
	}
	return Build(positions, faces)
}
