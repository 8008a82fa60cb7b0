package halfedge

import "github.com/chazu/hemesh/pkg/geom"

// CubeData returns the corners and outward CCW quad faces of an
// axis-aligned cube with the given edge length, centred on the origin.
func CubeData(size float64) ([]geom.Point, [][]int) {
	h := size / 2
	positions := []geom.Point{
		geom.New(h, h, h),
		geom.New(-h, h, h),
		geom.New(-h, -h, h),
		geom.New(h, -h, h),
		geom.New(h, -h, -h),
		geom.New(h, h, -h),
		geom.New(-h, h, -h),
		geom.New(-h, -h, -h),
	}
	faces := [][]int{
		{0, 1, 2, 3}, // front
		{0, 3, 4, 5}, // right
		{0, 5, 6, 1}, // top
		{1, 6, 7, 2}, // left
		{2, 7, 4, 3}, // bottom
		{5, 4, 7, 6}, // back
	}
	return positions, faces
}

// Cube returns the cube from CubeData as a mesh.
func Cube(size float64) *Mesh {
	return MustBuild(CubeData(size))
}

// GridData returns an open n×n grid of unit quads in the z = 0 plane,
// wound CCW when seen from +z. Vertex (i, j) has ID j*(n+1)+i.
func GridData(n int) ([]geom.Point, [][]int) {
	var positions []geom.Point
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			positions = append(positions, geom.New(float64(i), float64(j), 0))
		}
	}
	var faces [][]int
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			a := j*(n+1) + i
			faces = append(faces, []int{a, a + 1, a + n + 2, a + n + 1})
		}
	}
	return positions, faces
}
