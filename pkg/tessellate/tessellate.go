// Package tessellate converts between the kernel's flat triangle buffers
// and half-edge meshes: solids are tessellated and welded into subdivision
// input, and refined meshes are flattened back into render buffers.
package tessellate

import (
	"fmt"

	"github.com/chazu/hemesh/pkg/geom"
	"github.com/chazu/hemesh/pkg/halfedge"
	"github.com/chazu/hemesh/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// Shading selects how Flatten assigns normals.
type Shading int

const (
	// Flat gives every polygon its own corners and one face normal.
	Flat Shading = iota
	// Smooth shares corners between faces and averages face normals at
	// each vertex, weighted by polygon area.
	Smooth
)

// Tessellate renders s with k and welds the triangles into a half-edge
// mesh. The kernel is only read from and s is not modified.
func Tessellate(k kernel.Kernel, s kernel.Solid, cells int, weld float64) (*halfedge.Mesh, error) {
	positions, faces, err := Triangles(k, s, cells, weld)
	if err != nil {
		return nil, err
	}
	m, err := halfedge.Build(positions, faces)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return m, nil
}

// Triangles renders s with k and welds the corners within weld of each
// other, returning shared positions and triangle faces ready for
// halfedge.Build.
func Triangles(k kernel.Kernel, s kernel.Solid, cells int, weld float64) ([]geom.Point, [][]int, error) {
	if k == nil || s == nil {
		return nil, nil, fmt.Errorf("tessellate: nil kernel or solid")
	}
	km, err := k.ToMesh(s, cells)
	if err != nil {
		return nil, nil, fmt.Errorf("tessellate: ToMesh failed: %w", err)
	}
	if km.IsEmpty() {
		return nil, nil, fmt.Errorf("tessellate: mesh %q is empty", km.Name)
	}
	positions, faces, err := halfedge.Weld(km.Vertices, km.Indices, weld)
	if err != nil {
		return nil, nil, fmt.Errorf("tessellate: %w", err)
	}
	return positions, faces, nil
}

// Flatten triangulates every face of m as a fan from its first corner and
// returns the result as a render mesh. Mesh.Faces records the source face
// of each triangle.
func Flatten(m *halfedge.Mesh, shading Shading) (*kernel.Mesh, error) {
	if m == nil {
		return nil, fmt.Errorf("tessellate: nil mesh")
	}
	normals := make([]mgl64.Vec3, len(m.Faces))
	for _, f := range m.Faces {
		ps, err := m.FacePositions(f.ID)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %w", err)
		}
		normals[f.ID] = areaNormal(ps)
	}

	out := &kernel.Mesh{Name: "halfedge"}
	switch shading {
	case Flat:
		if err := flatFaces(m, normals, out); err != nil {
			return nil, err
		}
	case Smooth:
		if err := smoothFaces(m, normals, out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("tessellate: unknown shading %d", shading)
	}
	return out, nil
}

func flatFaces(m *halfedge.Mesh, normals []mgl64.Vec3, out *kernel.Mesh) error {
	for _, f := range m.Faces {
		ps, err := m.FacePositions(f.ID)
		if err != nil {
			return fmt.Errorf("tessellate: %w", err)
		}
		n := unit(normals[f.ID])
		base := uint32(out.VertexCount())
		for _, p := range ps {
			appendVertex(out, p, n)
		}
		for i := 1; i+1 < len(ps); i++ {
			out.Indices = append(out.Indices, base, base+uint32(i), base+uint32(i+1))
			out.Faces = append(out.Faces, uint32(f.ID))
		}
	}
	return nil
}

func smoothFaces(m *halfedge.Mesh, normals []mgl64.Vec3, out *kernel.Mesh) error {
	vertexNormals := make([]mgl64.Vec3, len(m.Vertices))
	corners := make([][]halfedge.VertexID, len(m.Faces))
	for _, f := range m.Faces {
		vs, err := m.FaceVertices(f.ID)
		if err != nil {
			return fmt.Errorf("tessellate: %w", err)
		}
		corners[f.ID] = vs
		for _, v := range vs {
			vertexNormals[v] = vertexNormals[v].Add(normals[f.ID])
		}
	}
	for _, v := range m.Vertices {
		appendVertex(out, v.Position, unit(vertexNormals[v.ID]))
	}
	for fi, vs := range corners {
		for i := 1; i+1 < len(vs); i++ {
			out.Indices = append(out.Indices, uint32(vs[0]), uint32(vs[i]), uint32(vs[i+1]))
			out.Faces = append(out.Faces, uint32(fi))
		}
	}
	return nil
}

// areaNormal returns the Newell normal of a polygon. Its length is twice
// the polygon's area, so summing these weights faces by area.
func areaNormal(ps []geom.Point) mgl64.Vec3 {
	var n mgl64.Vec3
	for i, p := range ps {
		q := ps[(i+1)%len(ps)]
		n = n.Add(vec(p).Cross(vec(q)))
	}
	return n
}

func unit(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

func vec(p geom.Point) mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

func appendVertex(out *kernel.Mesh, p geom.Point, n mgl64.Vec3) {
	out.Vertices = append(out.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	out.Normals = append(out.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
}
