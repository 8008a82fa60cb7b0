// Package objfile reads and writes the polygon subset of Wavefront OBJ:
// vertex positions ("v") and faces ("f"). Every other record is skipped.
package objfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/hemesh/pkg/geom"
	"github.com/chazu/hemesh/pkg/halfedge"
)

var (
	ErrShortVertex = errors.New("vertex needs three coordinates")
	ErrShortFace   = errors.New("face needs at least three corners")
	ErrBadIndex    = errors.New("face index out of range")
)

// ParseError reports the line a decode failure happened on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("objfile: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Data is a decoded OBJ file. Faces hold 0-based indices into Positions,
// ready for halfedge.Build.
type Data struct {
	Positions []geom.Point
	Faces     [][]int
}

// Decode parses OBJ text. Face indices are 1-based in the file; negative
// indices count back from the last vertex read so far. Texture and normal
// references ("1/2/3", "1//3") are dropped.
func Decode(r io.Reader) (Data, error) {
	var d Data
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		var err error
		switch fields[0] {
		case "v":
			err = d.vertex(fields[1:])
		case "f":
			err = d.face(fields[1:])
		}
		if err != nil {
			return Data{}, &ParseError{Line: line, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return Data{}, fmt.Errorf("objfile: read: %w", err)
	}
	return d, nil
}

func (d *Data) vertex(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: got %d", ErrShortVertex, len(args))
	}
	var xyz [3]float64
	for i := range xyz {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return fmt.Errorf("coordinate %d: %w", i+1, err)
		}
		xyz[i] = f
	}
	d.Positions = append(d.Positions, geom.New(xyz[0], xyz[1], xyz[2]))
	return nil
}

func (d *Data) face(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: got %d", ErrShortFace, len(args))
	}
	n := len(d.Positions)
	corners := make([]int, 0, len(args))
	for _, a := range args {
		ref, _, _ := strings.Cut(a, "/")
		i, err := strconv.Atoi(ref)
		if err != nil {
			return fmt.Errorf("face index %q: %w", a, err)
		}
		switch {
		case i > 0 && i <= n:
			i--
		case i < 0 && -i <= n:
			i += n
		default:
			return fmt.Errorf("%w: %d with %d vertices", ErrBadIndex, i, n)
		}
		corners = append(corners, i)
	}
	d.Faces = append(d.Faces, corners)
	return nil
}

// Encode writes m as OBJ text with 1-based face indices.
func Encode(w io.Writer, m *halfedge.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d faces\n", len(m.Vertices), len(m.Faces))
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v.Position.X), formatFloat(v.Position.Y), formatFloat(v.Position.Z))
	}
	for _, f := range m.Faces {
		vs, err := m.FaceVertices(f.ID)
		if err != nil {
			return fmt.Errorf("objfile: encode: %w", err)
		}
		bw.WriteString("f")
		for _, v := range vs {
			bw.WriteString(" ")
			bw.WriteString(strconv.Itoa(int(v) + 1))
		}
		bw.WriteString("\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("objfile: encode: %w", err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
