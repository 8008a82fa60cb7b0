package objfile_test

import (
	"bytes"
	"errors"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/chazu/hemesh/pkg/halfedge"
	"github.com/chazu/hemesh/pkg/objfile"
)

func TestDecodeCube(t *testing.T) {
	f, err := os.Open("testdata/cube.obj")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	d, err := objfile.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(d.Positions) != 8 || len(d.Faces) != 6 {
		t.Fatalf("got %d positions and %d faces, want 8 and 6", len(d.Positions), len(d.Faces))
	}

	// The last face uses relative indices and must resolve to the back face.
	if want := []int{5, 4, 7, 6}; !slices.Equal(d.Faces[5], want) {
		t.Errorf("face 5 = %v, want %v", d.Faces[5], want)
	}
	if want := []int{0, 1, 2, 3}; !slices.Equal(d.Faces[0], want) {
		t.Errorf("face 0 = %v, want %v", d.Faces[0], want)
	}

	m, err := halfedge.Build(d.Positions, d.Faces)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !m.IsClosed() || !m.Validate().Valid() {
		t.Error("decoded cube should be closed and valid")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		line     int
		sentinel error
	}{
		{"short vertex", "v 1 2\n", 1, objfile.ErrShortVertex},
		{"bad coordinate", "v 1 2 x\n", 1, nil},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", 3, objfile.ErrShortFace},
		{"index past end", "v 0 0 0\nv 1 0 0\nv 0 1 0\n\nf 1 2 4\n", 5, objfile.ErrBadIndex},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4, objfile.ErrBadIndex},
		{"relative before vertices", "f -1 -2 -3\n", 1, objfile.ErrBadIndex},
		{"not a number", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 b 3\n", 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := objfile.Decode(strings.NewReader(tt.input))
			var pe *objfile.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if pe.Line != tt.line {
				t.Errorf("Line = %d, want %d", pe.Line, tt.line)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func TestDecodeSkipsOtherRecords(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"mtllib scene.mtl",
		"g group",
		"v 0 0 0",
		"vt 0 0",
		"v 1 0 0 1.0",
		"usemtl red",
		"v 0 1 0",
		"   ",
		"f 1 2 3",
	}, "\n")
	d, err := objfile.Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(d.Positions) != 3 || len(d.Faces) != 1 {
		t.Errorf("got %d positions and %d faces, want 3 and 1", len(d.Positions), len(d.Faces))
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	m := halfedge.Cube(3)

	var buf bytes.Buffer
	if err := objfile.Encode(&buf, m); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	d, err := objfile.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !slices.Equal(d.Positions, m.Positions()) {
		t.Errorf("positions changed: %v", d.Positions)
	}
	back, err := halfedge.Build(d.Positions, d.Faces)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if back.Stats() != m.Stats() {
		t.Errorf("Stats() = %+v, want %+v", back.Stats(), m.Stats())
	}
}

func TestEncodeUsesOneBasedIndices(t *testing.T) {
	var buf bytes.Buffer
	if err := objfile.Encode(&buf, halfedge.Cube(1)); err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.HasPrefix(line, "f ") {
			continue
		}
		for _, ref := range strings.Fields(line)[1:] {
			if i, _ := strconv.Atoi(ref); i < 1 || i > 8 {
				t.Errorf("face reference %q out of 1..8", ref)
			}
		}
	}
}
