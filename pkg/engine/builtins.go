package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/hemesh/pkg/geom"
	"github.com/chazu/hemesh/pkg/halfedge"
	"github.com/chazu/hemesh/pkg/kernel"
	"github.com/chazu/hemesh/pkg/subdivide"
	"github.com/chazu/hemesh/pkg/tessellate"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms mesh script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: cube-at -> cube_at
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSolid wraps a kernel.Solid so it can be passed between the solid
// builtins and consumed by tessellate.
type sexpSolid struct {
	solid kernel.Solid
	desc  string
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(solid %s)", s.desc)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as a flag.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toInt extracts a non-negative integer from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	v, ok := s.(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
	}
	if v.Val < 0 {
		return 0, fmt.Errorf("expected non-negative integer, got %d", v.Val)
	}
	return int(v.Val), nil
}

// toSolid extracts a kernel.Solid from a sexpSolid.
func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toFloats extracts n numbers from args.
func toFloats(fn string, args []zygo.Sexp, names ...string) ([]float64, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", fn, len(names), len(args))
	}
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fn, names[i], err)
		}
		out[i] = f
	}
	return out, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

func newInt(i int) zygo.Sexp {
	return &zygo.SexpInt{Val: int64(i)}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder accumulates the script a program declares.
type builder struct {
	script *Script
	kernel kernel.Kernel
	weld   float64
}

// appendMesh adds positions and faces, shifting face indices past the
// vertices already declared. It returns the ID of the first new vertex.
func (b *builder) appendMesh(positions []geom.Point, faces [][]int) int {
	base := len(b.script.Positions)
	b.script.Positions = append(b.script.Positions, positions...)
	for _, f := range faces {
		shifted := make([]int, len(f))
		for i, c := range f {
			shifted[i] = c + base
		}
		b.script.Faces = append(b.script.Faces, shifted)
	}
	return base
}

func (b *builder) warn(format string, args ...any) {
	b.script.Warnings = append(b.script.Warnings, EvalWarning{Message: fmt.Sprintf(format, args...)})
}

// registerBuiltins installs the mesh script builtins into a zygomys
// environment. They append to the builder's script during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	registerMeshBuiltins(env, b)
	registerSolidBuiltins(env, b)
}

func registerMeshBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (vertex x y z) -> vertex index
	// -----------------------------------------------------------------------
	env.AddFunction("vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		xyz, err := toFloats("vertex", args, "x", "y", "z")
		if err != nil {
			return zygo.SexpNull, err
		}
		id := b.appendMesh([]geom.Point{geom.New(xyz[0], xyz[1], xyz[2])}, nil)
		return newInt(id), nil
	})

	// -----------------------------------------------------------------------
	// (face 0 1 2 3) or (face [0 1 2 3]) -> face index
	// -----------------------------------------------------------------------
	env.AddFunction("face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		items := args
		if len(args) == 1 {
			list, err := sexpListToSlice(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("face: %w", err)
			}
			items = list
		}
		if len(items) < 3 {
			return zygo.SexpNull, fmt.Errorf("face requires at least 3 vertex indices, got %d", len(items))
		}
		corners := make([]int, len(items))
		for i, item := range items {
			c, err := toInt(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("face: corner %d: %w", i, err)
			}
			corners[i] = c
		}
		b.script.Faces = append(b.script.Faces, corners)
		return newInt(len(b.script.Faces) - 1), nil
	})

	// -----------------------------------------------------------------------
	// (cube :size 2) -> index of the cube's first vertex
	// -----------------------------------------------------------------------
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size := 1.0
		if v, ok := pa.kw["size"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cube: size: %w", err)
			}
			size = f
		}
		if size <= 0 {
			return zygo.SexpNull, fmt.Errorf("cube: size must be positive, got %g", size)
		}
		return newInt(b.appendMesh(halfedge.CubeData(size))), nil
	})

	// -----------------------------------------------------------------------
	// (grid 4) -> index of the grid's first vertex
	// -----------------------------------------------------------------------
	env.AddFunction("grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("grid requires exactly 1 argument, got %d", len(args))
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: %w", err)
		}
		if n < 1 {
			return zygo.SexpNull, fmt.Errorf("grid: size must be at least 1")
		}
		return newInt(b.appendMesh(halfedge.GridData(n))), nil
	})

	// -----------------------------------------------------------------------
	// (subdivide 2 :boundary :fixed)
	// -----------------------------------------------------------------------
	env.AddFunction("subdivide", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("subdivide requires a level count")
		}
		levels, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subdivide: levels: %w", err)
		}
		rule := subdivide.BoundarySmooth
		if v, ok := pa.kw["boundary"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("subdivide: boundary: %w", err)
			}
			if rule, err = subdivide.ParseBoundaryRule(s); err != nil {
				return zygo.SexpNull, err
			}
		}
		if b.script.Subdivide {
			b.warn("subdivide called more than once; using %d levels", levels)
		}
		b.script.Subdivide = true
		b.script.Levels = levels
		b.script.Boundary = rule
		return zygo.SexpNull, nil
	})
}

func registerSolidBuiltins(env *zygo.Zlisp, b *builder) {
	k := b.kernel

	// -----------------------------------------------------------------------
	// (box x y z) (sphere r) (cylinder h r)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		xyz, err := toFloats("box", args, "x", "y", "z")
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := k.Box(xyz[0], xyz[1], xyz[2])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s, desc: fmt.Sprintf("box %gx%gx%g", xyz[0], xyz[1], xyz[2])}, nil
	})

	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r, err := toFloats("sphere", args, "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := k.Sphere(r[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s, desc: fmt.Sprintf("sphere %g", r[0])}, nil
	})

	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		hr, err := toFloats("cylinder", args, "height", "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := k.Cylinder(hr[0], hr[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s, desc: fmt.Sprintf("cylinder %gx%g", hr[0], hr[1])}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b) (difference a b) (intersection a b)
	// -----------------------------------------------------------------------
	booleans := map[string]func(a, b kernel.Solid) kernel.Solid{
		"union":        k.Union,
		"difference":   k.Difference,
		"intersection": k.Intersection,
	}
	for op, fn := range booleans {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 2 solids, got %d", op, len(args))
			}
			a, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			c, err := toSolid(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			return &sexpSolid{solid: fn(a, c), desc: op}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (translate s x y z) (rotate s x y z)
	// -----------------------------------------------------------------------
	transforms := map[string]func(s kernel.Solid, x, y, z float64) kernel.Solid{
		"translate": k.Translate,
		"rotate":    k.Rotate,
	}
	for op, fn := range transforms {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 4 {
				return zygo.SexpNull, fmt.Errorf("%s requires a solid and 3 numbers, got %d arguments", op, len(args))
			}
			s, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			xyz, err := toFloats(op, args[1:], "x", "y", "z")
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpSolid{solid: fn(s, xyz[0], xyz[1], xyz[2]), desc: op}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (tessellate solid :cells 16 :weld 0.0001) -> index of the first vertex
	// -----------------------------------------------------------------------
	env.AddFunction("tessellate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("tessellate requires a solid")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tessellate: %w", err)
		}
		cells := 0
		if v, ok := pa.kw["cells"]; ok {
			if cells, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("tessellate: cells: %w", err)
			}
		}
		weld := b.weld
		if v, ok := pa.kw["weld"]; ok {
			if weld, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("tessellate: weld: %w", err)
			}
		}

		positions, faces, err := tessellate.Triangles(k, s, cells, weld)
		if err != nil {
			return zygo.SexpNull, err
		}
		return newInt(b.appendMesh(positions, faces)), nil
	})
}
