package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/engine"
	"github.com/chazu/hemesh/pkg/geom"
	"github.com/chazu/hemesh/pkg/halfedge"
	"github.com/chazu/hemesh/pkg/objfile"
	"github.com/chazu/hemesh/pkg/subdivide"
	"github.com/chazu/hemesh/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to levels.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// scriptExts are the file extensions treated as mesh scripts.
var scriptExts = []string{".lisp", ".zy", ".hem"}

// App runs the load, validate and subdivide pipeline for one configuration.
type App struct {
	cfg    config.Config
	engine *engine.Engine
}

// MeshData is the JSON-serializable triangle mesh for one level.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Faces    []uint32  `json:"faces"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable script error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// FindingData is a JSON-serializable validation finding.
type FindingData struct {
	Element  string `json:"element"`
	ID       int    `json:"id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// LevelData reports one mesh in the subdivision sequence. Level 0 is the
// input cage.
type LevelData struct {
	Level    int            `json:"level"`
	Stats    halfedge.Stats `json:"stats"`
	Euler    int            `json:"euler"`
	Closed   bool           `json:"closed"`
	Errors   []FindingData  `json:"errors,omitempty"`
	Warnings []FindingData  `json:"warnings,omitempty"`
}

// Result is the full report printed by the command.
type Result struct {
	Input    string          `json:"input"`
	Boundary string          `json:"boundary"`
	Levels   []LevelData     `json:"levels"`
	Meshes   []MeshData      `json:"meshes,omitempty"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`

	// Final is the last mesh produced, nil when the run failed.
	Final *halfedge.Mesh `json:"-"`
}

// Failed reports whether the run produced no final mesh.
func (r *Result) Failed() bool {
	return r.Final == nil
}

// NewApp creates an App whose script engine uses the sdfx kernel.
func NewApp(cfg config.Config) *App {
	eng := engine.NewEngine()
	eng.SetWeld(cfg.Weld)
	return &App{cfg: cfg, engine: eng}
}

// IsScript reports whether path names a mesh script rather than an OBJ file.
func IsScript(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range scriptExts {
		if ext == e {
			return true
		}
	}
	return false
}

// RunFile reads path and runs it as a script or an OBJ file.
func (a *App) RunFile(path string, script bool, preview bool) *Result {
	data, err := os.ReadFile(path)
	if err != nil {
		res := a.newResult(path)
		res.fail(0, err.Error())
		return res
	}
	if script {
		return a.Evaluate(path, string(data), preview)
	}
	d, err := objfile.Decode(strings.NewReader(string(data)))
	if err != nil {
		res := a.newResult(path)
		var pe *objfile.ParseError
		if errors.As(err, &pe) {
			res.fail(pe.Line, pe.Err.Error())
		} else {
			res.fail(0, err.Error())
		}
		return res
	}
	return a.run(a.cfg, path, d.Positions, d.Faces, preview)
}

// Evaluate runs a mesh script. A (subdivide ...) call in the script
// overrides the configured levels and boundary rule.
func (a *App) Evaluate(name, source string, preview bool) *Result {
	res := a.newResult(name)

	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		res.fail(0, err.Error())
		return res
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			res.Errors = append(res.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return res
	}
	for _, w := range s.Warnings {
		res.Warnings = append(res.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}

	cfg := a.cfg
	if s.Subdivide {
		cfg.Levels = s.Levels
		cfg.Boundary = s.Boundary.String()
	}
	sub := a.run(cfg, name, s.Positions, s.Faces, preview)
	sub.Warnings = append(res.Warnings, sub.Warnings...)
	return sub
}

// Subdivide builds the cage from positions and faces, validates it and
// refines it with the configured settings.
func (a *App) Subdivide(name string, positions []geom.Point, faces [][]int, preview bool) *Result {
	return a.run(a.cfg, name, positions, faces, preview)
}

// run records every level from the cage to the last refinement.
func (a *App) run(cfg config.Config, name string, positions []geom.Point, faces [][]int, preview bool) *Result {
	res := a.newResult(name)
	res.Boundary = cfg.Boundary

	m, err := halfedge.Build(positions, faces)
	if err != nil {
		log.Printf("Build error: %v", err)
		res.fail(0, "build failed: "+err.Error())
		return res
	}
	if !res.record(0, m, cfg.Validate) {
		return res
	}

	opts, err := cfg.Options()
	if err != nil {
		res.fail(0, err.Error())
		return res
	}
	for level := 1; level <= cfg.Levels; level++ {
		next, err := subdivide.CatmullClark(m, opts...)
		if err != nil {
			log.Printf("Subdivide error at level %d: %v", level, err)
			res.fail(0, fmt.Sprintf("level %d: %v", level, err))
			return res
		}
		m = next
		if !res.record(level, m, cfg.Validate) {
			return res
		}
	}
	res.Final = m

	if preview {
		if err := res.addPreview(m, cfg.Levels); err != nil {
			log.Printf("Flatten error: %v", err)
			res.fail(0, "flatten failed: "+err.Error())
		}
	}
	return res
}

func (a *App) newResult(name string) *Result {
	return &Result{
		Input:    name,
		Boundary: a.cfg.Boundary,
		Levels:   []LevelData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

func (r *Result) fail(line int, msg string) {
	r.Final = nil
	r.Errors = append(r.Errors, EvalErrorData{Line: line, Message: msg})
}

// record appends the level report. With validation on, a level that has
// errors stops the run.
func (r *Result) record(level int, m *halfedge.Mesh, validate bool) bool {
	stats := m.Stats()
	ld := LevelData{
		Level:  level,
		Stats:  stats,
		Euler:  stats.EulerCharacteristic(),
		Closed: m.IsClosed(),
	}
	if validate {
		v := m.Validate()
		ld.Errors = findings(v.Errors)
		ld.Warnings = findings(v.Warnings)
		r.Levels = append(r.Levels, ld)
		if !v.Valid() {
			r.fail(0, fmt.Sprintf("level %d: mesh is invalid: %v", level, v.Errors[0]))
			return false
		}
		return true
	}
	r.Levels = append(r.Levels, ld)
	return true
}

func (r *Result) addPreview(m *halfedge.Mesh, level int) error {
	km, err := tessellate.Flatten(m, tessellate.Smooth)
	if err != nil {
		return err
	}
	r.Meshes = append(r.Meshes, MeshData{
		Vertices: km.Vertices,
		Normals:  km.Normals,
		Indices:  km.Indices,
		Faces:    km.Faces,
		Name:     fmt.Sprintf("level %d", level),
		Color:    colorPalette[level%len(colorPalette)],
	})
	return nil
}

func findings(errs []halfedge.ValidationError) []FindingData {
	out := make([]FindingData, 0, len(errs))
	for _, e := range errs {
		out = append(out, FindingData{
			Element:  e.Element.String(),
			ID:       e.ID,
			Code:     e.Code,
			Message:  e.Message,
			Severity: e.Severity.String(),
		})
	}
	return out
}

// WriteOBJ writes the final mesh of r to path.
func WriteOBJ(path string, r *Result) error {
	if r.Failed() {
		return fmt.Errorf("no mesh to write")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := objfile.Encode(f, r.Final); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
