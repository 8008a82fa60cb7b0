// Package engine evaluates mesh scripts. It wraps zygomys in a sandboxed
// environment and turns Lisp source into vertex positions, faces and a
// subdivision request.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/hemesh/pkg/geom"
	"github.com/chazu/hemesh/pkg/halfedge"
	"github.com/chazu/hemesh/pkg/kernel"
	"github.com/chazu/hemesh/pkg/kernel/sdfx"
	"github.com/chazu/hemesh/pkg/subdivide"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
}

// Script is what a program declared: mesh input and, optionally, how to
// subdivide it.
type Script struct {
	Positions []geom.Point
	Faces     [][]int

	// Subdivide is set by a (subdivide ...) call.
	Subdivide bool
	Levels    int
	Boundary  subdivide.BoundaryRule

	Warnings []EvalWarning
}

// Mesh builds the declared faces into a half-edge mesh.
func (s *Script) Mesh() (*halfedge.Mesh, error) {
	return halfedge.Build(s.Positions, s.Faces)
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment for
// determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	kernel     kernel.Kernel
	weld       float64
}

// DefaultWeld is the tolerance (tessellate ...) uses to merge triangle
// corners when a script does not pass :weld.
const DefaultWeld = 1e-6

// NewEngine creates an Engine whose solid builtins use the sdfx kernel.
func NewEngine() *Engine {
	return NewEngineWithKernel(sdfx.New())
}

// NewEngineWithKernel creates an Engine backed by k.
func NewEngineWithKernel(k kernel.Kernel) *Engine {
	return &Engine{kernel: k, weld: DefaultWeld}
}

// SetWeld changes the default corner weld tolerance for later evaluations.
func (e *Engine) SetWeld(tol float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weld = tol
}

// Evaluate runs Lisp source and returns the script it declares.
//
// Return semantics:
//   - On success: returns script + nil errors + nil error
//   - On parse/eval failure: returns nil script + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Script, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	weld := e.weld
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := e.evaluate(source, weld)
		ch <- evalResult{script: s, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, weld float64) (*Script, []EvalError, error) {
	// Empty source is a valid program that declares an empty mesh.
	if strings.TrimSpace(source) == "" {
		return &Script{}, nil, nil
	}

	// Sandbox mode keeps user code away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	s := &Script{}
	registerBuiltins(env, &builder{script: s, kernel: e.kernel, weld: weld})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return s, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
