package halfedge

import (
	"errors"
	"fmt"
)

// Build errors. Build wraps them in a *BuildError.
var (
	ErrDegenerateFace   = errors.New("face has fewer than 3 vertices")
	ErrVertexOutOfRange = errors.New("vertex index out of range")
	ErrNonManifoldEdge  = errors.New("directed edge used by more than one face")
	ErrRepeatedVertex   = errors.New("face repeats a vertex on consecutive corners")
)

// Query errors.
var (
	ErrVertexNotFound   = errors.New("vertex not found")
	ErrHalfEdgeNotFound = errors.New("half-edge not found")
	ErrFaceNotFound     = errors.New("face not found")
	ErrNegativeRing     = errors.New("ring size must be non-negative")
	ErrBrokenFan        = errors.New("vertex fan does not close")
	ErrBrokenCycle      = errors.New("face cycle does not close")
)

// BuildError locates a malformed-input failure by face and side.
type BuildError struct {
	Face int // index into the face list
	Side int // corner within the face, -1 when the whole face is at fault
	Err  error
}

func (e *BuildError) Error() string {
	if e.Side < 0 {
		return fmt.Sprintf("halfedge: face %d: %v", e.Face, e.Err)
	}
	return fmt.Sprintf("halfedge: face %d side %d: %v", e.Face, e.Side, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func vertexNotFound(v VertexID) error {
	return fmt.Errorf("halfedge: vertex %d: %w", v, ErrVertexNotFound)
}

func halfEdgeNotFound(e HalfEdgeID) error {
	return fmt.Errorf("halfedge: half-edge %d: %w", e, ErrHalfEdgeNotFound)
}

func faceNotFound(f FaceID) error {
	return fmt.Errorf("halfedge: face %d: %w", f, ErrFaceNotFound)
}

func vertexFanError(v VertexID) error {
	return fmt.Errorf("halfedge: vertex %d: %w", v, ErrBrokenFan)
}

func faceCycleError(f FaceID) error {
	return fmt.Errorf("halfedge: face %d: %w", f, ErrBrokenCycle)
}
