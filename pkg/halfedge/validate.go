package halfedge

import (
	"fmt"
	"slices"

	"github.com/chazu/hemesh/pkg/geom"
)

// ValidationSeverity indicates whether a finding breaks traversal or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // topology cannot be trusted
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ElementKind names the kind of mesh element a finding is about.
type ElementKind int

const (
	ElementMesh ElementKind = iota
	ElementVertex
	ElementHalfEdge
	ElementFace
)

func (k ElementKind) String() string {
	switch k {
	case ElementMesh:
		return "mesh"
	case ElementVertex:
		return "vertex"
	case ElementHalfEdge:
		return "halfedge"
	case ElementFace:
		return "face"
	default:
		return "unknown"
	}
}

// Finding codes.
const (
	CodeNoOutgoing        = "NO_OUTGOING"
	CodeOutgoingOrigin    = "OUTGOING_ORIGIN"
	CodeNoOrigin          = "NO_ORIGIN"
	CodeNoFace            = "NO_FACE"
	CodeNoNext            = "NO_NEXT"
	CodeNoPrev            = "NO_PREV"
	CodeDanglingRef       = "DANGLING_REF"
	CodeNextPrevMismatch  = "NEXT_PREV_MISMATCH"
	CodePrevNextMismatch  = "PREV_NEXT_MISMATCH"
	CodeTwinMismatch      = "TWIN_MISMATCH"
	CodeTwinEndpoints     = "TWIN_ENDPOINTS"
	CodeNoHalfEdge        = "NO_HALFEDGE"
	CodeOpenCycle         = "OPEN_CYCLE"
	CodeCycleLength       = "CYCLE_LENGTH"
	CodeNonManifoldVertex = "NON_MANIFOLD_VERTEX"
	CodeOpenSurface       = "OPEN_SURFACE"
	CodeDuplicatePosition = "DUPLICATE_POSITION"
)

// ValidationError describes a single validation finding.
type ValidationError struct {
	Element  ElementKind
	ID       int // element ID, -1 for mesh-level findings
	Code     string
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Element == ElementMesh {
		return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s %d: %s: %s", e.Severity, e.Element, e.ID, e.Code, e.Message)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Valid reports whether no errors were found.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks every vertex, half-edge and face against the mesh
// invariants. It never mutates the mesh and never fails: a mesh whose
// slices were edited by hand is exactly what it is for.
func (m *Mesh) Validate() ValidationResult {
	var findings []ValidationError
	findings = append(findings, m.validateVertices()...)
	findings = append(findings, m.validateHalfEdges()...)
	findings = append(findings, m.validateFaces()...)
	// Fan walks only mean something once every reference resolves.
	if len(findings) == 0 {
		findings = append(findings, m.validateFans()...)
	}
	findings = append(findings, m.validateSurface()...)

	var r ValidationResult
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			r.Warnings = append(r.Warnings, f)
		} else {
			r.Errors = append(r.Errors, f)
		}
	}
	return r
}

func vertexError(v VertexID, code, format string, args ...any) ValidationError {
	return ValidationError{Element: ElementVertex, ID: int(v), Code: code,
		Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

func halfEdgeError(e HalfEdgeID, code, format string, args ...any) ValidationError {
	return ValidationError{Element: ElementHalfEdge, ID: int(e), Code: code,
		Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

func faceError(f FaceID, code, format string, args ...any) ValidationError {
	return ValidationError{Element: ElementFace, ID: int(f), Code: code,
		Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

// validateVertices checks that every vertex has an outgoing half-edge that
// actually starts there. An isolated vertex fails this check.
func (m *Mesh) validateVertices() []ValidationError {
	var errs []ValidationError
	for i, v := range m.Vertices {
		id := VertexID(i)
		switch {
		case v.HalfEdge == NoHalfEdge:
			errs = append(errs, vertexError(id, CodeNoOutgoing, "no outgoing half-edge (vertex is not used by any face)"))
		case !m.hasHalfEdge(v.HalfEdge):
			errs = append(errs, vertexError(id, CodeDanglingRef, "outgoing half-edge %d does not exist", v.HalfEdge))
		case m.HalfEdges[v.HalfEdge].Origin != id:
			errs = append(errs, vertexError(id, CodeOutgoingOrigin,
				"outgoing half-edge %d starts at vertex %d", v.HalfEdge, m.HalfEdges[v.HalfEdge].Origin))
		}
	}
	return errs
}

// validateHalfEdges checks references, next/prev inverses and twin
// symmetry.
func (m *Mesh) validateHalfEdges() []ValidationError {
	var errs []ValidationError
	for i, e := range m.HalfEdges {
		id := HalfEdgeID(i)

		if e.Origin == NoVertex {
			errs = append(errs, halfEdgeError(id, CodeNoOrigin, "no origin vertex"))
		} else if !m.hasVertex(e.Origin) {
			errs = append(errs, halfEdgeError(id, CodeDanglingRef, "origin vertex %d does not exist", e.Origin))
		}
		if e.Face == NoFace {
			errs = append(errs, halfEdgeError(id, CodeNoFace, "no face"))
		} else if !m.hasFace(e.Face) {
			errs = append(errs, halfEdgeError(id, CodeDanglingRef, "face %d does not exist", e.Face))
		}

		switch {
		case e.Next == NoHalfEdge:
			errs = append(errs, halfEdgeError(id, CodeNoNext, "no next half-edge"))
		case !m.hasHalfEdge(e.Next):
			errs = append(errs, halfEdgeError(id, CodeDanglingRef, "next half-edge %d does not exist", e.Next))
		case m.HalfEdges[e.Next].Prev != id:
			errs = append(errs, halfEdgeError(id, CodeNextPrevMismatch,
				"next.prev is %d, not this half-edge", m.HalfEdges[e.Next].Prev))
		}

		switch {
		case e.Prev == NoHalfEdge:
			errs = append(errs, halfEdgeError(id, CodeNoPrev, "no previous half-edge"))
		case !m.hasHalfEdge(e.Prev):
			errs = append(errs, halfEdgeError(id, CodeDanglingRef, "previous half-edge %d does not exist", e.Prev))
		case m.HalfEdges[e.Prev].Next != id:
			errs = append(errs, halfEdgeError(id, CodePrevNextMismatch,
				"prev.next is %d, not this half-edge", m.HalfEdges[e.Prev].Next))
		}

		if e.Twin == NoHalfEdge {
			continue
		}
		if !m.hasHalfEdge(e.Twin) {
			errs = append(errs, halfEdgeError(id, CodeDanglingRef, "twin half-edge %d does not exist", e.Twin))
			continue
		}
		twin := m.HalfEdges[e.Twin]
		if twin.Twin != id {
			errs = append(errs, halfEdgeError(id, CodeTwinMismatch, "twin.twin is %d, not this half-edge", twin.Twin))
			continue
		}
		if m.hasHalfEdge(e.Next) && m.hasHalfEdge(twin.Next) &&
			(twin.Origin != m.HalfEdges[e.Next].Origin || m.HalfEdges[twin.Next].Origin != e.Origin) {
			errs = append(errs, halfEdgeError(id, CodeTwinEndpoints,
				"twin %d does not join the same vertices in reverse", e.Twin))
		}
	}
	return errs
}

// validateFaces walks each face's next chain. The walk must come back to
// the start, every half-edge on it must claim the face, and no face may
// reuse another face's half-edges.
func (m *Mesh) validateFaces() []ValidationError {
	var errs []ValidationError
	owner := make([]FaceID, len(m.HalfEdges))
	for i := range owner {
		owner[i] = NoFace
	}

	for i, f := range m.Faces {
		id := FaceID(i)
		if f.HalfEdge == NoHalfEdge {
			errs = append(errs, faceError(id, CodeNoHalfEdge, "no half-edge"))
			continue
		}
		if !m.hasHalfEdge(f.HalfEdge) {
			errs = append(errs, faceError(id, CodeDanglingRef, "half-edge %d does not exist", f.HalfEdge))
			continue
		}

		sides, broken := m.walkFace(id, owner)
		if broken != nil {
			errs = append(errs, *broken)
			continue
		}
		if sides < 3 {
			errs = append(errs, faceError(id, CodeCycleLength, "cycle has %d sides, need at least 3", sides))
		}
	}
	return errs
}

// walkFace follows next from the face's half-edge and returns the number of
// sides, or the finding that stopped the walk.
func (m *Mesh) walkFace(id FaceID, owner []FaceID) (int, *ValidationError) {
	start := m.Faces[id].HalfEdge
	sides := 0
	for e := start; sides <= len(m.HalfEdges); {
		if m.HalfEdges[e].Face != id {
			f := faceError(id, CodeOpenCycle, "half-edge %d on the cycle belongs to face %d", e, m.HalfEdges[e].Face)
			return sides, &f
		}
		if owner[e] != NoFace && owner[e] != id {
			f := faceError(id, CodeOpenCycle, "half-edge %d is already on face %d", e, owner[e])
			return sides, &f
		}
		owner[e] = id
		sides++
		next := m.HalfEdges[e].Next
		if !m.hasHalfEdge(next) {
			f := faceError(id, CodeOpenCycle, "cycle breaks after half-edge %d", e)
			return sides, &f
		}
		if next == start {
			return sides, nil
		}
		e = next
	}
	f := faceError(id, CodeOpenCycle, "next chain does not return to its start")
	return sides, &f
}

// validateFans checks that the half-edges leaving each vertex form a
// single fan. Two fans pinched at one vertex (a bowtie) leave some outgoing
// half-edges off the walk from Vertex.HalfEdge.
func (m *Mesh) validateFans() []ValidationError {
	var errs []ValidationError
	leaving := make([]int, len(m.Vertices))
	for _, e := range m.HalfEdges {
		leaving[e.Origin]++
	}
	for i := range m.Vertices {
		id := VertexID(i)
		f, err := m.vertexFan(id)
		if err != nil {
			errs = append(errs, vertexError(id, CodeOpenCycle, "%v", err))
			continue
		}
		if len(f.Edges) < leaving[i] {
			errs = append(errs, vertexError(id, CodeNonManifoldVertex,
				"fan covers %d of %d outgoing half-edges", len(f.Edges), leaving[i]))
		}
	}
	return errs
}

// validateSurface reports non-fatal findings about the mesh as a whole.
func (m *Mesh) validateSurface() []ValidationError {
	var warnings []ValidationError
	if n := len(m.BoundaryHalfEdges()); n > 0 {
		warnings = append(warnings, ValidationError{
			Element:  ElementMesh,
			ID:       -1,
			Code:     CodeOpenSurface,
			Message:  fmt.Sprintf("surface is open: %d boundary half-edges", n),
			Severity: SeverityWarning,
		})
	}

	// Sorting by position puts coincident vertices next to each other.
	ids := make([]VertexID, len(m.Vertices))
	for i := range ids {
		ids[i] = VertexID(i)
	}
	slices.SortFunc(ids, func(a, b VertexID) int {
		return geom.Compare(m.Vertices[a].Position, m.Vertices[b].Position)
	})
	for i := 1; i < len(ids); i++ {
		a, b := m.Vertices[ids[i-1]], m.Vertices[ids[i]]
		if a.Position.Equal(b.Position) {
			warnings = append(warnings, ValidationError{
				Element:  ElementVertex,
				ID:       int(b.ID),
				Code:     CodeDuplicatePosition,
				Message:  fmt.Sprintf("shares position %v with vertex %d", b.Position, a.ID),
				Severity: SeverityWarning,
			})
		}
	}
	return warnings
}
