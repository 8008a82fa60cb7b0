package subdivide

import "errors"

var (
	// ErrInvalidInput is returned when the input mesh is nil or fails
	// validation. The first validation error is wrapped alongside it.
	ErrInvalidInput = errors.New("subdivide: input mesh is not valid")

	// ErrMissingEdgePoint means a face side had no edge point while the
	// refined faces were assembled. It indicates inconsistent topology.
	ErrMissingEdgePoint = errors.New("subdivide: no edge point for face side")

	// ErrNegativeLevels is returned by Iterate for levels < 0.
	ErrNegativeLevels = errors.New("subdivide: levels must be non-negative")
)
