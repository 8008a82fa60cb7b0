package subdivide

import (
	"fmt"
	"strings"
)

// BoundaryRule selects how vertices on an open boundary move.
type BoundaryRule int

const (
	// BoundarySmooth moves a boundary vertex halfway towards the mean of
	// its two boundary edge midpoints, so the boundary curve is subdivided
	// as a cubic B-spline.
	BoundarySmooth BoundaryRule = iota
	// BoundaryFixed keeps every boundary vertex where it is.
	BoundaryFixed
)

func (r BoundaryRule) String() string {
	switch r {
	case BoundarySmooth:
		return "smooth"
	case BoundaryFixed:
		return "fixed"
	default:
		return fmt.Sprintf("BoundaryRule(%d)", int(r))
	}
}

// ParseBoundaryRule converts "smooth" or "fixed" (any case) to a rule.
// The empty string selects BoundarySmooth.
func ParseBoundaryRule(s string) (BoundaryRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "smooth":
		return BoundarySmooth, nil
	case "fixed":
		return BoundaryFixed, nil
	default:
		return 0, fmt.Errorf("subdivide: unknown boundary rule %q (want smooth or fixed)", s)
	}
}

type options struct {
	workers  int
	boundary BoundaryRule
}

// Option configures a subdivision step.
type Option func(*options)

// WithWorkers computes face, edge and vertex points on up to n goroutines.
// n <= 1 runs everything on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithBoundaryRule sets the rule for boundary vertices.
func WithBoundaryRule(r BoundaryRule) Option {
	return func(o *options) {
		o.boundary = r
	}
}

func newOptions(opts []Option) options {
	o := options{workers: 1, boundary: BoundarySmooth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
