// Package kernel computes mixed-type dissimilarities between a conditioning
// point and the rows of a table, and maps them to similarity weights in
// [0, 1]. This is the unit re-evaluated on every tour step and every
// bandwidth change, so everything here is a pure function of its arguments.
package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/vanderheijden86/condtour/pkg/frame"
)

// DistanceKind selects how per-column contributions aggregate.
type DistanceKind int

const (
	// Euclidean sums squared scaled differences and takes the square root.
	Euclidean DistanceKind = iota
	// MaxNorm takes the maximum scaled absolute difference.
	MaxNorm
)

// String returns the config-file name of the kind.
func (k DistanceKind) String() string {
	switch k {
	case MaxNorm:
		return "maxnorm"
	default:
		return "euclidean"
	}
}

// ParseDistanceKind maps a config/CLI name to a DistanceKind.
func ParseDistanceKind(s string) (DistanceKind, error) {
	switch s {
	case "", "euclidean":
		return Euclidean, nil
	case "maxnorm":
		return MaxNorm, nil
	default:
		return Euclidean, fmt.Errorf("unknown distance kind %q", s)
	}
}

// Options fixes the session-wide distance parameters.
type Options struct {
	Kind DistanceKind
	// Scales holds the per-column scale divisor, normally the column's
	// standard deviation computed once over the full table. A zero scale
	// marks a constant column, which contributes nothing.
	Scales map[string]float64
	// Lambda is the penalty a factor-level mismatch contributes. Zero
	// means unset: the mismatch contributes +Inf, so any row differing on
	// a factor falls outside every bandwidth. This makes factor condition
	// variables a hard filter unless the caller opts into soft matching.
	Lambda float64
}

func (o Options) lambda() float64 {
	if o.Lambda <= 0 {
		return math.Inf(1)
	}
	return o.Lambda
}

var (
	// ErrColumnMismatch is returned when the point lacks a requested column
	// or the table column types disagree with the point.
	ErrColumnMismatch = errors.New("kernel: point and table columns disagree")
)

// Distances computes the dissimilarity between point p and every row of t,
// over the named columns only. The result has one entry per row; an empty
// table yields an empty slice.
func Distances(p frame.Point, t *frame.Table, cols []string, opts Options) ([]float64, error) {
	n := t.NumRows()
	out := make([]float64, n)
	if n == 0 {
		return out, nil
	}
	lambda := opts.lambda()
	for _, name := range cols {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: table has no column %q", ErrColumnMismatch, name)
		}
		pv, ok := p[name]
		if !ok {
			return nil, fmt.Errorf("%w: point has no value for %q", ErrColumnMismatch, name)
		}
		if pv.Kind != col.Kind {
			return nil, fmt.Errorf("%w: column %q is %s in table, %s in point",
				ErrColumnMismatch, name, col.Kind, pv.Kind)
		}
		switch col.Kind {
		case frame.Numeric:
			scale := opts.Scales[name]
			if scale == 0 {
				// Constant column: contributes nothing, and must not
				// divide by zero.
				continue
			}
			for i := 0; i < n; i++ {
				d := (pv.Num - col.Floats[i]) / scale
				accumulate(out, i, math.Abs(d), opts.Kind)
			}
		case frame.Factor:
			for i := 0; i < n; i++ {
				if col.Level(i) != pv.Level {
					accumulate(out, i, lambda, opts.Kind)
				}
			}
		}
	}
	if opts.Kind == Euclidean {
		for i := range out {
			out[i] = math.Sqrt(out[i])
		}
	}
	return out, nil
}

// accumulate folds one scaled column contribution into the running
// aggregate for row i.
func accumulate(agg []float64, i int, d float64, kind DistanceKind) {
	switch kind {
	case MaxNorm:
		if d > agg[i] {
			agg[i] = d
		}
	default:
		agg[i] += d * d
	}
}
