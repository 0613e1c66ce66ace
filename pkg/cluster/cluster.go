// Package cluster provides the representative-point selection the path
// builder relies on: Lloyd k-means for purely numeric tables and PAM
// k-medoids when factor columns are present (medoids are real rows, so no
// centroid has to be synthesized for mixed types).
//
// Both algorithms are deterministic for a fixed input and seed, and check
// the context between iterations so a caller can abort and re-run with
// different parameters without observing partial state.
package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/kernel"
)

// ErrBadK is returned when k is outside [2, rows].
var ErrBadK = errors.New("cluster: k must be between 2 and the number of rows")

// Options tunes the iterative solvers.
type Options struct {
	MaxIter int   // iteration cap; 0 means DefaultMaxIter
	Seed    int64 // RNG seed for initialization
}

// DefaultMaxIter caps the assignment/update loop.
const DefaultMaxIter = 100

func (o Options) maxIter() int {
	if o.MaxIter <= 0 {
		return DefaultMaxIter
	}
	return o.MaxIter
}

// Representatives selects k representative points from t. Numeric-only
// tables go through k-means; any factor column switches to k-medoids over
// the mixed-type kernel distance in kopts. kopts.Lambda should be finite
// here: clustering needs factor mismatches to cost something, not
// everything.
func Representatives(ctx context.Context, t *frame.Table, k int, kopts kernel.Options, opts Options) ([]frame.Point, error) {
	if k < 2 || k > t.NumRows() {
		return nil, fmt.Errorf("%w: k=%d, rows=%d", ErrBadK, k, t.NumRows())
	}
	for _, c := range t.Columns() {
		if c.Kind == frame.Factor {
			return KMedoids(ctx, t, k, kopts, opts)
		}
	}
	return KMeans(ctx, t, k, kopts, opts)
}
