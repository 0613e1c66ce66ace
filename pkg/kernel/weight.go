package kernel

import (
	"errors"
	"math"

	"github.com/vanderheijden86/condtour/pkg/frame"
)

// ErrBandwidth is returned for a non-positive or non-finite bandwidth.
var ErrBandwidth = errors.New("kernel: bandwidth must be a positive finite number")

// Weights maps point-to-row distances to similarity weights in [0, 1]
// using a tri-cube kernel on d/bandwidth: weight 1 at distance 0, strictly
// decreasing, and exactly 0 for every distance at or beyond the bandwidth.
// Downstream rendering treats weight 0 as "not drawn", so the hard zero at
// the threshold is load-bearing.
func Weights(p frame.Point, t *frame.Table, cols []string, bandwidth float64, opts Options) ([]float64, error) {
	if !(bandwidth > 0) || math.IsInf(bandwidth, 1) {
		return nil, ErrBandwidth
	}
	dists, err := Distances(p, t, cols, opts)
	if err != nil {
		return nil, err
	}
	for i, d := range dists {
		dists[i] = Tricube(d / bandwidth)
	}
	return dists, nil
}

// Tricube evaluates the tri-cube kernel (1 - u^3)^3 for u in [0, 1) and 0
// for u >= 1. Inputs are distances already divided by the bandwidth.
func Tricube(u float64) float64 {
	if u >= 1 || math.IsNaN(u) {
		return 0
	}
	c := 1 - u*u*u
	return c * c * c
}
