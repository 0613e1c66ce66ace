// Package tour owns the conditioning-point path and the interactive state
// machine that walks it. The path is built once per session: cluster the
// condition subspace into representatives, order them into a smooth open
// walk, then densify with linear interpolation. The controller then moves a
// cursor over the dense path and keeps the per-observation similarity
// weights in step.
package tour

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanderheijden86/condtour/pkg/cluster"
	"github.com/vanderheijden86/condtour/pkg/debug"
	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/kernel"
	"github.com/vanderheijden86/condtour/pkg/metrics"
	"github.com/vanderheijden86/condtour/pkg/seriate"
)

// ErrBadInterp is returned for a negative interpolation count.
var ErrBadInterp = errors.New("tour: interpolation count must be >= 0")

// DefaultClusterLambda is the factor-mismatch cost used while clustering
// and ordering. Unlike weighting, clustering needs mismatches to be
// expensive but finite.
const DefaultClusterLambda = 1.0

// PathOptions configures path construction.
type PathOptions struct {
	NCentroids int
	NInterp    int
	Seed       int64
	// Scales are the session-wide per-column scales (see frame.Scales).
	Scales map[string]float64
	// ClusterLambda overrides DefaultClusterLambda when > 0.
	ClusterLambda float64
}

func (o PathOptions) clusterKernel() kernel.Options {
	lambda := o.ClusterLambda
	if lambda <= 0 {
		lambda = DefaultClusterLambda
	}
	return kernel.Options{Kind: kernel.Euclidean, Scales: o.Scales, Lambda: lambda}
}

// Path is the product of BuildPath: the ordered centroid sequence for
// diagnostics, and the dense interpolated point sequence the tour plays
// back. Both are immutable once built.
type Path struct {
	Centroids []frame.Point
	Points    []frame.Point
}

// Len returns the number of dense path positions.
func (p *Path) Len() int { return len(p.Points) }

// BuildPath constructs a tour path over the condition columns of t.
// The dense path has (NCentroids-1)*(NInterp+1)+1 points, beginning and
// ending at the first and last ordered centroids. Deterministic for a
// fixed table, options, and seed. The context aborts the clustering step;
// no partial path is ever returned.
func BuildPath(ctx context.Context, t *frame.Table, condCols []string, opts PathOptions) (*Path, error) {
	defer metrics.Timer(metrics.PathBuild)()
	if opts.NInterp < 0 {
		return nil, fmt.Errorf("%w, got %d", ErrBadInterp, opts.NInterp)
	}
	sub, err := t.Select(condCols...)
	if err != nil {
		return nil, fmt.Errorf("tour: selecting condition columns: %w", err)
	}
	kopts := opts.clusterKernel()

	reps, err := cluster.Representatives(ctx, sub, opts.NCentroids, kopts, cluster.Options{Seed: opts.Seed})
	if err != nil {
		return nil, fmt.Errorf("tour: clustering condition space: %w", err)
	}
	debug.Log("path: %d representatives from %d rows", len(reps), sub.NumRows())

	perm, err := orderReps(reps, sub, condCols, kopts)
	if err != nil {
		return nil, err
	}
	ordered := make([]frame.Point, len(reps))
	for i, p := range perm {
		ordered[i] = reps[p]
	}

	path := &Path{Centroids: ordered}
	path.Points = interpolate(ordered, sub, opts.NInterp)
	debug.Log("path: %d centroids, %d dense points", len(path.Centroids), len(path.Points))
	return path, nil
}

// orderReps sequences the representatives so consecutive tour stops are
// close in the condition space.
func orderReps(reps []frame.Point, sub *frame.Table, cols []string, kopts kernel.Options) ([]int, error) {
	repTab, err := pointsTable(reps, sub)
	if err != nil {
		return nil, err
	}
	dist := make([][]float64, len(reps))
	for i, p := range reps {
		row, err := kernel.Distances(p, repTab, cols, kopts)
		if err != nil {
			return nil, fmt.Errorf("tour: ordering representatives: %w", err)
		}
		dist[i] = row
	}
	perm, err := seriate.OrderOpenPath(dist)
	if err != nil {
		return nil, fmt.Errorf("tour: ordering representatives: %w", err)
	}
	return perm, nil
}

// pointsTable assembles a small table from points, borrowing column kinds
// and factor levels from the template table.
func pointsTable(points []frame.Point, template *frame.Table) (*frame.Table, error) {
	cols := make([]frame.Column, 0, template.NumCols())
	for _, tc := range template.Columns() {
		if tc.Kind == frame.Numeric {
			vals := make([]float64, len(points))
			for i, p := range points {
				vals[i] = p[tc.Name].Num
			}
			cols = append(cols, frame.NumericColumn(tc.Name, vals))
		} else {
			labels := make([]string, len(points))
			for i, p := range points {
				labels[i] = p[tc.Name].Level
			}
			cols = append(cols, frame.FactorColumn(tc.Name, labels))
		}
	}
	return frame.NewTable(cols...)
}

// interpolate densifies the ordered centroid walk: nInterp evenly spaced
// blends between each consecutive pair. Numeric columns blend linearly;
// factor columns carry the nearer endpoint's level, switching at the
// midpoint.
func interpolate(centroids []frame.Point, template *frame.Table, nInterp int) []frame.Point {
	if len(centroids) == 0 {
		return nil
	}
	points := make([]frame.Point, 0, (len(centroids)-1)*(nInterp+1)+1)
	for seg := 0; seg+1 < len(centroids); seg++ {
		a, b := centroids[seg], centroids[seg+1]
		points = append(points, a.Clone())
		for s := 1; s <= nInterp; s++ {
			frac := float64(s) / float64(nInterp+1)
			points = append(points, blend(a, b, frac, template))
		}
	}
	points = append(points, centroids[len(centroids)-1].Clone())
	return points
}

func blend(a, b frame.Point, frac float64, template *frame.Table) frame.Point {
	out := make(frame.Point, len(a))
	for _, c := range template.Columns() {
		av, bv := a[c.Name], b[c.Name]
		if c.Kind == frame.Numeric {
			out[c.Name] = frame.Num((1-frac)*av.Num + frac*bv.Num)
		} else if frac < 0.5 {
			out[c.Name] = av
		} else {
			out[c.Name] = bv
		}
	}
	return out
}
