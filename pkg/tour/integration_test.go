package tour_test

import (
	"context"
	"math"
	"testing"

	"github.com/vanderheijden86/condtour/pkg/kernel"
	"github.com/vanderheijden86/condtour/pkg/testutil"
	"github.com/vanderheijden86/condtour/pkg/tour"
)

// Full pipeline over a synthetic clustered dataset: the path's centroids
// should land near the generated cluster centers, carry valid factor
// levels, and the controller should walk the dense path end to end.
func TestTourOverClusteredData(t *testing.T) {
	gen := testutil.New(testutil.GeneratorConfig{Seed: 3, Rows: 15, Clusters: 3, NumericVars: 2, FactorVars: 1})
	tab, condCols := gen.ClusteredTable()
	centers := gen.ClusterCenters()
	scales := tab.Scales()

	path, err := tour.BuildPath(context.Background(), tab, condCols, tour.PathOptions{
		NCentroids: 3, NInterp: 2, Seed: 1, Scales: scales,
	})
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}

	wantLen := (3-1)*(2+1) + 1
	if path.Len() != wantLen {
		t.Fatalf("path length = %d, want %d", path.Len(), wantLen)
	}

	// Each centroid's z1 should be close to some generated center.
	for i, c := range path.Centroids {
		z1 := c["z1"].Num
		best := math.Inf(1)
		for _, ctr := range centers {
			if d := math.Abs(z1 - ctr); d < best {
				best = d
			}
		}
		if best > 2 {
			t.Errorf("centroid %d z1=%.2f is %.2f from the nearest true center", i, z1, best)
		}
		if lvl := c["g1"].Level; lvl == "" {
			t.Errorf("centroid %d carries no factor level", i)
		}
	}

	ctrl, err := tour.NewController(context.Background(), tab, condCols, path, 1.0,
		kernel.Options{Kind: kernel.Euclidean, Scales: scales})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	defer ctrl.End()

	for i := 1; i < path.Len(); i++ {
		ctrl.Advance()
	}
	if got := ctrl.State().PathIndex; got != path.Len() {
		t.Errorf("after full walk, PathIndex = %d, want %d", got, path.Len())
	}

	// At a centroid position, observations in the matching cluster carry
	// the dominant weight: the hard category filter zeroes other clusters.
	snap := ctrl.Snapshot()
	g1, _ := tab.Column("g1")
	lastLevel := ctrl.CurrentPoint()["g1"].Level
	for i, w := range snap.Weights {
		if g1.Level(i) != lastLevel && w != 0 {
			t.Errorf("row %d in cluster %s has weight %g at point %s", i, g1.Level(i), w, lastLevel)
		}
	}
}
