package tour

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/condtour/pkg/cluster"
	"github.com/vanderheijden86/condtour/pkg/frame"
)

func lineTable(t *testing.T) *frame.Table {
	t.Helper()
	tab, err := frame.NewTable(frame.NumericColumn("x", []float64{0, 1, 2, 3, 4, 5}))
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tab
}

func TestBuildPath_LengthAndEndpoints(t *testing.T) {
	tab := lineTable(t)
	opts := PathOptions{NCentroids: 3, NInterp: 1, Seed: 1, Scales: tab.Scales()}

	p, err := BuildPath(context.Background(), tab, []string{"x"}, opts)
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}
	wantLen := (3-1)*(1+1) + 1
	if p.Len() != wantLen {
		t.Errorf("path length %d, want %d", p.Len(), wantLen)
	}
	if len(p.Centroids) != 3 {
		t.Errorf("got %d centroids, want 3", len(p.Centroids))
	}
	if p.Points[0]["x"].Num != p.Centroids[0]["x"].Num {
		t.Errorf("path start %v != first centroid %v", p.Points[0], p.Centroids[0])
	}
	if p.Points[p.Len()-1]["x"].Num != p.Centroids[2]["x"].Num {
		t.Errorf("path end %v != last centroid %v", p.Points[p.Len()-1], p.Centroids[2])
	}
}

func TestBuildPath_CentroidsCoverSpreadGroups(t *testing.T) {
	tab := lineTable(t)
	opts := PathOptions{NCentroids: 3, NInterp: 1, Seed: 1, Scales: tab.Scales()}

	p, err := BuildPath(context.Background(), tab, []string{"x"}, opts)
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}
	for _, v := range []float64{0, 1, 2, 3, 4, 5} {
		best := math.Inf(1)
		for _, c := range p.Centroids {
			if d := math.Abs(c["x"].Num - v); d < best {
				best = d
			}
		}
		if best > 1.5 {
			t.Errorf("value %g has no nearby centroid (closest %g away)", v, best)
		}
	}
}

func TestBuildPath_Idempotent(t *testing.T) {
	tab := lineTable(t)
	opts := PathOptions{NCentroids: 3, NInterp: 2, Seed: 99, Scales: tab.Scales()}

	a, err := BuildPath(context.Background(), tab, []string{"x"}, opts)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	b, err := BuildPath(context.Background(), tab, []string{"x"}, opts)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if !reflect.DeepEqual(a.Centroids, b.Centroids) {
		t.Errorf("centroids differ across identical builds")
	}
	if !reflect.DeepEqual(a.Points, b.Points) {
		t.Errorf("paths differ across identical builds")
	}
}

func TestBuildPath_InvalidArguments(t *testing.T) {
	tab := lineTable(t)
	if _, err := BuildPath(context.Background(), tab, []string{"x"}, PathOptions{NCentroids: 1, Scales: tab.Scales()}); !errors.Is(err, cluster.ErrBadK) {
		t.Errorf("nCentroids=1: got %v, want ErrBadK", err)
	}
	if _, err := BuildPath(context.Background(), tab, []string{"x"}, PathOptions{NCentroids: 7, Scales: tab.Scales()}); !errors.Is(err, cluster.ErrBadK) {
		t.Errorf("nCentroids>rows: got %v, want ErrBadK", err)
	}
	if _, err := BuildPath(context.Background(), tab, []string{"x"}, PathOptions{NCentroids: 2, NInterp: -1, Scales: tab.Scales()}); !errors.Is(err, ErrBadInterp) {
		t.Errorf("nInterp=-1: got %v, want ErrBadInterp", err)
	}
}

func TestBuildPath_FactorColumnsSnapToNearerEndpoint(t *testing.T) {
	tab, err := frame.NewTable(
		frame.NumericColumn("x", []float64{0, 0, 0, 10, 10, 10}),
		frame.FactorColumn("g", []string{"A", "A", "A", "B", "B", "B"}),
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	opts := PathOptions{NCentroids: 2, NInterp: 3, Seed: 1, Scales: tab.Scales()}

	p, err := BuildPath(context.Background(), tab, []string{"x", "g"}, opts)
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}
	if p.Len() != 5 {
		t.Fatalf("path length %d, want 5", p.Len())
	}
	firstLevel := p.Points[0]["g"].Level
	lastLevel := p.Points[4]["g"].Level
	if firstLevel == lastLevel {
		t.Fatalf("expected the path to cross factor groups, got %q..%q", firstLevel, lastLevel)
	}
	// First interpolated point (frac 1/4) keeps the start level; the
	// points at frac 1/2 and 3/4 carry the end level.
	if p.Points[1]["g"].Level != firstLevel {
		t.Errorf("frac 0.25 should keep start level %q, got %q", firstLevel, p.Points[1]["g"].Level)
	}
	if p.Points[2]["g"].Level != lastLevel {
		t.Errorf("frac 0.5 should switch to end level %q, got %q", lastLevel, p.Points[2]["g"].Level)
	}
	if p.Points[3]["g"].Level != lastLevel {
		t.Errorf("frac 0.75 should carry end level %q, got %q", lastLevel, p.Points[3]["g"].Level)
	}
	// Numeric column blends evenly between the medoid endpoints.
	x0, x4 := p.Points[0]["x"].Num, p.Points[4]["x"].Num
	for s := 1; s <= 3; s++ {
		frac := float64(s) / 4
		want := (1-frac)*x0 + frac*x4
		if got := p.Points[s]["x"].Num; math.Abs(got-want) > 1e-9 {
			t.Errorf("interp %d: x=%g, want %g", s, got, want)
		}
	}
}

func TestBuildPath_LengthProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(4, 30).Draw(rt, "rows")
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = rapid.Float64Range(-50, 50).Draw(rt, "val")
		}
		tab, err := frame.NewTable(frame.NumericColumn("x", vals))
		if err != nil {
			rt.Fatalf("NewTable: %v", err)
		}
		k := rapid.IntRange(2, n).Draw(rt, "k")
		nInterp := rapid.IntRange(0, 5).Draw(rt, "nInterp")

		p, err := BuildPath(context.Background(), tab, []string{"x"},
			PathOptions{NCentroids: k, NInterp: nInterp, Seed: 1, Scales: tab.Scales()})
		if err != nil {
			rt.Fatalf("BuildPath: %v", err)
		}
		want := (k-1)*(nInterp+1) + 1
		if p.Len() != want {
			rt.Fatalf("path length %d, want %d (k=%d, nInterp=%d)", p.Len(), want, k, nInterp)
		}
		if len(p.Centroids) != k {
			rt.Fatalf("%d centroids, want %d", len(p.Centroids), k)
		}
		if !reflect.DeepEqual(p.Points[0], p.Centroids[0]) {
			rt.Fatalf("path must start at the first ordered centroid")
		}
		if !reflect.DeepEqual(p.Points[p.Len()-1], p.Centroids[k-1]) {
			rt.Fatalf("path must end at the last ordered centroid")
		}
	})
}
