package cluster

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/kernel"
)

func numTable(t *testing.T, name string, vals []float64) *frame.Table {
	t.Helper()
	tab, err := frame.NewTable(frame.NumericColumn(name, vals))
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tab
}

func TestRepresentatives_BadK(t *testing.T) {
	tab := numTable(t, "x", []float64{1, 2, 3})
	for _, k := range []int{0, 1, 4} {
		_, err := Representatives(context.Background(), tab, k, kernel.Options{}, Options{})
		if !errors.Is(err, ErrBadK) {
			t.Errorf("k=%d: got %v, want ErrBadK", k, err)
		}
	}
}

func TestKMeans_RecoversSpreadGroups(t *testing.T) {
	// Six evenly spaced values, three clusters: the representatives should
	// sit near the {0,1}/{2,3}/{4,5}-style groups.
	tab := numTable(t, "x", []float64{0, 1, 2, 3, 4, 5})
	kopts := kernel.Options{Scales: map[string]float64{"x": 1}}

	reps, err := Representatives(context.Background(), tab, 3, kopts, Options{Seed: 1})
	if err != nil {
		t.Fatalf("Representatives: %v", err)
	}
	if len(reps) != 3 {
		t.Fatalf("got %d representatives, want 3", len(reps))
	}
	centers := make([]float64, 3)
	for i, r := range reps {
		centers[i] = r["x"].Num
	}
	sort.Float64s(centers)
	for i, c := range centers {
		if c < 0 || c > 5 {
			t.Errorf("center %d = %g outside data range", i, c)
		}
	}
	for _, v := range []float64{0, 1, 2, 3, 4, 5} {
		best := math.Inf(1)
		for _, c := range centers {
			if d := math.Abs(v - c); d < best {
				best = d
			}
		}
		if best > 1.5 {
			t.Errorf("value %g is %g from its nearest center %v", v, best, centers)
		}
	}
}

func TestKMeans_DeterministicPerSeed(t *testing.T) {
	vals := []float64{3, 1, 4, 1.5, 5, 9, 2.6, 5.3, 5.8, 9.7}
	tab := numTable(t, "x", vals)
	kopts := kernel.Options{Scales: map[string]float64{"x": 1}}

	a, err := Representatives(context.Background(), tab, 4, kopts, Options{Seed: 7})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Representatives(context.Background(), tab, 4, kopts, Options{Seed: 7})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i := range a {
		if a[i]["x"].Num != b[i]["x"].Num {
			t.Errorf("rep %d differs across identical runs: %g vs %g", i, a[i]["x"].Num, b[i]["x"].Num)
		}
	}
}

func TestKMedoids_MixedTableReturnsRealRows(t *testing.T) {
	tab, err := frame.NewTable(
		frame.NumericColumn("x", []float64{0, 0.1, 5, 5.1, 10, 10.1}),
		frame.FactorColumn("g", []string{"A", "A", "B", "B", "C", "C"}),
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	kopts := kernel.Options{Scales: map[string]float64{"x": 1}, Lambda: 1}

	reps, err := Representatives(context.Background(), tab, 3, kopts, Options{Seed: 1})
	if err != nil {
		t.Fatalf("Representatives: %v", err)
	}
	if len(reps) != 3 {
		t.Fatalf("got %d medoids, want 3", len(reps))
	}
	levels := map[string]bool{}
	for _, r := range reps {
		// Every medoid must be an actual observation.
		found := false
		for i := 0; i < tab.NumRows(); i++ {
			row := tab.Row(i)
			if row["x"].Num == r["x"].Num && row["g"].Level == r["g"].Level {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("medoid %v is not a row of the table", r)
		}
		levels[r["g"].Level] = true
	}
	if len(levels) != 3 {
		t.Errorf("medoids should cover all three factor groups, got %v", levels)
	}
}

func TestKMedoids_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tab := numTable(t, "x", []float64{1, 2, 3, 4})
	_, err := KMedoids(ctx, tab, 2, kernel.Options{Scales: map[string]float64{"x": 1}}, Options{})
	if err == nil {
		t.Fatal("expected context error after cancel")
	}
}
