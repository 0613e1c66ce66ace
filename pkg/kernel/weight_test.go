package kernel

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/condtour/pkg/frame"
)

func TestWeights_RangeAndThreshold(t *testing.T) {
	tab := mustTable(t, frame.NumericColumn("x", []float64{0, 0.5, 0.99, 1, 1.5}))
	opts := Options{Scales: map[string]float64{"x": 1}}
	p := frame.Point{"x": frame.Num(0)}

	w, err := Weights(p, tab, []string{"x"}, 1.0, opts)
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	if w[0] != 1 {
		t.Errorf("distance 0 should weight 1, got %g", w[0])
	}
	if w[3] != 0 {
		t.Errorf("distance == bandwidth should weight exactly 0, got %g", w[3])
	}
	if w[4] != 0 {
		t.Errorf("distance beyond bandwidth should weight 0, got %g", w[4])
	}
	for i, v := range w {
		if v < 0 || v > 1 {
			t.Errorf("row %d: weight %g outside [0,1]", i, v)
		}
	}
	// Monotone: closer rows never weigh less.
	for i := 1; i < len(w); i++ {
		if w[i] > w[i-1] {
			t.Errorf("weights not monotone at row %d: %g > %g", i, w[i], w[i-1])
		}
	}
}

func TestWeights_BadBandwidth(t *testing.T) {
	tab := mustTable(t, frame.NumericColumn("x", []float64{1}))
	p := frame.Point{"x": frame.Num(0)}
	for _, b := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Weights(p, tab, []string{"x"}, b, Options{Scales: map[string]float64{"x": 1}}); err == nil {
			t.Errorf("bandwidth %g: expected error", b)
		}
	}
}

func TestWeights_CategoricalHardFilter(t *testing.T) {
	// Unset lambda: a row differing on a factor level gets weight exactly
	// 0 no matter how numerically close it is.
	tab := mustTable(t,
		frame.NumericColumn("x", []float64{0, 0, 0, 0}),
		frame.FactorColumn("g", []string{"A", "B", "A", "B"}),
	)
	opts := Options{Scales: map[string]float64{"x": 1}}
	p := frame.Point{"x": frame.Num(0), "g": frame.Lev("A")}

	w, err := Weights(p, tab, []string{"x", "g"}, 100, opts)
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	want := []float64{1, 0, 1, 0}
	for i := range want {
		if w[i] != want[i] {
			t.Errorf("row %d: got %g, want %g", i, w[i], want[i])
		}
	}
}

func TestWeights_PureFunction(t *testing.T) {
	tab := mustTable(t, frame.NumericColumn("x", []float64{0.1, 0.7, 2.3}))
	opts := Options{Scales: map[string]float64{"x": 1}}
	p := frame.Point{"x": frame.Num(0.4)}

	a, err := Weights(p, tab, []string{"x"}, 1.5, opts)
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	b, err := Weights(p, tab, []string{"x"}, 1.5, opts)
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("row %d: repeated call gave %g then %g", i, a[i], b[i])
		}
	}
}

func TestWeights_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 50).Draw(rt, "n")
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = rapid.Float64Range(-100, 100).Draw(rt, "val")
		}
		bw := rapid.Float64Range(0.01, 50).Draw(rt, "bw")
		center := rapid.Float64Range(-100, 100).Draw(rt, "center")

		tab, err := frame.NewTable(frame.NumericColumn("x", vals))
		if err != nil {
			rt.Fatalf("NewTable: %v", err)
		}
		opts := Options{Scales: map[string]float64{"x": 1}}
		p := frame.Point{"x": frame.Num(center)}

		w, err := Weights(p, tab, []string{"x"}, bw, opts)
		if err != nil {
			rt.Fatalf("Weights: %v", err)
		}
		d, err := Distances(p, tab, []string{"x"}, opts)
		if err != nil {
			rt.Fatalf("Distances: %v", err)
		}
		for i := range w {
			if w[i] < 0 || w[i] > 1 {
				rt.Fatalf("row %d: weight %g outside [0,1]", i, w[i])
			}
			if d[i] >= bw && w[i] != 0 {
				rt.Fatalf("row %d: distance %g >= bandwidth %g but weight %g", i, d[i], bw, w[i])
			}
			if d[i] == 0 && w[i] != 1 {
				rt.Fatalf("row %d: distance 0 but weight %g", i, w[i])
			}
			for j := range w {
				if d[i] < d[j] && w[i] < w[j] {
					rt.Fatalf("monotonicity violated: d%d=%g < d%d=%g but w%d=%g < w%d=%g",
						i, d[i], j, d[j], i, w[i], j, w[j])
				}
			}
		}
	})
}
