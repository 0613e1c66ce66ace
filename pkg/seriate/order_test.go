package seriate

import (
	"math"
	"reflect"
	"testing"
)

// line builds the distance matrix of points on a line.
func line(xs ...float64) [][]float64 {
	n := len(xs)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			d[i][j] = math.Abs(xs[i] - xs[j])
		}
	}
	return d
}

func TestOrderOpenPath_LineRecovered(t *testing.T) {
	// Points on a line in scrambled index order; the open path must walk
	// the line end to end.
	xs := []float64{3, 0, 4, 1, 2}
	perm, err := OrderOpenPath(line(xs...))
	if err != nil {
		t.Fatalf("OrderOpenPath: %v", err)
	}
	got := make([]float64, len(perm))
	for i, p := range perm {
		got[i] = xs[p]
	}
	asc := reflect.DeepEqual(got, []float64{0, 1, 2, 3, 4})
	desc := reflect.DeepEqual(got, []float64{4, 3, 2, 1, 0})
	if !asc && !desc {
		t.Errorf("path does not walk the line: %v", got)
	}
}

func TestOrderOpenPath_Deterministic(t *testing.T) {
	d := line(5, 1, 9, 2, 8, 3)
	a, err := OrderOpenPath(d)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	b, err := OrderOpenPath(d)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("ordering not deterministic: %v vs %v", a, b)
	}
}

func TestOrderOpenPath_Degenerate(t *testing.T) {
	if _, err := OrderOpenPath(nil); err == nil {
		t.Error("empty matrix should error")
	}
	if _, err := OrderOpenPath([][]float64{{0, 1}}); err == nil {
		t.Error("ragged matrix should error")
	}
	perm, err := OrderOpenPath([][]float64{{0}})
	if err != nil || len(perm) != 1 || perm[0] != 0 {
		t.Errorf("single point: got %v, %v", perm, err)
	}
}

func TestOrderOpenPath_NoWorseThanIdentity(t *testing.T) {
	d := line(0, 10, 1, 9, 2, 8, 3, 7)
	perm, err := OrderOpenPath(d)
	if err != nil {
		t.Fatalf("OrderOpenPath: %v", err)
	}
	identity := make([]int, len(d))
	for i := range identity {
		identity[i] = i
	}
	if pathCost(d, perm) > pathCost(d, identity) {
		t.Errorf("heuristic cost %g worse than identity %g", pathCost(d, perm), pathCost(d, identity))
	}
}
