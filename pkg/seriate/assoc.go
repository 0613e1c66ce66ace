package seriate

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/condtour/pkg/frame"
)

// AssociationDistances builds a symmetric matrix of association distances
// in [0, 1] between the named columns of t: 0 means perfectly associated,
// 1 means unrelated. Numeric pairs use 1-|Pearson r|, factor pairs use
// 1-Cramér's V, and mixed pairs use 1-η (the correlation ratio).
func AssociationDistances(t *frame.Table, cols []string) ([][]float64, error) {
	n := len(cols)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		ci, ok := t.Column(cols[i])
		if !ok {
			return nil, ErrBadMatrix
		}
		for j := i + 1; j < n; j++ {
			cj, _ := t.Column(cols[j])
			d := 1 - association(ci, cj)
			if d < 0 {
				d = 0
			}
			out[i][j] = d
			out[j][i] = d
		}
	}
	return out, nil
}

// association returns a strength in [0, 1] for any column-kind pairing.
func association(a, b frame.Column) float64 {
	switch {
	case a.Kind == frame.Numeric && b.Kind == frame.Numeric:
		r := stat.Correlation(a.Floats, b.Floats, nil)
		if math.IsNaN(r) {
			return 0
		}
		return math.Abs(r)
	case a.Kind == frame.Factor && b.Kind == frame.Factor:
		return cramersV(a, b)
	case a.Kind == frame.Factor:
		return correlationRatio(a, b)
	default:
		return correlationRatio(b, a)
	}
}

// cramersV measures association between two factors from their
// contingency table.
func cramersV(a, b frame.Column) float64 {
	n := a.Len()
	if n == 0 || len(a.Levels) < 2 || len(b.Levels) < 2 {
		return 0
	}
	ra, rb := len(a.Levels), len(b.Levels)
	obs := make([][]float64, ra)
	for i := range obs {
		obs[i] = make([]float64, rb)
	}
	rowTot := make([]float64, ra)
	colTot := make([]float64, rb)
	for i := 0; i < n; i++ {
		obs[a.Codes[i]][b.Codes[i]]++
		rowTot[a.Codes[i]]++
		colTot[b.Codes[i]]++
	}
	var chi2 float64
	for i := 0; i < ra; i++ {
		for j := 0; j < rb; j++ {
			exp := rowTot[i] * colTot[j] / float64(n)
			if exp == 0 {
				continue
			}
			d := obs[i][j] - exp
			chi2 += d * d / exp
		}
	}
	denom := float64(n) * float64(min(ra, rb)-1)
	if denom == 0 {
		return 0
	}
	return math.Sqrt(chi2 / denom)
}

// correlationRatio is η: how much of the numeric column's variance the
// factor's group means explain.
func correlationRatio(f, num frame.Column) float64 {
	n := num.Len()
	if n == 0 || len(f.Levels) < 2 {
		return 0
	}
	mean := stat.Mean(num.Floats, nil)
	groupSum := make([]float64, len(f.Levels))
	groupN := make([]float64, len(f.Levels))
	for i := 0; i < n; i++ {
		groupSum[f.Codes[i]] += num.Floats[i]
		groupN[f.Codes[i]]++
	}
	var between, total float64
	for g := range groupSum {
		if groupN[g] == 0 {
			continue
		}
		gm := groupSum[g] / groupN[g]
		between += groupN[g] * (gm - mean) * (gm - mean)
	}
	for _, v := range num.Floats {
		total += (v - mean) * (v - mean)
	}
	if total == 0 {
		return 0
	}
	return math.Sqrt(between / total)
}
