package cluster

import (
	"context"
	"math"

	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/kernel"
)

// KMedoids selects k medoid rows from t with the PAM build/swap scheme over
// the mixed-type kernel distance. Medoids are actual observations, which is
// what makes this the right capability for tables with factor columns.
func KMedoids(ctx context.Context, t *frame.Table, k int, kopts kernel.Options, opts Options) ([]frame.Point, error) {
	n := t.NumRows()
	cols := t.Names()

	// Pairwise distance matrix. Kernel distances are point-vs-table, so one
	// call per row gives a full row of the matrix.
	dist := make([][]float64, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := kernel.Distances(t.Row(i), t, cols, kopts)
		if err != nil {
			return nil, err
		}
		dist[i] = row
	}

	medoids := pamBuild(dist, k)
	inSet := make([]bool, n)
	for _, m := range medoids {
		inSet[m] = true
	}

	// Swap phase: first-improvement scans, deterministic order.
	for iter := 0; iter < opts.maxIter(); iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		improved := false
		cur := pamCost(dist, medoids)
		for mi, m := range medoids {
			for cand := 0; cand < n; cand++ {
				if inSet[cand] {
					continue
				}
				medoids[mi] = cand
				if c := pamCost(dist, medoids); c < cur {
					cur = c
					inSet[m] = false
					inSet[cand] = true
					m = cand
					improved = true
				} else {
					medoids[mi] = m
				}
			}
		}
		if !improved {
			break
		}
	}

	out := make([]frame.Point, k)
	for i, m := range medoids {
		out[i] = t.Row(m)
	}
	return out, nil
}

// pamBuild greedily seeds the medoid set: the row minimizing total distance
// first, then whichever row reduces the assignment cost most.
func pamBuild(dist [][]float64, k int) []int {
	n := len(dist)
	medoids := make([]int, 0, k)

	best, bestSum := 0, math.Inf(1)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += capInf(dist[i][j])
		}
		if sum < bestSum {
			best, bestSum = i, sum
		}
	}
	medoids = append(medoids, best)

	nearest := make([]float64, n)
	for j := 0; j < n; j++ {
		nearest[j] = capInf(dist[best][j])
	}
	for len(medoids) < k {
		bestGain, bestCand := math.Inf(-1), -1
		for cand := 0; cand < n; cand++ {
			if contains(medoids, cand) {
				continue
			}
			var gain float64
			for j := 0; j < n; j++ {
				if d := capInf(dist[cand][j]); d < nearest[j] {
					gain += nearest[j] - d
				}
			}
			if gain > bestGain {
				bestGain, bestCand = gain, cand
			}
		}
		medoids = append(medoids, bestCand)
		for j := 0; j < n; j++ {
			if d := capInf(dist[bestCand][j]); d < nearest[j] {
				nearest[j] = d
			}
		}
	}
	return medoids
}

func pamCost(dist [][]float64, medoids []int) float64 {
	var total float64
	for j := range dist {
		best := math.Inf(1)
		for _, m := range medoids {
			if d := capInf(dist[m][j]); d < best {
				best = d
			}
		}
		total += best
	}
	return total
}

// capInf clamps infinite distances (hard factor mismatches) to a large
// finite cost so PAM's sums stay comparable.
func capInf(d float64) float64 {
	if math.IsInf(d, 1) {
		return 1e9
	}
	return d
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
