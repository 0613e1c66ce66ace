// Package seriate orders things so neighbours are similar: tour centroids
// along an open path, and condition variables into display groups. The
// open-path heuristic is nearest-neighbour construction refined by
// deterministic first-improvement 2-opt; exact optimality is not a goal,
// smoothness and determinism are.
package seriate

import (
	"errors"
	"math"
)

// ErrBadMatrix is returned for a non-square or empty distance matrix.
var ErrBadMatrix = errors.New("seriate: distance matrix must be square and non-empty")

// OrderOpenPath returns a permutation of 0..n-1 approximately minimizing
// the total distance along the open path dist[p0][p1] + dist[p1][p2] + ….
// The result is deterministic for a fixed matrix.
func OrderOpenPath(dist [][]float64) ([]int, error) {
	n := len(dist)
	if n == 0 {
		return nil, ErrBadMatrix
	}
	for _, row := range dist {
		if len(row) != n {
			return nil, ErrBadMatrix
		}
	}
	if n == 1 {
		return []int{0}, nil
	}

	// Nearest-neighbour tours from every start; keep the cheapest. Ties
	// resolve to the lower start index, which keeps runs reproducible.
	best := nearestNeighbour(dist, 0)
	bestCost := pathCost(dist, best)
	for s := 1; s < n; s++ {
		tour := nearestNeighbour(dist, s)
		if c := pathCost(dist, tour); c < bestCost {
			best, bestCost = tour, c
		}
	}

	twoOptOpen(dist, best)
	return best, nil
}

func nearestNeighbour(dist [][]float64, start int) []int {
	n := len(dist)
	tour := make([]int, 0, n)
	used := make([]bool, n)
	cur := start
	tour = append(tour, cur)
	used[cur] = true
	for len(tour) < n {
		next, nextD := -1, math.Inf(1)
		for j := 0; j < n; j++ {
			if used[j] {
				continue
			}
			if d := dist[cur][j]; d < nextD {
				next, nextD = j, d
			}
		}
		tour = append(tour, next)
		used[next] = true
		cur = next
	}
	return tour
}

// twoOptOpen applies first-improvement 2-opt to an open path in place.
// Reversing tour[i..k] touches only the boundary edges, and a path end has
// no boundary edge on that side.
func twoOptOpen(dist [][]float64, tour []int) {
	n := len(tour)
	const eps = 1e-12
	improved := true
	for improved {
		improved = false
		for i := 0; i < n-1; i++ {
			for k := i + 1; k < n; k++ {
				var delta float64
				if i > 0 {
					delta += dist[tour[i-1]][tour[k]] - dist[tour[i-1]][tour[i]]
				}
				if k < n-1 {
					delta += dist[tour[i]][tour[k+1]] - dist[tour[k]][tour[k+1]]
				}
				if delta < -eps {
					reverse(tour, i, k)
					improved = true
				}
			}
		}
	}
}

func reverse(tour []int, i, k int) {
	for i < k {
		tour[i], tour[k] = tour[k], tour[i]
		i++
		k--
	}
}

func pathCost(dist [][]float64, tour []int) float64 {
	var c float64
	for i := 0; i+1 < len(tour); i++ {
		c += dist[tour[i]][tour[i+1]]
	}
	return c
}
