package cluster

import (
	"context"
	"math"
	"math/rand"

	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/kernel"
)

// KMeans partitions the numeric table t into k clusters with Lloyd's
// algorithm and returns the k cluster means as points. Initialization is
// k-means++ seeded from opts.Seed, so results are reproducible.
func KMeans(ctx context.Context, t *frame.Table, k int, kopts kernel.Options, opts Options) ([]frame.Point, error) {
	n := t.NumRows()
	cols := t.Columns()
	p := len(cols)

	// Feature matrix in scaled space. Columns with zero scale (constant
	// or factor-free degenerate) stay raw; they cannot move a distance.
	x := make([][]float64, n)
	divisor := make([]float64, p)
	for j, c := range cols {
		divisor[j] = kopts.Scales[c.Name]
		if divisor[j] == 0 {
			divisor[j] = 1
		}
	}
	for i := 0; i < n; i++ {
		row := make([]float64, p)
		for j, c := range cols {
			row[j] = c.Floats[i] / divisor[j]
		}
		x[i] = row
	}

	centers := seedCenters(x, k, rand.New(rand.NewSource(opts.Seed)))
	assign := make([]int, n)

	for iter := 0; iter < opts.maxIter(); iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		changed := false
		for i, row := range x {
			best, bestD := 0, math.Inf(1)
			for c, center := range centers {
				if d := sqDist(row, center); d < bestD {
					best, bestD = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, p)
		}
		for i, row := range x {
			c := assign[i]
			counts[c]++
			for j, v := range row {
				sums[c][j] += v
			}
		}
		for c := range centers {
			if counts[c] == 0 {
				// Empty cluster keeps its previous center.
				continue
			}
			for j := range centers[c] {
				centers[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	out := make([]frame.Point, k)
	for c, center := range centers {
		pt := make(frame.Point, p)
		for j, col := range cols {
			pt[col.Name] = frame.Num(center[j] * divisor[j])
		}
		out[c] = pt
	}
	return out, nil
}

// seedCenters picks k starting centers with the k-means++ rule: the first
// uniformly, each next proportional to squared distance from the chosen
// set. Deterministic for a fixed rng state.
func seedCenters(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(x)
	centers := make([][]float64, 0, k)
	first := rng.Intn(n)
	centers = append(centers, append([]float64(nil), x[first]...))

	d2 := make([]float64, n)
	for len(centers) < k {
		var total float64
		for i, row := range x {
			best := math.Inf(1)
			for _, c := range centers {
				if d := sqDist(row, c); d < best {
					best = d
				}
			}
			d2[i] = best
			total += best
		}
		var next int
		if total == 0 {
			// All remaining points coincide with a center; any pick works.
			next = rng.Intn(n)
		} else {
			target := rng.Float64() * total
			for i, d := range d2 {
				target -= d
				if target <= 0 {
					next = i
					break
				}
			}
		}
		centers = append(centers, append([]float64(nil), x[next]...))
	}
	return centers
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
