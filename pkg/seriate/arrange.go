package seriate

import (
	"fmt"
	"sort"

	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/metrics"
)

// GroupSize is how many condition variables share one selector panel.
const GroupSize = 2

// Arrange methods.
const (
	// MethodAssociation seriates variables by pairwise association so
	// related condition variables are displayed adjacently. Default.
	MethodAssociation = "association"
	// MethodAlphabetical orders variables by name. Cheap fallback when
	// association structure is uninteresting.
	MethodAlphabetical = "alphabetical"
)

// Arrange orders the condition variables of t into display groups of
// GroupSize. The default method pairs the most strongly associated
// variables together and orders the groups along an association seriation,
// so related condition selectors sit next to each other on screen. When
// more than frame.MaxConditionVars candidates exist the least-associated
// ones are dropped first. Deterministic for a fixed table and method.
func Arrange(t *frame.Table, cols []string, method string) ([][]string, error) {
	defer metrics.Timer(metrics.ConditionArrange)()
	if len(cols) == 0 {
		return nil, nil
	}
	switch method {
	case "", MethodAssociation:
		return associationGroups(t, cols)
	case MethodAlphabetical:
		ordered := append([]string(nil), cols...)
		sort.Strings(ordered)
		if len(ordered) > frame.MaxConditionVars {
			ordered = ordered[:frame.MaxConditionVars]
		}
		return chunk(ordered), nil
	default:
		return nil, fmt.Errorf("seriate: unknown arrange method %q", method)
	}
}

func chunk(ordered []string) [][]string {
	groups := make([][]string, 0, (len(ordered)+GroupSize-1)/GroupSize)
	for len(ordered) > 0 {
		g := GroupSize
		if g > len(ordered) {
			g = len(ordered)
		}
		groups = append(groups, ordered[:g])
		ordered = ordered[g:]
	}
	return groups
}

func associationGroups(t *frame.Table, cols []string) ([][]string, error) {
	dist, err := AssociationDistances(t, cols)
	if err != nil {
		return nil, err
	}

	keep := make([]int, len(cols))
	for i := range keep {
		keep[i] = i
	}
	if len(cols) > frame.MaxConditionVars {
		// Display budget: drop the variables least associated with the
		// rest. Stable sort keeps the cut deterministic under ties.
		total := make([]float64, len(cols))
		for i := range cols {
			for j := range cols {
				if i != j {
					total[i] += 1 - dist[i][j]
				}
			}
		}
		sort.SliceStable(keep, func(a, b int) bool { return total[keep[a]] > total[keep[b]] })
		keep = keep[:frame.MaxConditionVars]
		sort.Ints(keep)
	}

	// Greedy matching: repeatedly pair the two most associated unpaired
	// variables. Ties resolve to lower indices.
	paired := make(map[int]bool, len(keep))
	var groups [][]int
	for {
		bi, bj, bd := -1, -1, 2.0
		for a := 0; a < len(keep); a++ {
			if paired[keep[a]] {
				continue
			}
			for b := a + 1; b < len(keep); b++ {
				if paired[keep[b]] {
					continue
				}
				if d := dist[keep[a]][keep[b]]; d < bd {
					bi, bj, bd = keep[a], keep[b], d
				}
			}
		}
		if bi < 0 {
			break
		}
		paired[bi], paired[bj] = true, true
		groups = append(groups, []int{bi, bj})
	}
	for _, i := range keep {
		if !paired[i] {
			groups = append(groups, []int{i})
		}
	}

	// Order the groups along an open-path seriation of the kept variables
	// so adjacent panels stay related.
	sub := make([][]float64, len(keep))
	pos := make(map[int]int, len(keep))
	for i, ki := range keep {
		sub[i] = make([]float64, len(keep))
		for j, kj := range keep {
			sub[i][j] = dist[ki][kj]
		}
	}
	perm, err := OrderOpenPath(sub)
	if err != nil {
		return nil, err
	}
	for rank, p := range perm {
		pos[keep[p]] = rank
	}
	sort.SliceStable(groups, func(a, b int) bool {
		ra := pos[groups[a][0]]
		if rb := pos[groups[a][len(groups[a])-1]]; rb < ra {
			ra = rb
		}
		sa := pos[groups[b][0]]
		if sb := pos[groups[b][len(groups[b])-1]]; sb < sa {
			sa = sb
		}
		return ra < sa
	})

	out := make([][]string, len(groups))
	for i, g := range groups {
		names := make([]string, len(g))
		for j, idx := range g {
			names[j] = cols[idx]
		}
		out[i] = names
	}
	return out, nil
}
