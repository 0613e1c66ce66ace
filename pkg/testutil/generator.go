// Package testutil provides deterministic dataset generators for tests.
// All generators produce the same table for the same config, so tests that
// assert on cluster structure or path shape stay reproducible.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/condtour/pkg/frame"
)

// GeneratorConfig controls synthetic dataset generation.
type GeneratorConfig struct {
	Seed        int64   // Random seed; 0 means 42
	Rows        int     // Observations per cluster
	Clusters    int     // Well-separated groups in the condition space
	NumericVars int     // Numeric condition columns
	FactorVars  int     // Factor condition columns, level tied to cluster
	Noise       float64 // Within-cluster spread (default 0.3)
	Separation  float64 // Between-cluster center spacing (default 10)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		Rows:        20,
		Clusters:    3,
		NumericVars: 2,
		FactorVars:  1,
		Noise:       0.3,
		Separation:  10,
	}
}

// Generator creates synthetic tables with known cluster structure.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config. Zero fields fall back to
// DefaultConfig values.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.Rows == 0 {
		cfg.Rows = def.Rows
	}
	if cfg.Clusters == 0 {
		cfg.Clusters = def.Clusters
	}
	if cfg.NumericVars == 0 {
		cfg.NumericVars = def.NumericVars
	}
	if cfg.Noise == 0 {
		cfg.Noise = def.Noise
	}
	if cfg.Separation == 0 {
		cfg.Separation = def.Separation
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// ClusteredTable builds a table with Clusters well-separated groups. The
// columns are y (response, linear in the first condition column plus
// noise), s (a uniform section variable), z1..zN numeric condition columns
// centered per cluster, and g1..gM factor columns whose level names the
// cluster, so factor-aware clustering can be asserted exactly.
func (g *Generator) ClusteredTable() (*frame.Table, []string) {
	n := g.cfg.Rows * g.cfg.Clusters

	ys := make([]float64, 0, n)
	ss := make([]float64, 0, n)
	nums := make([][]float64, g.cfg.NumericVars)
	for i := range nums {
		nums[i] = make([]float64, 0, n)
	}
	facs := make([][]string, g.cfg.FactorVars)
	for i := range facs {
		facs[i] = make([]string, 0, n)
	}

	for c := 0; c < g.cfg.Clusters; c++ {
		center := float64(c) * g.cfg.Separation
		for r := 0; r < g.cfg.Rows; r++ {
			for i := range nums {
				nums[i] = append(nums[i], center+g.rng.NormFloat64()*g.cfg.Noise)
			}
			for i := range facs {
				facs[i] = append(facs[i], fmt.Sprintf("c%d", c))
			}
			s := g.rng.Float64() * 10
			ss = append(ss, s)
			ys = append(ys, 2*center+0.5*s+g.rng.NormFloat64()*g.cfg.Noise)
		}
	}

	cols := []frame.Column{
		frame.NumericColumn("y", ys),
		frame.NumericColumn("s", ss),
	}
	var condCols []string
	for i, vals := range nums {
		name := fmt.Sprintf("z%d", i+1)
		cols = append(cols, frame.NumericColumn(name, vals))
		condCols = append(condCols, name)
	}
	for i, labels := range facs {
		name := fmt.Sprintf("g%d", i+1)
		cols = append(cols, frame.FactorColumn(name, labels))
		condCols = append(condCols, name)
	}

	tab, err := frame.NewTable(cols...)
	if err != nil {
		// Generator invariants guarantee equal lengths and unique names.
		panic(err)
	}
	return tab, condCols
}

// ClusterCenters returns the numeric center used for each cluster.
func (g *Generator) ClusterCenters() []float64 {
	out := make([]float64, g.cfg.Clusters)
	for c := range out {
		out[c] = float64(c) * g.cfg.Separation
	}
	return out
}
