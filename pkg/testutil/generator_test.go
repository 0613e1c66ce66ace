package testutil

import (
	"testing"

	"github.com/vanderheijden86/condtour/pkg/frame"
)

func TestClusteredTableShape(t *testing.T) {
	g := New(GeneratorConfig{Rows: 5, Clusters: 3, NumericVars: 2, FactorVars: 1})
	tab, cond := g.ClusteredTable()

	if tab.NumRows() != 15 {
		t.Errorf("rows = %d, want 15", tab.NumRows())
	}
	want := []string{"z1", "z2", "g1"}
	if len(cond) != len(want) {
		t.Fatalf("condition cols = %v", cond)
	}
	for i, name := range want {
		if cond[i] != name {
			t.Errorf("cond[%d] = %s, want %s", i, cond[i], name)
		}
	}
	g1, _ := tab.Column("g1")
	if g1.Kind != frame.Factor {
		t.Error("g1 should be a factor")
	}
	if got := len(g1.Levels); got != 3 {
		t.Errorf("g1 has %d levels, want one per cluster", got)
	}
}

func TestDeterminism(t *testing.T) {
	a, _ := New(GeneratorConfig{Seed: 7}).ClusteredTable()
	b, _ := New(GeneratorConfig{Seed: 7}).ClusteredTable()

	za, _ := a.Column("z1")
	zb, _ := b.Column("z1")
	for i := range za.Floats {
		if za.Floats[i] != zb.Floats[i] {
			t.Fatalf("row %d differs across identical seeds", i)
		}
	}
}
