// Package frame holds the tabular data model for a tour session: typed
// columns, observation rows, and the response/section/condition partition.
//
// A Table is immutable once a session starts. Preprocessing (dropping rows
// with missing values, computing per-column scales) happens before the
// engine sees it.
package frame

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Kind discriminates column types.
type Kind int

const (
	// Numeric columns hold float64 observations.
	Numeric Kind = iota
	// Factor columns hold one of an enumerated set of levels.
	Factor
)

// String returns a human-readable label for the kind.
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Factor:
		return "factor"
	default:
		return "unknown"
	}
}

// Column is a single named column of observations. Numeric columns use
// Floats; Factor columns use Codes indexing into Levels. A missing value is
// NaN for numeric columns and a negative code for factors.
type Column struct {
	Name   string
	Kind   Kind
	Floats []float64
	Levels []string
	Codes  []int
}

// Len returns the number of observations in the column.
func (c Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Codes)
}

// Missing reports whether the observation at row i is missing.
func (c Column) Missing(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Floats[i])
	}
	return c.Codes[i] < 0
}

// Level returns the label for row i of a factor column.
func (c Column) Level(i int) string {
	return c.Levels[c.Codes[i]]
}

// NumericColumn builds a numeric column.
func NumericColumn(name string, vals []float64) Column {
	return Column{Name: name, Kind: Numeric, Floats: vals}
}

// FactorColumn builds a factor column from raw labels. Levels are assigned
// in order of first appearance; empty labels are treated as missing.
func FactorColumn(name string, labels []string) Column {
	col := Column{Name: name, Kind: Factor, Codes: make([]int, len(labels))}
	seen := make(map[string]int)
	for i, lab := range labels {
		if lab == "" {
			col.Codes[i] = -1
			continue
		}
		code, ok := seen[lab]
		if !ok {
			code = len(col.Levels)
			seen[lab] = code
			col.Levels = append(col.Levels, lab)
		}
		col.Codes[i] = code
	}
	return col
}

// Value is one cell: a number for numeric columns, a level for factors.
type Value struct {
	Kind  Kind
	Num   float64
	Level string
}

// Num wraps a numeric cell value.
func Num(v float64) Value { return Value{Kind: Numeric, Num: v} }

// Lev wraps a factor cell value.
func Lev(l string) Value { return Value{Kind: Factor, Level: l} }

// String renders the value for display.
func (v Value) String() string {
	if v.Kind == Factor {
		return v.Level
	}
	return fmt.Sprintf("%g", v.Num)
}

// Point assigns one value per named column. Conditioning points are Points
// over the condition variables.
type Point map[string]Value

// Clone returns an independent copy of the point.
func (p Point) Clone() Point {
	out := make(Point, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Table is an ordered collection of equal-length named columns.
type Table struct {
	cols  []Column
	index map[string]int
	nrows int
}

// NewTable assembles a table from columns. Column names must be unique and
// lengths must agree.
func NewTable(cols ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i == 0 {
			t.nrows = c.Len()
		} else if c.Len() != t.nrows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.nrows)
		}
		t.index[c.Name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// NumRows returns the number of observations.
func (t *Table) NumRows() int { return t.nrows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// Columns returns all columns in order.
func (t *Table) Columns() []Column { return t.cols }

// Has reports whether the table contains the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row materializes row i as a Point over every column.
func (t *Table) Row(i int) Point {
	p := make(Point, len(t.cols))
	for _, c := range t.cols {
		if c.Kind == Numeric {
			p[c.Name] = Num(c.Floats[i])
		} else {
			p[c.Name] = Lev(c.Level(i))
		}
	}
	return p
}

// Select returns a table restricted to the named columns, sharing column
// storage with the receiver.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, fmt.Errorf("no such column %q", n)
		}
		cols = append(cols, c)
	}
	return NewTable(cols...)
}

// DropMissing returns a table with every row that has any missing value
// removed. Column storage is copied; the receiver is untouched.
func (t *Table) DropMissing() *Table {
	keep := make([]int, 0, t.nrows)
rows:
	for i := 0; i < t.nrows; i++ {
		for _, c := range t.cols {
			if c.Missing(i) {
				continue rows
			}
		}
		keep = append(keep, i)
	}
	cols := make([]Column, len(t.cols))
	for ci, c := range t.cols {
		nc := Column{Name: c.Name, Kind: c.Kind, Levels: c.Levels}
		if c.Kind == Numeric {
			nc.Floats = make([]float64, len(keep))
			for j, i := range keep {
				nc.Floats[j] = c.Floats[i]
			}
		} else {
			nc.Codes = make([]int, len(keep))
			for j, i := range keep {
				nc.Codes[j] = c.Codes[i]
			}
		}
		cols[ci] = nc
	}
	out, err := NewTable(cols...)
	if err != nil {
		// Columns came from a valid table, so this cannot happen.
		panic(err)
	}
	return out
}

// Scales returns the per-column scale used by the distance kernel: the
// sample standard deviation for numeric columns, 0 for factors and for
// constant columns.
func (t *Table) Scales() map[string]float64 {
	out := make(map[string]float64, len(t.cols))
	for _, c := range t.cols {
		if c.Kind != Numeric || len(c.Floats) < 2 {
			out[c.Name] = 0
			continue
		}
		sd := stat.StdDev(c.Floats, nil)
		if math.IsNaN(sd) {
			sd = 0
		}
		out[c.Name] = sd
	}
	return out
}
