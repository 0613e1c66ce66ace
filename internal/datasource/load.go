package datasource

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vanderheijden86/condtour/pkg/debug"
	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/metrics"
)

// Load reads the table behind source, dispatching on its type. Rows with
// missing values are dropped; the returned table is session-ready.
func Load(source DataSource) (*frame.Table, error) {
	defer metrics.Timer(metrics.DataLoad)()
	var (
		t   *frame.Table
		err error
	)
	switch source.Type {
	case SourceTypeCSV:
		t, err = loadCSV(source.Path)
	case SourceTypeJSON:
		t, err = loadJSON(source.Path)
	case SourceTypeSQLite:
		t, err = loadSQLite(source)
	default:
		return nil, fmt.Errorf("unknown source type %q", source.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", source, err)
	}
	raw := t.NumRows()
	t = t.DropMissing()
	if dropped := raw - t.NumRows(); dropped > 0 {
		debug.Log("dropped %d rows with missing values (%d remain)", dropped, t.NumRows())
	}
	return t, nil
}

// columnBuilder accumulates raw string cells and infers the column type at
// the end: numeric if every non-missing cell parses as a float, factor
// otherwise.
type columnBuilder struct {
	name  string
	cells []string
}

func (b *columnBuilder) add(cell string) {
	b.cells = append(b.cells, cell)
}

func (b *columnBuilder) build() frame.Column {
	numeric := true
	for _, cell := range b.cells {
		if cell == "" || cell == "NA" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		vals := make([]float64, len(b.cells))
		for i, cell := range b.cells {
			if cell == "" || cell == "NA" {
				vals[i] = math.NaN()
				continue
			}
			vals[i], _ = strconv.ParseFloat(cell, 64)
		}
		return frame.NumericColumn(b.name, vals)
	}
	labels := make([]string, len(b.cells))
	for i, cell := range b.cells {
		if cell == "NA" {
			cell = ""
		}
		labels[i] = cell
	}
	return frame.FactorColumn(b.name, labels)
}

func buildTable(builders []*columnBuilder) (*frame.Table, error) {
	cols := make([]frame.Column, len(builders))
	for i, b := range builders {
		cols[i] = b.build()
	}
	return frame.NewTable(cols...)
}
