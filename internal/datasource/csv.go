package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/vanderheijden86/condtour/pkg/frame"
)

// loadCSV reads a headered CSV file into a table.
func loadCSV(path string) (*frame.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	builders := make([]*columnBuilder, len(header))
	for i, name := range header {
		builders[i] = &columnBuilder{name: name}
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		for i, cell := range rec {
			builders[i].add(cell)
		}
	}
	return buildTable(builders)
}
