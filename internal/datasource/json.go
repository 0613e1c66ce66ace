package datasource

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/condtour/pkg/frame"
)

// loadJSON reads a JSON array of flat records. Keys become columns; the
// column set is the union of keys, with absent keys treated as missing.
func loadJSON(path string) (*frame.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records in %s", path)
	}

	nameSet := map[string]bool{}
	for _, rec := range records {
		for k := range rec {
			nameSet[k] = true
		}
	}
	names := make([]string, 0, len(nameSet))
	for k := range nameSet {
		names = append(names, k)
	}
	sort.Strings(names)

	builders := make([]*columnBuilder, len(names))
	for i, name := range names {
		builders[i] = &columnBuilder{name: name}
	}
	for _, rec := range records {
		for i, name := range names {
			builders[i].add(jsonCell(rec[name]))
		}
	}
	return buildTable(builders)
}

// jsonCell renders a decoded JSON value as a raw cell for type inference.
func jsonCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", x)
	}
}
