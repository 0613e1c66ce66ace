// Package datasource loads observation tables for a tour session from the
// formats analysts actually have lying around: CSV files, JSON record
// arrays, and SQLite databases. Column types are inferred (a column is
// numeric unless a non-numeric entry appears), and rows with missing
// values are dropped before the engine ever sees the table.
package datasource

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SourceType identifies the type of data source.
type SourceType string

const (
	// SourceTypeCSV is a comma-separated file with a header row.
	SourceTypeCSV SourceType = "csv"
	// SourceTypeJSON is a JSON array of flat records.
	SourceTypeJSON SourceType = "json"
	// SourceTypeSQLite is a SQLite database; one table is read.
	SourceTypeSQLite SourceType = "sqlite"
)

// DataSource describes where a session's table comes from.
type DataSource struct {
	Type SourceType
	Path string
	// Table names the SQLite table to read; ignored for file formats.
	Table string
}

// Detect builds a DataSource from a path, inferring the type from the
// file extension.
func Detect(path, table string) (DataSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return DataSource{Type: SourceTypeCSV, Path: path}, nil
	case ".json":
		return DataSource{Type: SourceTypeJSON, Path: path}, nil
	case ".db", ".sqlite", ".sqlite3":
		return DataSource{Type: SourceTypeSQLite, Path: path, Table: table}, nil
	default:
		return DataSource{}, fmt.Errorf("unsupported dataset extension %q", filepath.Ext(path))
	}
}

// String returns a human-readable description of the source.
func (s DataSource) String() string {
	if s.Type == SourceTypeSQLite && s.Table != "" {
		return fmt.Sprintf("%s (%s, table %s)", s.Path, s.Type, s.Table)
	}
	return fmt.Sprintf("%s (%s)", s.Path, s.Type)
}
