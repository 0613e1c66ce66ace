package datasource

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/condtour/pkg/frame"
)

// loadSQLite reads every row of one table from a SQLite database. The
// database is opened read-only; column types are inferred from the cell
// values the same way as for file formats, since SQLite's dynamic typing
// makes declared column types unreliable.
func loadSQLite(source DataSource) (*frame.Table, error) {
	if source.Table == "" {
		return nil, fmt.Errorf("sqlite source needs a table name")
	}
	if !validIdent(source.Table) {
		return nil, fmt.Errorf("invalid table name %q", source.Table)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %q", source.Table))
	if err != nil {
		return nil, fmt.Errorf("querying table: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	builders := make([]*columnBuilder, len(names))
	for i, name := range names {
		builders[i] = &columnBuilder{name: name}
	}

	cells := make([]sql.NullString, len(names))
	dest := make([]any, len(names))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for i, c := range cells {
			if c.Valid {
				builders[i].add(c.String)
			} else {
				builders[i].add("")
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buildTable(builders)
}

// validIdent accepts plain identifiers only; the table name is
// interpolated into the query text.
func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}
