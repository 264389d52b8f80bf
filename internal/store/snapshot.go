package store

import (
	"fmt"
	"strings"

	"github.com/lherron/datasetprep/internal/db"
)

// TableDump is every row of one table rendered as text, ordered by rowid.
type TableDump struct {
	Table   string
	Columns []string
	Rows    []string
}

// Snapshot dumps the given tables. Tables that do not exist are skipped.
// Each row is rendered as its column values joined by " | ", so two
// snapshots compare row for row with plain equality.
func (s *Store) Snapshot(tables []string) ([]TableDump, error) {
	var dumps []TableDump
	for _, table := range tables {
		columns, err := db.TableColumns(s.db, table)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			continue
		}

		rows, err := dumpRows(s.db, table, len(columns))
		if err != nil {
			return nil, err
		}
		dumps = append(dumps, TableDump{Table: table, Columns: columns, Rows: rows})
	}
	return dumps, nil
}

func dumpRows(q db.Querier, table string, width int) ([]string, error) {
	rows, err := q.Query(fmt.Sprintf("SELECT * FROM %s ORDER BY rowid", db.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to dump %s: %w", table, err)
	}
	defer rows.Close()

	var out []string
	values := make([]any, width)
	ptrs := make([]any, width)
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		cells := make([]string, width)
		for i, v := range values {
			cells[i] = formatCell(v)
		}
		out = append(out, strings.Join(cells, " | "))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table, err)
	}
	return out, nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("%q", x)
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprint(x)
	}
}
