package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// TableColumns returns the column names of table in declaration order.
// A missing table yields an empty slice and no error, matching PRAGMA table_info.
func TableColumns(q Querier, table string) ([]string, error) {
	rows, err := q.Query(fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := []string{}
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", table, err)
	}

	return columns, nil
}

// TableExists reports whether a table with the given name exists.
func TableExists(q Querier, table string) (bool, error) {
	var count int
	err := q.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check for table %s: %w", table, err)
	}
	return count > 0, nil
}

// CountRows returns the number of rows in table.
func CountRows(q Querier, table string) (int, error) {
	var count int
	if err := q.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", QuoteIdent(table))).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

// QuoteIdent quotes a SQLite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ForeignKeyViolation is one row of PRAGMA foreign_key_check: a child row
// whose reference has no parent.
type ForeignKeyViolation struct {
	Table  string
	RowID  sql.NullInt64 // NULL for WITHOUT ROWID tables
	Parent string
	FKID   int
}

// ForeignKeyViolations returns every row reported by
// PRAGMA foreign_key_check, across all tables.
func ForeignKeyViolations(q Querier) ([]ForeignKeyViolation, error) {
	rows, err := q.Query("PRAGMA foreign_key_check")
	if err != nil {
		return nil, fmt.Errorf("failed to run foreign key check: %w", err)
	}
	defer rows.Close()

	violations := []ForeignKeyViolation{}
	for rows.Next() {
		var v ForeignKeyViolation
		if err := rows.Scan(&v.Table, &v.RowID, &v.Parent, &v.FKID); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key check: %w", err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign key check: %w", err)
	}
	return violations, nil
}
