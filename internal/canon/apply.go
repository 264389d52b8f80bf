package canon

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lherron/datasetprep/internal/db"
	"github.com/lherron/datasetprep/internal/domain"
)

// LinkTables associate categories with other id spaces through a
// category_id column. They are optional in source datasets.
var LinkTables = []string{
	domain.TableCategoryIAP,
	domain.TableCategoryUserGroup,
}

// Apply rewrites every remap of plan as one transaction: the category's own
// id, its children's parent, questions, then link tables. An empty plan is a
// no-op and opens no transaction.
//
// Before committing, declared foreign keys are checked; a rewrite that leaves
// any dangling reference the store did not already have is refused, even if
// it also repairs others.
// Any failure rolls back and is returned as *domain.TransactionError.
func Apply(database *db.DB, plan []domain.Remap) error {
	if len(plan) == 0 {
		return nil
	}

	statements, err := remapStatements(database)
	if err != nil {
		return &domain.TransactionError{Err: err}
	}

	err = database.WithTx(func(tx *sql.Tx) error {
		// A malformed FK declaration makes foreign_key_check itself fail;
		// such stores are rewritten without the dangling-reference guard.
		baseline, fkErr := db.ForeignKeyViolations(tx)
		checkFK := fkErr == nil

		for i := range plan {
			r := &plan[i]
			for _, stmt := range statements {
				if _, err := tx.Exec(stmt, r.NewID, r.OldID); err != nil {
					return &domain.TransactionError{Remap: r, Statement: stmt, Err: err}
				}
			}
		}

		if !checkFK {
			return nil
		}
		after, err := db.ForeignKeyViolations(tx)
		if err != nil {
			return &domain.TransactionError{Err: err}
		}
		if introduced := newViolations(baseline, after); len(introduced) > 0 {
			v := introduced[0]
			return &domain.TransactionError{
				Err: fmt.Errorf("remap would leave %d dangling foreign key reference(s), first in %s row %d to %s",
					len(introduced), v.Table, v.RowID.Int64, v.Parent),
			}
		}
		return nil
	})
	if err != nil {
		var txErr *domain.TransactionError
		if errors.As(err, &txErr) {
			return err
		}
		return &domain.TransactionError{Err: err}
	}
	return nil
}

// newViolations returns the rows of after not present in baseline. Rows are
// compared as a multiset so WITHOUT ROWID tables, whose rowid is NULL, still
// count each new violation.
func newViolations(baseline, after []db.ForeignKeyViolation) []db.ForeignKeyViolation {
	seen := make(map[db.ForeignKeyViolation]int, len(baseline))
	for _, v := range baseline {
		seen[v]++
	}
	var introduced []db.ForeignKeyViolation
	for _, v := range after {
		if seen[v] > 0 {
			seen[v]--
			continue
		}
		introduced = append(introduced, v)
	}
	return introduced
}

// remapStatements lists the rewrites in execution order, including only
// the link tables present in the store. Each takes (new id, old id).
func remapStatements(q db.Querier) ([]string, error) {
	statements := []string{
		"UPDATE categories SET id = ? WHERE id = ?",
		"UPDATE categories SET parent = ? WHERE parent = ?",
		"UPDATE questions SET category = ? WHERE category = ?",
	}
	for _, table := range LinkTables {
		ok, err := db.TableExists(q, table)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		statements = append(statements,
			fmt.Sprintf("UPDATE %s SET category_id = ? WHERE category_id = ?", db.QuoteIdent(table)))
	}
	return statements, nil
}
