package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lherron/datasetprep/internal/domain"
)

// CategoryStore handles category reads.
type CategoryStore struct {
	store *Store
}

// TopLevel returns every root category in query order.
func (cs *CategoryStore) TopLevel() ([]domain.Category, error) {
	rows, err := cs.store.db.Query(`
		SELECT id, parent, code, name
		FROM categories
		WHERE ` + domain.TopLevelCondition)
	if err != nil {
		return nil, fmt.Errorf("failed to query top-level categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top-level categories: %w", err)
	}

	return categories, nil
}

// Get returns the category with the given id. found is false when no row
// holds that id.
func (cs *CategoryStore) Get(id int64) (c domain.Category, found bool, err error) {
	row := cs.store.db.QueryRow("SELECT id, parent, code, name FROM categories WHERE id = ?", id)
	c, err = scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, false, nil
	}
	if err != nil {
		return domain.Category{}, false, err
	}
	return c, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCategory reads id, parent, code, name. code is declared loosely in
// source datasets (text or integer), so it is read through NullString.
func scanCategory(row rowScanner) (domain.Category, error) {
	var (
		c      domain.Category
		parent sql.NullInt64
		code   sql.NullString
		name   sql.NullString
	)
	if err := row.Scan(&c.ID, &parent, &code, &name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("failed to scan category: %w", err)
	}
	if parent.Valid {
		p := parent.Int64
		c.Parent = &p
	}
	c.Code = code.String
	c.Name = name.String
	return c, nil
}
