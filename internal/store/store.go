// Package store provides read access to the dataset tables the preparation
// inspects: categories, attachments and row counts.
package store

import (
	"github.com/lherron/datasetprep/internal/db"
	"github.com/lherron/datasetprep/internal/domain"
)

// CountedTables are the tables reported in Counts, in report order.
var CountedTables = []string{
	domain.TableQuestions,
	domain.TableCategories,
	domain.TableAttachments,
	domain.TableCategoryGroups,
}

// Store is the root store that provides access to table-specific stores.
type Store struct {
	db *db.DB

	Categories  *CategoryStore
	Attachments *AttachmentStore
}

// New creates a new Store wrapping the given database connection.
func New(database *db.DB) *Store {
	s := &Store{db: database}
	s.Categories = &CategoryStore{store: s}
	s.Attachments = &AttachmentStore{store: s}
	return s
}

// DB returns the underlying database connection.
func (s *Store) DB() *db.DB {
	return s.db
}

// Count is a row count for one table.
type Count struct {
	Table string
	Rows  int
}

// Counts returns row counts for CountedTables, in order.
func (s *Store) Counts() ([]Count, error) {
	counts := make([]Count, 0, len(CountedTables))
	for _, table := range CountedTables {
		n, err := db.CountRows(s.db, table)
		if err != nil {
			return nil, err
		}
		counts = append(counts, Count{Table: table, Rows: n})
	}
	return counts, nil
}
