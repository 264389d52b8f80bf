// Package schema checks that a dataset database exposes the tables and
// columns the importing application reads.
package schema

import (
	"sort"

	"github.com/lherron/datasetprep/internal/db"
	"github.com/lherron/datasetprep/internal/domain"
)

// Requirement names a table and the columns it must carry.
type Requirement struct {
	Table   string
	Columns []string
}

// Required is the dataset shape, checked in this order.
var Required = []Requirement{
	{
		Table: domain.TableQuestions,
		Columns: []string{
			"id", "category", "code", "text", "correct",
			"incorrect0", "incorrect1", "incorrect2",
			"explanation", "reference", "attachments", "mockonly",
		},
	},
	{
		Table: domain.TableCategories,
		Columns: []string{
			"id", "parent", "quantityinmock", "code", "name",
			"categorygroup", "sortorder", "locked",
		},
	},
	{
		Table:   domain.TableAttachments,
		Columns: []string{"id", "name", "filename", "explanation"},
	},
	{
		Table:   domain.TableCategoryGroups,
		Columns: []string{"id", "name"},
	},
}

// Validate checks reqs in order and returns a *domain.SchemaError for the
// first table that is missing or lacks columns. Missing columns are sorted.
func Validate(q db.Querier, reqs []Requirement) error {
	for _, req := range reqs {
		existing, err := db.TableColumns(q, req.Table)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			return &domain.SchemaError{Table: req.Table}
		}

		if missing := missingColumns(req.Columns, existing); len(missing) > 0 {
			return &domain.SchemaError{Table: req.Table, Columns: missing}
		}
	}
	return nil
}

func missingColumns(required, existing []string) []string {
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c] = true
	}

	var missing []string
	for _, c := range required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}
