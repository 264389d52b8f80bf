package canon

import (
	"fmt"

	"github.com/lherron/datasetprep/internal/domain"
)

// CategoryReader is the read access planning needs. *store.CategoryStore
// satisfies it.
type CategoryReader interface {
	TopLevel() ([]domain.Category, error)
	Get(id int64) (domain.Category, bool, error)
}

// slot classifies who holds a target id.
type slot int

const (
	slotFree  slot = iota // no row has the id
	slotSelf              // the row being renamed already has it
	slotTaken             // a different row has it
)

// Plan computes the remaps needed to bring every top-level category whose
// code is in table to its canonical id. It only reads. The result keeps the
// order of the top-level query.
//
// A target held by another row, or claimed by an earlier remap of the same
// plan, fails with *domain.RemapCollisionError and no plan is returned.
func Plan(table *Table, categories CategoryReader) ([]domain.Remap, error) {
	top, err := categories.TopLevel()
	if err != nil {
		return nil, err
	}

	remaps := []domain.Remap{}
	claimed := make(map[int64]int64) // target id -> source id
	for _, c := range top {
		target, ok := table.Lookup(c.Code)
		if !ok || c.ID == target {
			continue
		}

		if source, dup := claimed[target]; dup {
			return nil, &domain.RemapCollisionError{Code: c.Code, OldID: c.ID, NewID: target, OccupantID: source}
		}

		s, err := classify(categories, target, c.ID)
		if err != nil {
			return nil, err
		}
		switch s {
		case slotTaken:
			return nil, &domain.RemapCollisionError{Code: c.Code, OldID: c.ID, NewID: target, OccupantID: target}
		case slotSelf:
			// Filtered above; an id cannot be both old and new.
			continue
		}

		claimed[target] = c.ID
		remaps = append(remaps, domain.Remap{
			OldID: c.ID,
			NewID: target,
			Code:  c.Code,
			Name:  c.Name,
		})
	}

	return remaps, nil
}

func classify(categories CategoryReader, target, source int64) (slot, error) {
	occupant, found, err := categories.Get(target)
	if err != nil {
		return slotFree, fmt.Errorf("failed to check occupancy of category %d: %w", target, err)
	}
	switch {
	case !found:
		return slotFree, nil
	case occupant.ID == source:
		return slotSelf, nil
	default:
		return slotTaken, nil
	}
}
