package domain

import (
	"fmt"
	"strings"
)

// SchemaError is returned when a required table or column is absent.
// Columns is empty when the whole table is missing.
type SchemaError struct {
	Table   string
	Columns []string
}

func (e *SchemaError) Error() string {
	if len(e.Columns) == 0 {
		return fmt.Sprintf("missing table: %s", e.Table)
	}
	return fmt.Sprintf("table %s missing required columns: %s", e.Table, strings.Join(e.Columns, ", "))
}

// RemapCollisionError is returned when a canonical target id is already held
// by a different category row.
type RemapCollisionError struct {
	Code  string
	OldID int64
	NewID int64
	// OccupantID is the id of the row standing in the way. It differs from
	// NewID only when the target was claimed earlier in the same plan.
	OccupantID int64
}

func (e *RemapCollisionError) Error() string {
	if e.OccupantID != 0 && e.OccupantID != e.NewID {
		return fmt.Sprintf("cannot remap top-level category code %s from %d to %d: target ID already claimed by category %d",
			e.Code, e.OldID, e.NewID, e.OccupantID)
	}
	return fmt.Sprintf("cannot remap top-level category code %s from %d to %d: target ID occupied", e.Code, e.OldID, e.NewID)
}

// TransactionError wraps a store failure raised while applying a remap plan.
// The transaction has been rolled back when this error is returned.
type TransactionError struct {
	Remap     *Remap // remap being applied when the failure happened, nil if none
	Statement string // statement that failed, empty for begin/commit failures
	Err       error
}

func (e *TransactionError) Error() string {
	if e.Remap != nil {
		return fmt.Sprintf("remap %d -> %d (code %s) rolled back: %v", e.Remap.OldID, e.Remap.NewID, e.Remap.Code, e.Err)
	}
	return fmt.Sprintf("remap transaction failed: %v", e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
