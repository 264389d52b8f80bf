package domain

// Table names of the dataset schema.
const (
	TableQuestions         = "questions"
	TableCategories        = "categories"
	TableAttachments       = "attachments"
	TableCategoryGroups    = "category_groups"
	TableCategoryIAP       = "category_iap"
	TableCategoryUserGroup = "category_usergroup"
)

// Category represents a row of the categories table. Only the fields the
// preparation touches are carried; sort order, lock flag, group and mock
// quantity stay in the database.
type Category struct {
	ID     int64  `json:"id" db:"id"`
	Parent *int64 `json:"parent,omitempty" db:"parent"` // nil or 0 means top-level
	Code   string `json:"code" db:"code"`               // null in the source reads as ""
	Name   string `json:"name" db:"name"`               // null in the source reads as ""
}

// IsTopLevel reports whether a parent reference denotes a root category.
// Source datasets use both NULL and 0 for "no parent".
func IsTopLevel(parent *int64) bool {
	return parent == nil || *parent == 0
}

// TopLevelCondition is the SQL form of IsTopLevel for the categories table.
const TopLevelCondition = "(parent IS NULL OR parent = 0)"

// Remap is one planned rewrite of a top-level category identifier.
type Remap struct {
	OldID int64  `json:"old_id" yaml:"old_id"`
	NewID int64  `json:"new_id" yaml:"new_id"`
	Code  string `json:"code" yaml:"code"`
	Name  string `json:"name" yaml:"name"`
}
