package testutil

import (
	_ "embed"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lherron/datasetprep/internal/db"
)

//go:embed schema.sql
var datasetSchema string

// Dataset is a temporary dataset database with the full source schema.
type Dataset struct {
	t    *testing.T
	DB   *db.DB
	Path string
}

// NewDataset creates an empty dataset database in a temp dir, using the
// default driver. It is closed when the test ends.
func NewDataset(t *testing.T) *Dataset {
	t.Helper()
	return NewDatasetWithDriver(t, db.DriverCGO)
}

// NewDatasetWithDriver is NewDataset with an explicit SQLite driver.
func NewDatasetWithDriver(t *testing.T, driver string) *Dataset {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dataset.sqlite")
	database, err := db.Open(path, driver)
	require.NoError(t, err, "open dataset")
	t.Cleanup(func() {
		database.Close()
	})

	_, err = database.Exec(datasetSchema)
	require.NoError(t, err, "create dataset schema")

	return &Dataset{t: t, DB: database, Path: path}
}

// Exec runs a statement and fails the test on error.
func (d *Dataset) Exec(query string, args ...any) {
	d.t.Helper()
	_, err := d.DB.Exec(query, args...)
	require.NoError(d.t, err, "exec %q", query)
}

// Category inserts a category row. parent, code and name may be nil for NULL.
func (d *Dataset) Category(id int64, parent, code, name any) {
	d.t.Helper()
	d.Exec("INSERT INTO categories (id, parent, code, name) VALUES (?, ?, ?, ?)", id, parent, code, name)
}

// Question inserts a question in the given category.
func (d *Dataset) Question(id, category int64) {
	d.t.Helper()
	d.Exec("INSERT INTO questions (id, category, text) VALUES (?, ?, ?)", id, category, "question")
}

// Link inserts a row into a category link table.
func (d *Dataset) Link(table string, categoryID int64, value any) {
	d.t.Helper()
	column := "iap"
	if table == "category_usergroup" {
		column = "usergroup"
	}
	d.Exec("INSERT INTO "+table+" (category_id, "+column+") VALUES (?, ?)", categoryID, value)
}

// Attachment inserts an attachment row; filename may be nil.
func (d *Dataset) Attachment(id int64, filename any) {
	d.t.Helper()
	d.Exec("INSERT INTO attachments (id, name, filename) VALUES (?, ?, ?)", id, "attachment", filename)
}

// CountWhere returns the number of rows in table matching where.
func (d *Dataset) CountWhere(table, where string, args ...any) int {
	d.t.Helper()
	var n int
	err := d.DB.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE "+where, args...).Scan(&n)
	require.NoError(d.t, err)
	return n
}

// WriteFile writes content to dir/name, creating parents.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// ReadFile reads a file and fails the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
