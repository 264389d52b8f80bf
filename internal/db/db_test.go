package db_test

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/datasetprep/internal/db"
)

func openTemp(t *testing.T, driver string) *db.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "test.sqlite")
	database, err := db.Open(path, driver)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestOpenBothDrivers(t *testing.T) {
	for _, driver := range []string{db.DriverCGO, db.DriverPure} {
		t.Run(driver, func(t *testing.T) {
			database := openTemp(t, driver)
			assert.Equal(t, driver, database.Driver())

			_, err := os.Stat(filepath.Dir(database.Path()))
			assert.NoError(t, err, "parent directory should be created")

			var mode string
			require.NoError(t, database.QueryRow("PRAGMA journal_mode").Scan(&mode))
			assert.Equal(t, "delete", mode)
		})
	}
}

func TestOpenDefaultsToCGODriver(t *testing.T) {
	database := openTemp(t, "")
	assert.Equal(t, db.DriverCGO, database.Driver())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := db.Open(filepath.Join(t.TempDir(), "x.sqlite"), "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sqlite driver")
}

func TestOpenReadOnly(t *testing.T) {
	for _, driver := range []string{db.DriverCGO, db.DriverPure} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data #1?.sqlite")
			writable, err := db.Open(path, driver)
			require.NoError(t, err)
			_, err = writable.Exec("CREATE TABLE items (id INTEGER PRIMARY KEY); INSERT INTO items (id) VALUES (1)")
			require.NoError(t, err)
			require.NoError(t, writable.Close())

			before, err := os.ReadFile(path)
			require.NoError(t, err)

			database, err := db.OpenReadOnly(path, driver)
			require.NoError(t, err)
			defer database.Close()

			n, err := db.CountRows(database, "items")
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			_, err = database.Exec("INSERT INTO items (id) VALUES (2)")
			assert.Error(t, err, "read-only store must reject writes")

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "typo.sqlite")

	_, err := db.OpenReadOnly(path, db.DriverCGO)
	require.Error(t, err)
	assert.Equal(t, "db not found: "+path, err.Error())

	_, err = os.Stat(filepath.Join(dir, "nested"))
	assert.True(t, os.IsNotExist(err), "no directories may be created")
}

func TestTableColumnsAndExists(t *testing.T) {
	database := openTemp(t, db.DriverCGO)
	_, err := database.Exec(`CREATE TABLE "odd name" (id INTEGER PRIMARY KEY, label TEXT, weight REAL DEFAULT 1.5)`)
	require.NoError(t, err)

	columns, err := db.TableColumns(database, "odd name")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "label", "weight"}, columns)

	columns, err = db.TableColumns(database, "absent")
	require.NoError(t, err)
	assert.Empty(t, columns)

	ok, err := db.TableExists(database, "odd name")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.TableExists(database, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCountRowsAndForeignKeyViolations(t *testing.T) {
	database := openTemp(t, db.DriverCGO)
	_, err := database.Exec(`
		CREATE TABLE parents (id INTEGER PRIMARY KEY);
		CREATE TABLE children (id INTEGER PRIMARY KEY, parent INTEGER REFERENCES parents(id));
		INSERT INTO parents (id) VALUES (1);
		INSERT INTO children (id, parent) VALUES (1, 1), (2, 9), (3, 8);
	`)
	require.NoError(t, err)

	n, err := db.CountRows(database, "children")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	violations, err := db.ForeignKeyViolations(database)
	require.NoError(t, err)
	require.Len(t, violations, 2)
	for _, v := range violations {
		assert.Equal(t, "children", v.Table)
		assert.Equal(t, "parents", v.Parent)
		assert.True(t, v.RowID.Valid)
	}
	assert.ElementsMatch(t, []int64{2, 3}, []int64{violations[0].RowID.Int64, violations[1].RowID.Int64})
}

func TestWithTx(t *testing.T) {
	database := openTemp(t, db.DriverCGO)
	_, err := database.Exec("CREATE TABLE items (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = database.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO items (id) VALUES (1)"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := db.CountRows(database, "items")
	require.NoError(t, err)
	assert.Zero(t, n, "failed transaction must roll back")

	require.NoError(t, database.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO items (id) VALUES (2)")
		return err
	}))
	n, err = db.CountRows(database, "items")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"questions"`, db.QuoteIdent("questions"))
	assert.Equal(t, `"a""b"`, db.QuoteIdent(`a"b`))
}
