package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names registered by the two SQLite drivers.
const (
	DriverCGO  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
	path   string
	driver string
}

// Open opens a dataset SQLite database at the given path and applies pragmas.
// An empty driver selects DriverCGO.
func Open(path, driver string) (*DB, error) {
	if driver == "" {
		driver = DriverCGO
	}
	if err := ValidateDriver(driver); err != nil {
		return nil, err
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas are per connection; keep a single one so they stick.
	db.SetMaxOpenConns(1)

	// Foreign keys stay unenforced: source datasets declare them loosely.
	// The output file ships as a read-only app resource, so no WAL sidecars.
	pragmas := []string{
		"PRAGMA foreign_keys = OFF",
		"PRAGMA journal_mode = DELETE",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return &DB{DB: db, path: path, driver: driver}, nil
}

// OpenReadOnly opens an existing database without the ability to write it.
// Nothing is created: a missing file is an error, and the journal mode of
// the store is left as found.
func OpenReadOnly(path, driver string) (*DB, error) {
	if driver == "" {
		driver = DriverCGO
	}
	if err := ValidateDriver(driver); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("db not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("db is a directory: %s", path)
	}

	db, err := sql.Open(driver, readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA foreign_keys = OFF", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return &DB{DB: db, path: path, driver: driver}, nil
}

// readOnlyDSN builds a SQLite URI filename with mode=ro. Both drivers accept
// the file: form.
func readOnlyDSN(path string) string {
	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(filepath.ToSlash(path))
	return "file:" + escaped + "?mode=ro"
}

// ValidateDriver reports whether name is one of the supported SQLite drivers.
func ValidateDriver(name string) error {
	switch name {
	case DriverCGO, DriverPure:
		return nil
	default:
		return fmt.Errorf("invalid sqlite driver %q: must be one of: %s, %s", name, DriverCGO, DriverPure)
	}
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Driver returns the name of the driver backing this connection.
func (db *DB) Driver() string {
	return db.driver
}

// WithTx executes fn within a transaction. If fn returns nil, the transaction
// is committed; otherwise it is rolled back and fn's error is returned as is.
func (db *DB) WithTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
