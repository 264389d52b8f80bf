package store

import (
	"database/sql"
	"fmt"
)

// AttachmentStore handles attachment metadata reads.
type AttachmentStore struct {
	store *Store
}

// Filenames returns the filename column of every attachment row, in rowid
// order. NULL filenames read as "".
func (as *AttachmentStore) Filenames() ([]string, error) {
	rows, err := as.store.db.Query("SELECT filename FROM attachments ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan attachment filename: %w", err)
		}
		names = append(names, name.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}
	return names, nil
}
