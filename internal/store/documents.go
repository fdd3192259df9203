package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Document is one row in the watched-file index.
type Document struct {
	Path        string
	ContentHash string
	ModifiedAt  int64
	SourceClass string
	SeenAt      int64
}

// UpsertDocument records (or refreshes) a watched file's content hash.
func (db *DB) UpsertDocument(path, hash, sourceClass string, modifiedAt time.Time) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO documents (path, content_hash, modified_at, source_class, seen_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			modified_at  = excluded.modified_at,
			source_class = excluded.source_class,
			seen_at      = excluded.seen_at
	`, path, hash, modifiedAt.UnixMilli(), sourceClass, now)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", path, err)
	}
	return nil
}

// GetDocument returns the indexed row for a path, or nil when absent.
func (db *DB) GetDocument(path string) (*Document, error) {
	var d Document
	err := db.QueryRow(`
		SELECT path, content_hash, modified_at, source_class, seen_at
		FROM documents WHERE path = ?
	`, path).Scan(&d.Path, &d.ContentHash, &d.ModifiedAt, &d.SourceClass, &d.SeenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", path, err)
	}
	return &d, nil
}

// DeleteDocument drops a path from the index.
func (db *DB) DeleteDocument(path string) error {
	if _, err := db.Exec("DELETE FROM documents WHERE path = ?", path); err != nil {
		return fmt.Errorf("delete document %s: %w", path, err)
	}
	return nil
}

// ListDocuments returns every indexed row, most recently seen first.
func (db *DB) ListDocuments() ([]Document, error) {
	rows, err := db.Query(`
		SELECT path, content_hash, modified_at, source_class, seen_at
		FROM documents ORDER BY seen_at DESC, path
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Path, &d.ContentHash, &d.ModifiedAt, &d.SourceClass, &d.SeenAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
