package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/tamildecl/internal"
)

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	id         TEXT PRIMARY KEY,
	query      TEXT NOT NULL,
	output     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	hits       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS translations_created_at ON translations (created_at);
`

// Record is one persisted translation
type Record struct {
	ID        string
	Query     string
	Output    string
	CreatedAt time.Time
	Hits      int
}

// Store persists translations in SQLite
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the history database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Get returns the stored output for query and counts the hit
func (s *Store) Get(ctx context.Context, query string) (string, bool, error) {
	id := internal.QueryID(query)

	var stored, output string
	err := s.db.QueryRowContext(ctx,
		`SELECT query, output FROM translations WHERE id = ?`, id).Scan(&stored, &output)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read history: %w", err)
	}
	// ids are truncated hashes, so confirm the exact query
	if stored != query {
		return "", false, nil
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE translations SET hits = hits + 1 WHERE id = ?`, id); err != nil {
		return "", false, fmt.Errorf("failed to update history hits: %w", err)
	}

	return output, true, nil
}

// Put stores or replaces the output for query
func (s *Store) Put(ctx context.Context, query, output string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO translations (id, query, output, created_at, hits) VALUES (?, ?, ?, ?, 0)
ON CONFLICT(id) DO UPDATE SET query = excluded.query, output = excluded.output, created_at = excluded.created_at`,
		internal.QueryID(query), query, output, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, query, output, created_at, hits FROM translations
ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Query, &r.Output, &r.CreatedAt, &r.Hits); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
