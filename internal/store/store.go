// Package store persists divination records, user profiles and knowledge
// snippets in a single SQLite database. Persistence is best-effort from the
// pipeline's point of view; durability guarantees stay at SQLite defaults.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"liuren/internal/logging"
)

// DB wraps the shared SQLite handle. One DB serves all stores.
type DB struct {
	handle *sql.DB
}

// Open opens (or creates) the database at path and applies the schema. Use
// ":memory:" for tests.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty database path")
	}

	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	// SQLite serves one writer at a time; a single pooled connection avoids
	// lock contention and keeps :memory: databases coherent.
	handle.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := handle.Exec(p); err != nil {
			handle.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}

	db := &DB{handle: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}

	logging.Store("database opened at %s", path)
	return db, nil
}

func (db *DB) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	number1 INTEGER NOT NULL,
	number2 INTEGER NOT NULL,
	gender TEXT NOT NULL DEFAULT '',
	question_type TEXT NOT NULL DEFAULT '',
	ask_time TIMESTAMP NOT NULL,
	luogong INTEGER NOT NULL,
	palace TEXT NOT NULL,
	favorable INTEGER NOT NULL DEFAULT 0,
	summary TEXT NOT NULL DEFAULT '',
	reply TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_records_user ON records(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS profiles (
	user_id TEXT PRIMARY KEY,
	gender TEXT NOT NULL DEFAULT '',
	birth_year INTEGER NOT NULL DEFAULT 0,
	preferences TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS snippets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	topic TEXT NOT NULL,
	keywords TEXT NOT NULL,
	content TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snippets_topic ON snippets(topic);
`
	if _, err := db.handle.Exec(schema); err != nil {
		return fmt.Errorf("store: apply schema: %w", err)
	}
	return nil
}

// Handle exposes the raw database for collaborators that run their own
// queries, such as the snippet searcher.
func (db *DB) Handle() *sql.DB {
	return db.handle
}

// Close closes the underlying database.
func (db *DB) Close() error {
	return db.handle.Close()
}

// SeedSnippets inserts knowledge snippets, replacing the existing corpus.
func (db *DB) SeedSnippets(ctx context.Context, snippets []Snippet) error {
	tx, err := db.handle.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM snippets"); err != nil {
		return fmt.Errorf("store: clear snippets: %w", err)
	}
	for _, s := range snippets {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO snippets (topic, keywords, content) VALUES (?, ?, ?)",
			s.Topic, s.Keywords, s.Content)
		if err != nil {
			return fmt.Errorf("store: insert snippet: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit seed: %w", err)
	}

	logging.Store("seeded %d snippets", len(snippets))
	return nil
}

// Snippet is one knowledge passage the retrieval layer searches over.
type Snippet struct {
	ID       int64
	Topic    string
	Keywords string
	Content  string
}
