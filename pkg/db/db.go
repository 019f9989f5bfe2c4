// Package db keeps the publication ledger: one row per promoted collection
// file plus the digest of every record it contained. The ledger lets
// operators see when each key last changed without keeping old files around.
package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS publications (
	id           TEXT PRIMARY KEY,
	published_at TIMESTAMP NOT NULL,
	kind         TEXT NOT NULL,
	path         TEXT NOT NULL,
	record_count INTEGER NOT NULL,
	digest       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_publications_path ON publications(path, published_at);
CREATE TABLE IF NOT EXISTS published_records (
	publication_id TEXT NOT NULL REFERENCES publications(id) ON DELETE CASCADE,
	key            TEXT NOT NULL,
	digest         TEXT NOT NULL,
	PRIMARY KEY (publication_id, key)
);
`

// InitDB runs migrations on the given DB connection.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Open opens (creating if needed) the ledger database at path and migrates
// it. sqlite allows one writer, so the pool is limited to one connection.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1)
	if err := InitDB(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}
