// Package db opens the SQLite database that backs the default function store.
package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open ensures the parent directory of dbPath exists, opens the SQLite
// database and creates the schema if it does not exist.
func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}

	if err := ApplyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// dsn builds a modernc.org/sqlite connection string. Foreign keys and the
// busy timeout are per-connection settings, so they ride on the DSN rather
// than a one-off PRAGMA.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(FULL)")
	return "file:" + path + "?" + q.Encode()
}
