package db

import (
	"database/sql"
	_ "embed"
	"fmt"

	// _ import for sqlite driver registration
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SchemaVersion is recorded in schema_meta after migrations run.
const SchemaVersion = "1"

// ApplyMigrations applies the embedded schema SQL to the database and
// performs lightweight post-creation migrations (adding new columns when needed).
func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if err := ensureFunctionColumns(db); err != nil {
		return err
	}
	if _, err := db.Exec(`INSERT INTO schema_meta (key, value) VALUES ('version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, SchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// ensureFunctionColumns adds columns introduced after the first release to
// databases created before them.
func ensureFunctionColumns(db *sql.DB) error {
	rows, err := db.Query("PRAGMA table_info(functions)")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dflt interface{}
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_ = rows.Close()
	if !cols["created_at"] {
		if _, err := db.Exec("ALTER TABLE functions ADD COLUMN created_at TEXT NOT NULL DEFAULT ''"); err != nil {
			return err
		}
	}
	return nil
}
