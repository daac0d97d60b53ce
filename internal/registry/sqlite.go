package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// SQLiteStore keeps functions in the functions/function_commands tables.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore creates a Store using an already migrated db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts f and its commands in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, f Function) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = trx.Rollback() }()

	// the existence check happens inside the DB engine and avoids TOCTOU
	// races with other processes sharing the file
	created := time.Now().UTC()
	res, err := trx.ExecContext(ctx, `INSERT INTO functions (name, created_at)
			SELECT ?, ?
			WHERE NOT EXISTS(SELECT 1 FROM functions WHERE name = ?)`, f.Name, created.Format(time.RFC3339Nano), f.Name)
	if err != nil {
		return fmt.Errorf("insert function: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%q: %w", f.Name, ErrDuplicateName)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := insertCommandsTx(ctx, trx, id, f.Commands); err != nil {
		return err
	}
	return trx.Commit()
}

func insertCommandsTx(ctx context.Context, trx *sql.Tx, id int64, commands [][]string) error {
	for i, c := range commands {
		if c == nil {
			c = []string{}
		}
		b, err := json.Marshal(c)
		if err != nil {
			return err
		}
		if _, err := trx.ExecContext(ctx, "INSERT INTO function_commands (function_id, position, args) VALUES (?, ?, ?)", id, i, string(b)); err != nil {
			return fmt.Errorf("insert command: %w", err)
		}
	}
	return nil
}

// Get retrieves a function and its commands by name.
func (s *SQLiteStore) Get(ctx context.Context, name string) (Function, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id int64
	f := Function{Name: name}
	var created string
	row := s.db.QueryRowContext(ctx, "SELECT id, created_at FROM functions WHERE name = ?", name)
	if err := row.Scan(&id, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Function{}, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return Function{}, err
	}
	f.CreatedAt = parseTime(created)
	cmds, err := s.readCommands(ctx, id)
	if err != nil {
		return Function{}, err
	}
	f.Commands = cmds
	return f, nil
}

func (s *SQLiteStore) readCommands(ctx context.Context, id int64) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT args FROM function_commands WHERE function_id = ? ORDER BY position ASC", id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	cmds := [][]string{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var c []string
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode command of function %d: %w", id, err)
		}
		cmds = append(cmds, c)
	}
	return cmds, rows.Err()
}

// List returns all functions ordered by insertion.
func (s *SQLiteStore) List(ctx context.Context) ([]Function, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT f.id, f.name, f.created_at, c.args
		FROM functions f LEFT JOIN function_commands c ON c.function_id = f.id
		ORDER BY f.id ASC, c.position ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []Function{}
	lastID := int64(-1)
	for rows.Next() {
		var id int64
		var name, created string
		var raw sql.NullString
		if err := rows.Scan(&id, &name, &created, &raw); err != nil {
			return nil, err
		}
		if id != lastID {
			out = append(out, Function{Name: name, Commands: [][]string{}, CreatedAt: parseTime(created)})
			lastID = id
		}
		if !raw.Valid {
			continue
		}
		var c []string
		if err := json.Unmarshal([]byte(raw.String), &c); err != nil {
			return nil, fmt.Errorf("decode command of %q: %w", name, err)
		}
		cur := &out[len(out)-1]
		cur.Commands = append(cur.Commands, c)
	}
	return out, rows.Err()
}

// Delete removes a function and its commands by name.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = trx.Rollback() }()

	var id int64
	row := trx.QueryRowContext(ctx, "SELECT id FROM functions WHERE name = ?", name)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return err
	}
	if _, err := trx.ExecContext(ctx, "DELETE FROM function_commands WHERE function_id = ?", id); err != nil {
		return err
	}
	if _, err := trx.ExecContext(ctx, "DELETE FROM functions WHERE id = ?", id); err != nil {
		return err
	}
	return trx.Commit()
}

// Close closes the underlying DB connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
