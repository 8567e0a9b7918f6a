package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vango-dev/vroute/pkg/routepath"
)

// timeLayout is fixed width so updated_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite is a history.Store backed by a SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; SQLite serializes anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("history store opened", "path", path)
	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the stack saved under key. ok is false if there is none.
func (s *SQLite) Load(ctx context.Context, key string) ([]routepath.Location, int, bool, error) {
	var cursor int
	err := s.db.QueryRowContext(ctx,
		`SELECT cursor FROM history_stacks WHERE key = ?`, key).Scan(&cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("load stack %q: %w", key, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT href FROM history_entries WHERE key = ? ORDER BY pos`, key)
	if err != nil {
		return nil, 0, false, fmt.Errorf("load entries %q: %w", key, err)
	}
	defer rows.Close()

	var entries []routepath.Location
	for rows.Next() {
		var href string
		if err := rows.Scan(&href); err != nil {
			return nil, 0, false, fmt.Errorf("scan entry: %w", err)
		}
		loc, err := routepath.ParseLocation(href)
		if err != nil {
			return nil, 0, false, fmt.Errorf("entry %q: %w", href, err)
		}
		entries = append(entries, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, false, fmt.Errorf("load entries %q: %w", key, err)
	}
	return entries, cursor, true, nil
}

// Save replaces the stack saved under key.
func (s *SQLite) Save(ctx context.Context, key string, entries []routepath.Location, index int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(timeLayout)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history_stacks (key, cursor, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET cursor = excluded.cursor, updated_at = excluded.updated_at`,
		key, index, now); err != nil {
		return fmt.Errorf("save stack %q: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("clear entries %q: %w", key, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO history_entries (key, pos, href) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()
	for i, loc := range entries {
		if _, err := stmt.ExecContext(ctx, key, i, loc.String()); err != nil {
			return fmt.Errorf("save entry %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Keys lists every saved stack, most recently updated first.
func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM history_stacks ORDER BY updated_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Delete removes the stack saved under key.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete entries %q: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM history_stacks WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete stack %q: %w", key, err)
	}
	return tx.Commit()
}
