package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// SQLiteStore persists the catalog in a SQLite database. Each Save swaps
// the full snapshot inside one transaction; the catalog is small enough
// that rewriting it wholesale stays well under a millisecond.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS correspondents (
		name TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS tags (
		name TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS aliases (
		key TEXT PRIMARY KEY,
		target TEXT NOT NULL
	);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Aliases: map[string]string{}}

	list := func(query string) ([]string, error) {
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var out []string
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, rows.Err()
	}

	var err error
	if snap.Correspondents, err = list("SELECT name FROM correspondents ORDER BY name"); err != nil {
		return Snapshot{}, fmt.Errorf("loading correspondents: %w", err)
	}
	if snap.Tags, err = list("SELECT name FROM tags ORDER BY name"); err != nil {
		return Snapshot{}, fmt.Errorf("loading tags: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key, target FROM aliases")
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading aliases: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Snapshot{}, fmt.Errorf("scanning alias: %w", err)
		}
		snap.Aliases[k] = v
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("loading aliases: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"correspondents", "tags", "aliases"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	for _, name := range snap.Correspondents {
		if _, err := tx.ExecContext(ctx, "INSERT INTO correspondents(name) VALUES(?)", name); err != nil {
			return fmt.Errorf("saving correspondent: %w", err)
		}
	}
	for _, name := range snap.Tags {
		if _, err := tx.ExecContext(ctx, "INSERT INTO tags(name) VALUES(?)", name); err != nil {
			return fmt.Errorf("saving tag: %w", err)
		}
	}
	for k, v := range snap.Aliases {
		if _, err := tx.ExecContext(ctx, "INSERT INTO aliases(key, target) VALUES(?, ?)", k, v); err != nil {
			return fmt.Errorf("saving alias: %w", err)
		}
	}
	return tx.Commit()
}
