package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGConfig tunes the Postgres connection pool behind a PGStore.
type PGConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// PGStore persists the catalog in Postgres, for setups where several
// machines share one archive over a network mount.
type PGStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPGStore creates a pgx pool and ensures the catalog schema exists.
func OpenPGStore(ctx context.Context, cfg PGConfig, logger *slog.Logger) (*PGStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DSN == "" {
		return nil, errors.New("postgres DSN is required")
	}

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse postgres DSN", "error", err)
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "dokusort"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		return nil, err
	}

	s := &PGStore{pool: pool, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("catalog postgres store ready")
	return s, nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}

// Ping checks connectivity, for startup health checks.
func (s *PGStore) Ping(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.pool.Ping(ctx)
}

func (s *PGStore) ensureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog_correspondents (
		name TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS catalog_tags (
		name TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS catalog_aliases (
		key TEXT PRIMARY KEY,
		target TEXT NOT NULL
	);`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating catalog schema: %w", err)
	}
	return nil
}

func (s *PGStore) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Aliases: map[string]string{}}

	list := func(query string) ([]string, error) {
		rows, err := s.pool.Query(ctx, query)
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
	if snap.Correspondents, err = list("SELECT name FROM catalog_correspondents ORDER BY name"); err != nil {
		return Snapshot{}, fmt.Errorf("loading correspondents: %w", err)
	}
	if snap.Tags, err = list("SELECT name FROM catalog_tags ORDER BY name"); err != nil {
		return Snapshot{}, fmt.Errorf("loading tags: %w", err)
	}

	rows, err := s.pool.Query(ctx, "SELECT key, target FROM catalog_aliases")
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

func (s *PGStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"catalog_correspondents", "catalog_tags", "catalog_aliases"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	for _, name := range snap.Correspondents {
		if _, err := tx.Exec(ctx, "INSERT INTO catalog_correspondents(name) VALUES($1)", name); err != nil {
			return fmt.Errorf("saving correspondent: %w", err)
		}
	}
	for _, name := range snap.Tags {
		if _, err := tx.Exec(ctx, "INSERT INTO catalog_tags(name) VALUES($1)", name); err != nil {
			return fmt.Errorf("saving tag: %w", err)
		}
	}
	for k, v := range snap.Aliases {
		if _, err := tx.Exec(ctx, "INSERT INTO catalog_aliases(key, target) VALUES($1, $2)", k, v); err != nil {
			return fmt.Errorf("saving alias: %w", err)
		}
	}
	return tx.Commit(ctx)
}
