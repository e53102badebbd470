package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/rsonderegger/dokusort/internal/common"
)

// OpenStore builds the store the configured backend names. The returned
// func releases backend resources; for the file backend it is a no-op.
func OpenStore(ctx context.Context, cfg common.CatalogConfig, logger *slog.Logger) (Store, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case "file":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(".", "catalog.json")
		}
		st, err := NewFileStore(path)
		return st, noop, err
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(".", "catalog.db")
		}
		st, err := NewSQLiteStore(ctx, path)
		if err != nil {
			return nil, noop, err
		}
		return st, func() { _ = st.Close() }, nil
	case "postgres":
		st, err := OpenPGStore(ctx, PGConfig{
			DSN:             cfg.DSN,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
			DialTimeout:     cfg.DialTimeout,
		}, logger)
		if err != nil {
			return nil, noop, err
		}
		if err := st.Ping(ctx, cfg.DialTimeout); err != nil {
			st.Close()
			return nil, noop, err
		}
		return st, st.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown catalog backend %q", cfg.Backend)
	}
}
