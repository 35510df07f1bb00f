package storage

import (
	"context"
	"fmt"

	"github.com/claude/ironlog/internal/config"
)

// Open connects to the configured backend. Postgres migrations are applied
// first; the SQLite schema is created on open.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return OpenLocal(cfg.Path)
	case config.DriverPostgres, "":
		dsn := cfg.DSN()
		if _, err := RunMigrations(dsn, cfg.Migrations); err != nil {
			return nil, err
		}
		return New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
