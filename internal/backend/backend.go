// Package backend opens the configured service.Store.
package backend

import (
	"context"
	"fmt"

	"todoboard/internal/backend/googletasks"
	"todoboard/internal/backend/sqlstore"
	"todoboard/internal/config"
	"todoboard/internal/service"
)

// Open returns the store selected by cfg.Backend. The caller closes
// stores that implement io.Closer.
func Open(ctx context.Context, cfg *config.Config) (service.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		return sqlstore.OpenSQLite(cfg.SQLitePath())
	case config.BackendPostgres:
		return sqlstore.OpenPostgres(ctx, cfg.Postgres.DSN)
	case config.BackendGoogleTasks:
		return googletasks.New(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
