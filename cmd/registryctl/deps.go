package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"memorial-registry/internal/app"
	"memorial-registry/internal/config"
	"memorial-registry/pkg/logger"
	"memorial-registry/pkg/utils"
)

// deps is what a command needs from the environment.
type deps struct {
	cfg config.Config
	db  *sql.DB
	app *app.App
	log *slog.Logger
}

// withDeps loads config, opens Postgres and builds the services, then calls
// fn. The store is closed when fn returns.
func withDeps(ctx context.Context, fn func(ctx context.Context, d *deps) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return fmt.Errorf("registryctl needs STORAGE_DRIVER=%s, got %q", config.StorageDriverPostgres, cfg.Storage.Driver)
	}

	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 4})
	if err != nil {
		return fmt.Errorf("opening postgres: %w", err)
	}
	defer db.Close()

	services, err := app.New(cfg, db)
	if err != nil {
		return err
	}
	log := logger.New(cfg.App.Env).With("component", "registryctl")
	return fn(logger.With(ctx, log), &deps{cfg: cfg, db: db, app: services, log: log})
}
