package initializer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/amirasaad/iebank/infra"
	infra_repository "github.com/amirasaad/iebank/infra/repository"
	"github.com/amirasaad/iebank/infra/repository/memory"
	"github.com/amirasaad/iebank/pkg/app"
	"github.com/amirasaad/iebank/pkg/config"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const migrationTimeout = time.Minute

// InitializeDependencies builds the logger and the unit of work selected by
// cfg.DB.Driver. The returned cleanup closes the database pool.
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	cleanup func() error,
	err error,
) {
	logger := newLogger(cfg.Log, os.Stdout)
	deps = &app.Deps{Logger: logger}
	cleanup = func() error { return nil }

	switch cfg.DB.Driver {
	case DriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		deps.Uow = memory.NewUoW(memory.NewStore())
	case DriverPostgres:
		db, err := OpenDatabase(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		deps.Uow = infra_repository.NewUoW(db)
		cleanup = func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.DB.Driver)
	}
	return deps, cleanup, nil
}

// OpenDatabase connects to Postgres and applies migrations when enabled.
func OpenDatabase(cfg *config.App, logger *slog.Logger) (*gorm.DB, error) {
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	if !cfg.DB.AutoMigrate {
		return db, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()
	if err := infra.RunMigrations(ctx, db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Database migrations applied")
	return db, nil
}
