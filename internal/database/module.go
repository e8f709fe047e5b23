package database

import (
	"context"
	_ "embed"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/liquidvex/market-core/internal/config"
)

//go:embed migrations/001_initial_schema.sql
var initialSchema string

// Module provides the audit store. When no connection string is configured
// the repository is nil and callers skip persistence.
var Module = fx.Module("database",
	fx.Provide(ProvideRepository),
	fx.Invoke(RunMigrations),
)

// ProvideRepository creates the repository from configuration
func ProvideRepository(cfg *config.Config, logger *zap.Logger) (*Repository, error) {
	if cfg.Database.ConnectionString == "" {
		logger.Warn("No database configured, audit persistence disabled")
		return nil, nil
	}

	repo, err := NewRepository(cfg.Database)
	if err != nil {
		return nil, err
	}

	logger.Info("Database connection established")
	return repo, nil
}

// RunMigrations applies the schema on startup
func RunMigrations(repo *Repository, logger *zap.Logger) error {
	if repo == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repo.RunMigrations(ctx, initialSchema); err != nil {
		return err
	}

	logger.Info("Database migrations applied")
	return nil
}
