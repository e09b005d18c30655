package storage

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/Dang-Huynh/FoodOrderingService/internal/config"
	"github.com/Dang-Huynh/FoodOrderingService/internal/database"
	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/migrations"
)

// Open builds the store selected by cfg.Storage.Driver
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return NewMemory(), nil
	case "file":
		return OpenFile(cfg.Storage.Path)
	case "sqlite":
		return OpenSQLite(cfg.Storage.Path)
	case "postgres":
		db, err := database.New(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgres(db), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Storage.Driver)
	}
}

type migrator interface {
	RunMigrations(ctx context.Context, fsys fs.FS) error
}

// migrate makes sure the kv_store table exists before the store is used
func migrate(ctx context.Context, m migrator) error {
	if err := m.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
