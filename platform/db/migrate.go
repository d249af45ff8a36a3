package db

import (
	"context"
	"database/sql"
	"fmt"

	"sales_visits_backend/migrations"
	"sales_visits_backend/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// OpenSQL opens a database/sql handle backed by the pgx driver. goose needs it.
func OpenSQL(cfg config.DatabaseConfig) (*sql.DB, error) {
	return sql.Open("pgx", cfg.GetDatabaseURL())
}

func prepareGoose() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("postgres")
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(ctx context.Context, cfg config.DatabaseConfig) error {
	sqlDB, err := OpenSQL(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(ctx context.Context, cfg config.DatabaseConfig) error {
	sqlDB, err := OpenSQL(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.DownContext(ctx, sqlDB, ".")
}

// MigrationStatus prints the applied/pending state of every migration through goose's logger.
func MigrationStatus(ctx context.Context, cfg config.DatabaseConfig) error {
	sqlDB, err := OpenSQL(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, sqlDB, ".")
}
