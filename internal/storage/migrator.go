package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"cabino/internal/storage/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

var (
	gooseOnce sync.Once
	gooseErr  error
)

// runGoose executes a goose command ("up", "down", "status") against the
// embedded migrations.
func runGoose(ctx context.Context, db *sql.DB, command string) error {
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)
		gooseErr = goose.SetDialect("postgres")
	})
	if gooseErr != nil {
		return fmt.Errorf("set dialect: %w", gooseErr)
	}
	return goose.RunContext(ctx, command, db, ".")
}

func RunMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	const operation = "storage.RunMigrations"

	logger.Info("Running database migrations...")
	if err := runGoose(ctx, db, "up"); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	logger.Info("Database migrations completed successfully")
	return nil
}

// RollbackMigration reverts the latest applied migration.
func RollbackMigration(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	const operation = "storage.RollbackMigration"

	logger.Info("Rolling back last migration...")
	if err := runGoose(ctx, db, "down"); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	logger.Info("Migration rollback completed")
	return nil
}

// MigrationStatus prints the applied and pending migrations through goose's
// logger.
func MigrationStatus(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	const operation = "storage.MigrationStatus"

	logger.Info("Checking migration status...")
	if err := runGoose(ctx, db, "status"); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}
