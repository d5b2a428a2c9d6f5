package main

import (
	"context"
	"fmt"
	"os"

	"cabino/internal/config"
	"cabino/internal/storage"
	"cabino/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply, roll back or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}

		dbCfg, err := config.LoadDatabase()
		if err != nil {
			return err
		}

		zapLogger, err := logger.New(os.Getenv("LOG_LEVEL"))
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		defer func() { _ = zapLogger.Sync() }()

		return migrate(cmd.Context(), dbCfg, direction, zapLogger)
	},
}

func migrate(ctx context.Context, dbCfg config.DatabaseConfig, direction string, log *zap.Logger) error {
	// migrations never touch the cache
	pgStorage, err := storage.NewPostgresStorage(ctx, dbCfg, nil, log)
	if err != nil {
		return fmt.Errorf("failed to init PostgreSQL storage: %w", err)
	}
	defer pgStorage.Close()

	switch direction {
	case "down":
		return storage.RollbackMigration(ctx, pgStorage.DB(), log)
	case "status":
		return storage.MigrationStatus(ctx, pgStorage.DB(), log)
	default:
		return storage.RunMigrations(ctx, pgStorage.DB(), log)
	}
}
