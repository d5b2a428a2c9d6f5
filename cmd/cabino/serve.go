package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cabino/internal/bot"
	"cabino/internal/bot/state_manager"
	"cabino/internal/config"
	"cabino/internal/estimator"
	"cabino/internal/httpapi"
	"cabino/internal/stats"
	"cabino/internal/storage"
	stateredis "cabino/internal/storage/redis"
	"cabino/pkg/api"
	"cabino/pkg/logger"
	"cabino/pkg/redis"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, when TELEGRAM_TOKEN is set, the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		zapLogger, err := logger.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		defer func() { _ = zapLogger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, zapLogger)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) (err error) {
	redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if err := redisClient.Ping(ctx); err != nil {
		_ = redisClient.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, redisClient, log)
	if err != nil {
		_ = redisClient.Close()
		return fmt.Errorf("failed to init PostgreSQL storage: %w", err)
	}
	defer func() {
		err = multierr.Combine(err, pgStorage.Close(), redisClient.Close())
	}()

	if err := storage.RunMigrations(ctx, pgStorage.DB(), log); err != nil {
		return err
	}

	est, err := estimator.New(estimator.Pricing{BasePricePerSqm: cfg.Pricing.BasePricePerSqm})
	if err != nil {
		return err
	}

	statsService := stats.New(cfg.Stats, pgStorage, log)
	crmClient := api.NewClient(cfg.CRM.BaseURL, cfg.CRM.APIKey, cfg.CRM.Timeout, log)

	handler := httpapi.NewHandler(est, pgStorage, pgStorage, statsService, pgStorage, cfg.CRM.APIKey, log)
	server := httpapi.NewServer(cfg.HTTP, handler, log)

	var newBot func() (service, error)
	if cfg.Telegram.Token != "" {
		newBot = func() (service, error) {
			stateManager := state_manager.New(stateredis.New(redisClient))
			tgBot, err := bot.New(cfg, stateManager, pgStorage, est, statsService, crmClient, log)
			if err != nil {
				return nil, err
			}
			return tgBot.Start, nil
		}
	} else {
		log.Info("TELEGRAM_TOKEN is not set, the bot is disabled")
	}

	if err := runServices(ctx, server.Run, newBot); err != nil {
		return err
	}

	log.Info("Shutdown complete")
	return nil
}

type service func(ctx context.Context) error

// runServices creates the bot, when newBot is set, before starting
// anything, then runs it next to the HTTP server until one of them fails
// or ctx is done.
func runServices(ctx context.Context, server service, newBot func() (service, error)) error {
	var botService service
	if newBot != nil {
		s, err := newBot()
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
		botService = s
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server(ctx)
	})
	if botService != nil {
		g.Go(func() error {
			return botService(ctx)
		})
	}
	return g.Wait()
}
