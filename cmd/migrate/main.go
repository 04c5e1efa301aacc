// cmd/migrate/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/mailmerge-backend/internal/config"
	"github.com/unclebandit/mailmerge-backend/internal/db"
	"github.com/unclebandit/mailmerge-backend/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Create the tables or indexes the server expects",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadStore(envFile)
			if err != nil {
				return err
			}
			logger, err := logging.New("info", "console")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return migrate(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Env file to load before reading the environment")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Give up after this long")
	return cmd
}

func migrate(ctx context.Context, cfg *config.StoreConfig, logger *zap.Logger) error {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, err := db.ConnectMongo(ctx, cfg.MongoURI, logger)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		if err := db.EnsureMongoIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			return err
		}
		logger.Info("mongo indexes ensured", zap.String("database", cfg.MongoDatabase))
		return nil

	case config.StoreDriverPostgres:
		conn, err := db.OpenPostgres(ctx, cfg.PostgresDSN(), logger)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := db.MigratePostgres(ctx, conn); err != nil {
			return err
		}
		logger.Info("postgres schema applied")
		return nil

	default:
		return fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
