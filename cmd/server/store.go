package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/unclebandit/mailmerge-backend/internal/config"
	"github.com/unclebandit/mailmerge-backend/internal/db"
	"github.com/unclebandit/mailmerge-backend/internal/repository"
)

// store bundles the repositories of the configured backend.
type store struct {
	users     repository.UserRepositoryInterface
	templates repository.TemplateRepositoryInterface
	campaigns repository.CampaignRepositoryInterface
	ping      func(ctx context.Context) error
	close     func()
}

func openStore(ctx context.Context, cfg *config.StoreConfig, logger *zap.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, err := db.ConnectMongo(ctx, cfg.MongoURI, logger)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.MongoDatabase)
		if err := db.EnsureMongoIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &store{
			users:     repository.NewMongoUserRepository(database),
			templates: repository.NewMongoTemplateRepository(database),
			campaigns: repository.NewMongoCampaignRepository(database),
			ping:      func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:     func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.StoreDriverPostgres:
		conn, err := db.OpenPostgres(ctx, cfg.PostgresDSN(), logger)
		if err != nil {
			return nil, err
		}
		return &store{
			users:     &repository.UserRepository{DB: conn},
			templates: &repository.TemplateRepository{DB: conn},
			campaigns: &repository.CampaignRepository{DB: conn},
			ping:      conn.PingContext,
			close:     func() { _ = conn.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
