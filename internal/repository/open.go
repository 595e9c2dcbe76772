// Package repository opens the configured system message store.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"promptchat/internal/config"
	"promptchat/internal/domain/repositories"
	"promptchat/internal/repository/memory"
	mongoRepo "promptchat/internal/repository/mongo"
	"promptchat/internal/repository/postgres"
)

// OpenOptions tunes Open.
type OpenOptions struct {
	// Reset drops existing tables or collections before preparing them.
	Reset bool
}

// Open connects the store selected by cfg.StoreDriver and prepares its
// schema. The returned func releases connections.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts OpenOptions) (repositories.SystemMessageRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg, logger, opts)
	case config.StoreDriverMongo:
		return openMongo(ctx, cfg, logger, opts)
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, system messages are lost on restart")
		return memory.NewSystemMessageRepository(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts OpenOptions) (repositories.SystemMessageRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required for the %s store", config.StoreDriverPostgres)
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create connection pool: %w", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}

	if opts.Reset {
		if err := postgres.DropTables(ctx, repoConfig); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	txManager := postgres.NewTransactionManager(pool, logger)
	if err := postgres.EnsureSchema(ctx, repoConfig, txManager); err != nil {
		pool.Close()
		return nil, nil, err
	}

	logger.Info("database connected",
		"driver", cfg.StoreDriver,
		"table", repoConfig.Tables.SystemMessages,
	)
	return postgres.NewSystemMessageRepository(repoConfig), pool.Close, nil
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts OpenOptions) (repositories.SystemMessageRepository, func(), error) {
	client, err := mongoRepo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}

	repoConfig := &mongoRepo.RepositoryConfig{
		Database: client.Database(cfg.MongoDatabase),
		Logger:   logger,
	}
	closeFn := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(shutdownCtx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}

	if opts.Reset {
		if err := mongoRepo.DropCollections(ctx, repoConfig); err != nil {
			closeFn()
			return nil, nil, err
		}
	}

	if err := mongoRepo.EnsureIndexes(ctx, repoConfig); err != nil {
		closeFn()
		return nil, nil, err
	}

	logger.Info("database connected", "driver", cfg.StoreDriver, "database", cfg.MongoDatabase)
	return mongoRepo.NewSystemMessageRepository(repoConfig), closeFn, nil
}
